package stockpile

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
)

// OwnerType is who owns the location a marker points at
type OwnerType string

const (
	OwnerCharacter   OwnerType = "character"
	OwnerCorporation OwnerType = "corporation"
)

// ParseOwnerType validates an owner type name
func ParseOwnerType(s string) (OwnerType, error) {
	switch OwnerType(strings.ToLower(strings.TrimSpace(s))) {
	case OwnerCharacter:
		return OwnerCharacter, nil
	case OwnerCorporation:
		return OwnerCorporation, nil
	default:
		return "", shared.NewValidationError("owner_type", fmt.Sprintf("unknown owner type %q", s))
	}
}

// MarkerKey identifies a stockpile marker. ContainerID and DivisionNumber are optional.
type MarkerKey struct {
	UserID         int64
	TypeID         int32
	OwnerType      OwnerType
	OwnerID        int64
	LocationID     int64
	ContainerID    *int64
	DivisionNumber *int
}

// ValidateOptionalParts rejects a container or division that is set but not positive.
// Stores use 0 for "absent", so an explicit 0 could not be told apart from no value.
func (k MarkerKey) ValidateOptionalParts() error {
	if k.ContainerID != nil && *k.ContainerID <= 0 {
		return shared.NewValidationError("container_id", "must be positive when set")
	}
	if k.DivisionNumber != nil && *k.DivisionNumber <= 0 {
		return shared.NewValidationError("division_number", "must be positive when set")
	}
	return nil
}

// String renders the key for logs and failure reports
func (k MarkerKey) String() string {
	container, division := "-", "-"
	if k.ContainerID != nil {
		container = fmt.Sprintf("%d", *k.ContainerID)
	}
	if k.DivisionNumber != nil {
		division = fmt.Sprintf("%d", *k.DivisionNumber)
	}
	return fmt.Sprintf("user=%d type=%d owner=%s:%d location=%d container=%s division=%s",
		k.UserID, k.TypeID, k.OwnerType, k.OwnerID, k.LocationID, container, division)
}

// Marker is a user-authored desired quantity of a material at a location.
// A zero quantity means "no target" but the marker is kept.
type Marker struct {
	Key             MarkerKey
	DesiredQuantity int64
}

// NewMarker validates and creates a marker
func NewMarker(key MarkerKey, desired int64) (*Marker, error) {
	if key.UserID <= 0 {
		return nil, shared.NewValidationError("user_id", "must be positive")
	}
	if key.TypeID <= 0 {
		return nil, shared.NewValidationError("type_id", "must be positive")
	}
	if _, err := ParseOwnerType(string(key.OwnerType)); err != nil {
		return nil, err
	}
	if err := key.ValidateOptionalParts(); err != nil {
		return nil, err
	}
	if desired < 0 {
		return nil, shared.NewValidationError("desired_quantity", "must not be negative")
	}
	return &Marker{Key: key, DesiredQuantity: desired}, nil
}

// TotalDesired sums desired quantities
func TotalDesired(markers []*Marker) int64 {
	var total int64
	for _, m := range markers {
		total += m.DesiredQuantity
	}
	return total
}
