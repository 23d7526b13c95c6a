package shared

import (
	"errors"
	"fmt"
)

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

var (
	// ErrCharacterNotFound is returned when a linked character does not exist
	ErrCharacterNotFound = errors.New("character not found")

	// ErrMarkerNotFound is returned when a stockpile marker key has no row
	ErrMarkerNotFound = errors.New("stockpile marker not found")

	// ErrColonyNotFound is returned when no snapshot exists for a (character, planet) pair
	ErrColonyNotFound = errors.New("colony snapshot not found")
)

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Upstream errors

// UpstreamFetchError wraps a failed fetch of one planet (or the planet list when
// PlanetID is zero). It is transient: the next sync interval retries it.
type UpstreamFetchError struct {
	*DomainError
	CharacterID int64
	PlanetID    int64
	Cause       error
}

func NewUpstreamFetchError(characterID, planetID int64, cause error) *UpstreamFetchError {
	target := "planet list"
	if planetID != 0 {
		target = fmt.Sprintf("planet %d", planetID)
	}
	return &UpstreamFetchError{
		DomainError: NewDomainError(fmt.Sprintf("upstream fetch failed for character %d %s: %v", characterID, target, cause)),
		CharacterID: characterID,
		PlanetID:    planetID,
		Cause:       cause,
	}
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Cause
}

// Reference data errors

// ReferenceKind names the kind of static data that was missing
type ReferenceKind string

const (
	ReferenceSchematic   ReferenceKind = "schematic"
	ReferenceType        ReferenceKind = "type"
	ReferencePrice       ReferenceKind = "price"
	ReferenceSolarSystem ReferenceKind = "solar_system"
)

// MissingReferenceDataError signals a schematic/type/price lookup miss.
// Callers degrade the affected contribution to zero instead of failing.
type MissingReferenceDataError struct {
	*DomainError
	Kind ReferenceKind
	ID   int64
}

func NewMissingReferenceDataError(kind ReferenceKind, id int64) *MissingReferenceDataError {
	return &MissingReferenceDataError{
		DomainError: NewDomainError(fmt.Sprintf("missing %s reference data for id %d", kind, id)),
		Kind:        kind,
		ID:          id,
	}
}

// IsMissingReferenceData reports whether err is (or wraps) a MissingReferenceDataError
func IsMissingReferenceData(err error) bool {
	var target *MissingReferenceDataError
	return errors.As(err, &target)
}
