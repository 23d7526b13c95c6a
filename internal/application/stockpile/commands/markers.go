package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/eve-pi-go/internal/application/common"
	"github.com/andrescamacho/eve-pi-go/internal/domain/stockpile"
)

// UpsertMarkerCommand creates or edits one stockpile marker
type UpsertMarkerCommand struct {
	Key             stockpile.MarkerKey
	DesiredQuantity int64
}

// UpsertMarkerResponse returns the stored marker
type UpsertMarkerResponse struct {
	Marker *stockpile.Marker
}

// UpsertMarkerHandler handles the UpsertMarker command
type UpsertMarkerHandler struct {
	markers stockpile.MarkerRepository
	locks   *MaterialLocks
}

// NewUpsertMarkerHandler creates a new UpsertMarkerHandler
func NewUpsertMarkerHandler(markers stockpile.MarkerRepository, locks *MaterialLocks) *UpsertMarkerHandler {
	if locks == nil {
		locks = NewMaterialLocks()
	}
	return &UpsertMarkerHandler{markers: markers, locks: locks}
}

// Handle executes the UpsertMarker command
func (h *UpsertMarkerHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*UpsertMarkerCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *UpsertMarkerCommand")
	}

	marker, err := stockpile.NewMarker(cmd.Key, cmd.DesiredQuantity)
	if err != nil {
		return nil, err
	}

	unlock := h.locks.Lock(cmd.Key.UserID, cmd.Key.TypeID)
	defer unlock()

	if err := h.markers.Upsert(ctx, marker); err != nil {
		return nil, fmt.Errorf("failed to save marker: %w", err)
	}
	return &UpsertMarkerResponse{Marker: marker}, nil
}

// DeleteMarkerCommand removes one stockpile marker
type DeleteMarkerCommand struct {
	Key stockpile.MarkerKey
}

// DeleteMarkerHandler handles the DeleteMarker command
type DeleteMarkerHandler struct {
	markers stockpile.MarkerRepository
	locks   *MaterialLocks
}

// NewDeleteMarkerHandler creates a new DeleteMarkerHandler
func NewDeleteMarkerHandler(markers stockpile.MarkerRepository, locks *MaterialLocks) *DeleteMarkerHandler {
	if locks == nil {
		locks = NewMaterialLocks()
	}
	return &DeleteMarkerHandler{markers: markers, locks: locks}
}

// Handle executes the DeleteMarker command
func (h *DeleteMarkerHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*DeleteMarkerCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *DeleteMarkerCommand")
	}
	if err := cmd.Key.ValidateOptionalParts(); err != nil {
		return nil, err
	}

	unlock := h.locks.Lock(cmd.Key.UserID, cmd.Key.TypeID)
	defer unlock()

	if err := h.markers.Delete(ctx, cmd.Key); err != nil {
		return nil, fmt.Errorf("failed to delete marker: %w", err)
	}
	return struct{}{}, nil
}
