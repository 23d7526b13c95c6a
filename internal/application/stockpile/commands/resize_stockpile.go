package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/eve-pi-go/internal/application/common"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
	"github.com/andrescamacho/eve-pi-go/internal/domain/stockpile"
)

// ResizeStockpileCommand sets a new total desired quantity for one material and spreads
// it over the material's existing markers in proportion to their current targets
type ResizeStockpileCommand struct {
	UserID           int64
	TypeID           int32
	NewTotalQuantity int64
}

// ResizeStockpileResponse lists the markers that were written and those that failed.
// Written markers stay written even when others fail.
type ResizeStockpileResponse struct {
	TypeID         int32
	UpdatedMarkers []*stockpile.Marker
	Failures       []stockpile.MarkerFailure
}

// Err reports the failures as a *stockpile.PartialRebalanceFailure, or nil
func (r *ResizeStockpileResponse) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return &stockpile.PartialRebalanceFailure{TypeID: r.TypeID, Failures: r.Failures}
}

// ResizeStockpileHandler handles the ResizeStockpile command
type ResizeStockpileHandler struct {
	markers stockpile.MarkerRepository
	locks   *MaterialLocks
}

// NewResizeStockpileHandler creates a new ResizeStockpileHandler
func NewResizeStockpileHandler(markers stockpile.MarkerRepository, locks *MaterialLocks) *ResizeStockpileHandler {
	if locks == nil {
		locks = NewMaterialLocks()
	}
	return &ResizeStockpileHandler{markers: markers, locks: locks}
}

// Handle executes the ResizeStockpile command
func (h *ResizeStockpileHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ResizeStockpileCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ResizeStockpileCommand")
	}
	if cmd.UserID <= 0 {
		return nil, shared.NewValidationError("user_id", "must be positive")
	}
	if cmd.TypeID <= 0 {
		return nil, shared.NewValidationError("type_id", "must be positive")
	}
	if cmd.NewTotalQuantity < 0 {
		return nil, shared.NewValidationError("new_total_quantity", "must not be negative")
	}

	result, err := rebalanceMaterial(ctx, h.markers, h.locks, cmd.UserID, cmd.TypeID, cmd.NewTotalQuantity)
	if err != nil {
		return nil, err
	}

	return &ResizeStockpileResponse{
		TypeID:         cmd.TypeID,
		UpdatedMarkers: result.updated,
		Failures:       result.failures,
	}, nil
}
