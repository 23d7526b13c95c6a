package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/eve-pi-go/internal/application/common"
	"github.com/andrescamacho/eve-pi-go/internal/application/supplychain/queries"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
	"github.com/andrescamacho/eve-pi-go/internal/domain/stockpile"
)

// ResizeAllStockpilesCommand sizes every consumed material's stockpile to cover the given
// duration. Preset, when set, takes precedence over CoverageHours.
type ResizeAllStockpilesCommand struct {
	UserID        int64
	CoverageHours float64
	Preset        string
}

// MaterialResize is the outcome for one material
type MaterialResize struct {
	TypeID          int32
	Name            string
	ConsumedPerHour float64
	Target          int64
	Updated         int
	Failed          int
}

// ResizeAllStockpilesResponse counts written markers across all materials. A material
// whose markers could not even be listed appears in Failures with only its type set
// on the key.
type ResizeAllStockpilesResponse struct {
	CoverageHours float64
	UpdatedCount  int
	Materials     []MaterialResize
	Failures      []stockpile.MarkerFailure
}

// ResizeAllStockpilesHandler handles the ResizeAllStockpiles command
type ResizeAllStockpilesHandler struct {
	mediator common.Mediator
	markers  stockpile.MarkerRepository
	locks    *MaterialLocks
}

// NewResizeAllStockpilesHandler creates a new ResizeAllStockpilesHandler. Consumption
// rates come from GetSupplyChainQuery through the mediator.
func NewResizeAllStockpilesHandler(
	mediator common.Mediator,
	markers stockpile.MarkerRepository,
	locks *MaterialLocks,
) *ResizeAllStockpilesHandler {
	if locks == nil {
		locks = NewMaterialLocks()
	}
	return &ResizeAllStockpilesHandler{mediator: mediator, markers: markers, locks: locks}
}

// Handle executes the ResizeAllStockpiles command
func (h *ResizeAllStockpilesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ResizeAllStockpilesCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ResizeAllStockpilesCommand")
	}
	if cmd.UserID <= 0 {
		return nil, shared.NewValidationError("user_id", "must be positive")
	}

	hours := cmd.CoverageHours
	if cmd.Preset != "" {
		presetHours, err := stockpile.PresetHours(cmd.Preset)
		if err != nil {
			return nil, err
		}
		hours = presetHours
	}
	if hours <= 0 {
		return nil, shared.NewValidationError("coverage_hours", "must be positive")
	}

	resp, err := h.mediator.Send(ctx, &queries.GetSupplyChainQuery{UserID: cmd.UserID})
	if err != nil {
		return nil, fmt.Errorf("failed to compute supply chain: %w", err)
	}
	chain, ok := resp.(*queries.GetSupplyChainResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type %T", resp)
	}

	logger := common.LoggerFromContext(ctx)
	result := &ResizeAllStockpilesResponse{CoverageHours: hours}

	for _, item := range chain.Items {
		if len(item.StockpileMarkers) == 0 || item.ConsumedPerHour <= 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		target := stockpile.TargetForCoverage(item.ConsumedPerHour, hours)
		material := MaterialResize{
			TypeID:          item.TypeID,
			Name:            item.Name,
			ConsumedPerHour: item.ConsumedPerHour,
			Target:          target,
		}

		outcome, err := rebalanceMaterial(ctx, h.markers, h.locks, cmd.UserID, item.TypeID, target)
		if err != nil {
			logger.Log(common.LevelError, "Stockpile resize failed for material", map[string]interface{}{
				"type_id": item.TypeID,
				"error":   err.Error(),
			})
			result.Failures = append(result.Failures, stockpile.MarkerFailure{
				Key: stockpile.MarkerKey{UserID: cmd.UserID, TypeID: item.TypeID},
				Err: err,
			})
			material.Failed = len(item.StockpileMarkers)
			result.Materials = append(result.Materials, material)
			continue
		}

		material.Updated = len(outcome.updated)
		material.Failed = len(outcome.failures)
		result.UpdatedCount += len(outcome.updated)
		result.Failures = append(result.Failures, outcome.failures...)
		result.Materials = append(result.Materials, material)
	}

	logger.Log(common.LevelInfo, "Resized all stockpiles", map[string]interface{}{
		"user_id":        cmd.UserID,
		"coverage_hours": hours,
		"materials":      len(result.Materials),
		"updated":        result.UpdatedCount,
		"failed":         len(result.Failures),
	})
	return result, nil
}
