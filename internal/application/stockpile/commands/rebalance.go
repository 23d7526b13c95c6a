package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/eve-pi-go/internal/application/common"
	"github.com/andrescamacho/eve-pi-go/internal/domain/stockpile"
)

// rebalanceResult is the outcome of resizing one material
type rebalanceResult struct {
	updated  []*stockpile.Marker
	failures []stockpile.MarkerFailure
}

// rebalanceMaterial redistributes newTotal over the user's markers of one material.
// Writes are independent upserts; a failed write is recorded and the loop goes on.
func rebalanceMaterial(
	ctx context.Context,
	repo stockpile.MarkerRepository,
	locks *MaterialLocks,
	userID int64,
	typeID int32,
	newTotal int64,
) (*rebalanceResult, error) {
	unlock := locks.Lock(userID, typeID)
	defer unlock()

	markers, err := repo.ListByType(ctx, userID, typeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list markers for type %d: %w", typeID, err)
	}
	if len(markers) == 0 {
		return &rebalanceResult{}, nil
	}

	old := make([]int64, len(markers))
	for i, m := range markers {
		old[i] = m.DesiredQuantity
	}
	allocation, err := stockpile.Allocate(old, newTotal)
	if err != nil {
		return nil, err
	}

	logger := common.LoggerFromContext(ctx)
	result := &rebalanceResult{}
	for i, m := range markers {
		updated := &stockpile.Marker{Key: m.Key, DesiredQuantity: allocation[i]}
		if err := repo.Upsert(ctx, updated); err != nil {
			logger.Log(common.LevelError, "Stockpile marker write failed", map[string]interface{}{
				"marker":  m.Key.String(),
				"desired": allocation[i],
				"error":   err.Error(),
			})
			result.failures = append(result.failures, stockpile.MarkerFailure{Key: m.Key, Err: err})
			continue
		}
		result.updated = append(result.updated, updated)
	}

	logger.Log(common.LevelInfo, "Stockpile resized", map[string]interface{}{
		"user_id":   userID,
		"type_id":   typeID,
		"new_total": newTotal,
		"updated":   len(result.updated),
		"failed":    len(result.failures),
	})
	return result, nil
}
