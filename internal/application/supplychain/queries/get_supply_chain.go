package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/eve-pi-go/internal/application/common"
	"github.com/andrescamacho/eve-pi-go/internal/domain/character"
	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
	"github.com/andrescamacho/eve-pi-go/internal/domain/stockpile"
	"github.com/andrescamacho/eve-pi-go/internal/domain/supplychain"
)

// GetSupplyChainQuery asks for the supply chain of a user's account or a subset of it
type GetSupplyChainQuery struct {
	UserID int64
	Scope  supplychain.Scope
}

// GetSupplyChainResponse is the recomputed supply chain
type GetSupplyChainResponse struct {
	Items       []*supplychain.Item
	Warnings    []string
	GeneratedAt time.Time
}

// GetSupplyChainHandler aggregates committed snapshots and markers on every call
type GetSupplyChainHandler struct {
	characters character.Repository
	colonies   planetary.ColonyRepository
	markers    stockpile.MarkerRepository
	aggregator *supplychain.Aggregator
	clock      shared.Clock
}

// NewGetSupplyChainHandler creates a new GetSupplyChainHandler
func NewGetSupplyChainHandler(
	characters character.Repository,
	colonies planetary.ColonyRepository,
	markers stockpile.MarkerRepository,
	reference planetary.ReferenceProvider,
	clock shared.Clock,
) *GetSupplyChainHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GetSupplyChainHandler{
		characters: characters,
		colonies:   colonies,
		markers:    markers,
		aggregator: supplychain.NewAggregator(reference, clock),
		clock:      clock,
	}
}

// Handle executes the GetSupplyChain query
func (h *GetSupplyChainHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetSupplyChainQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetSupplyChainQuery")
	}
	if query.UserID <= 0 {
		return nil, shared.NewValidationError("user_id", "must be positive")
	}

	acc, err := loadAccount(ctx, h.characters, h.colonies, query.UserID)
	if err != nil {
		return nil, err
	}
	if err := h.validateScope(acc, query.Scope); err != nil {
		return nil, err
	}

	markers, err := h.markers.ListByUser(ctx, query.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stockpile markers: %w", err)
	}

	result, err := h.aggregator.Aggregate(ctx, supplychain.Input{
		Snapshots:      acc.snapshots,
		CharacterNames: acc.names,
		Markers:        markers,
		Scope:          query.Scope,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate supply chain: %w", err)
	}

	logger := common.LoggerFromContext(ctx)
	for _, w := range result.Warnings {
		logger.Log(common.LevelWarning, "Reference data missing during aggregation", map[string]interface{}{
			"user_id": query.UserID,
			"error":   w.Error(),
		})
	}

	return &GetSupplyChainResponse{
		Items:       result.Items,
		Warnings:    warningStrings(result.Warnings),
		GeneratedAt: h.clock.Now(),
	}, nil
}

func (h *GetSupplyChainHandler) validateScope(acc *account, scope supplychain.Scope) error {
	if scope.CharacterID != 0 && !acc.owns(scope.CharacterID) {
		return fmt.Errorf("character %d: %w", scope.CharacterID, shared.ErrCharacterNotFound)
	}
	if !scope.IsLaunchpad() {
		return nil
	}
	if scope.CharacterID == 0 || scope.PlanetID == 0 {
		return shared.NewValidationError("launchpad", "a launchpad scope needs its character and planet")
	}

	for _, snap := range acc.snapshots {
		if snap.Planet.OwnerID != scope.CharacterID || snap.Planet.PlanetID != scope.PlanetID {
			continue
		}
		pin, ok := snap.Colony.PinByID(scope.LaunchpadPinID)
		if !ok || !pin.IsLaunchpad() {
			return shared.NewValidationError("launchpad", fmt.Sprintf("pin %d is not a launchpad on planet %d", scope.LaunchpadPinID, scope.PlanetID))
		}
		return nil
	}
	return fmt.Errorf("planet %d of character %d: %w", scope.PlanetID, scope.CharacterID, shared.ErrColonyNotFound)
}
