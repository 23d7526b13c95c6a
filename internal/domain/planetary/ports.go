package planetary

import (
	"context"

	"github.com/shopspring/decimal"
)

// ReferenceProvider is the read-only static data and price oracle.
// Lookups that miss return a *shared.MissingReferenceDataError.
type ReferenceProvider interface {
	GetSchematic(ctx context.Context, schematicID int32) (*Schematic, error)
	GetMaterial(ctx context.Context, typeID int32) (*Material, error)
	GetTier(ctx context.Context, typeID int32) (Tier, error)
	GetUnitPrice(ctx context.Context, typeID int32, source PriceSource) (decimal.Decimal, error)
	GetSolarSystemName(ctx context.Context, solarSystemID int64) (string, error)
}

// ColonyProvider is the upstream (ESI-shaped) source of colony data
type ColonyProvider interface {
	ListPlanets(ctx context.Context, characterID int64, token string) ([]Planet, error)
	GetColonyDetail(ctx context.Context, characterID, planetID int64, token string) (*Colony, error)
}

// ColonyRepository stores the latest snapshot per (character, planet)
type ColonyRepository interface {
	// ReplaceColony atomically swaps in a snapshot. When the fingerprint matches the
	// committed one only SyncedAt is refreshed and changed is false.
	ReplaceColony(ctx context.Context, snapshot *PlanetSnapshot) (changed bool, err error)

	// PruneMissing deletes snapshots of planets the character no longer owns
	PruneMissing(ctx context.Context, characterID int64, keepPlanetIDs []int64) (int, error)

	FindByCharacters(ctx context.Context, characterIDs []int64) ([]*PlanetSnapshot, error)
	FindOne(ctx context.Context, characterID, planetID int64) (*PlanetSnapshot, error)
}
