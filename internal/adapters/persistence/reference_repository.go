package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
)

// GormReferenceRepository implements planetary.ReferenceProvider over the static
// reference tables. Schematics, materials and system names never change at runtime
// and are cached after the first load; prices are always read fresh.
type GormReferenceRepository struct {
	db *gorm.DB

	mu         sync.RWMutex
	schematics map[int32]*planetary.Schematic
	materials  map[int32]*planetary.Material
	systems    map[int64]string
}

// NewGormReferenceRepository creates a new GORM reference repository
func NewGormReferenceRepository(db *gorm.DB) *GormReferenceRepository {
	return &GormReferenceRepository{
		db:         db,
		schematics: make(map[int32]*planetary.Schematic),
		materials:  make(map[int32]*planetary.Material),
		systems:    make(map[int64]string),
	}
}

// GetSchematic returns a schematic with its inputs
func (r *GormReferenceRepository) GetSchematic(ctx context.Context, schematicID int32) (*planetary.Schematic, error) {
	r.mu.RLock()
	cached, ok := r.schematics[schematicID]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	var model ReferenceSchematicModel
	err := r.db.WithContext(ctx).Preload("Inputs").Where("schematic_id = ?", schematicID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewMissingReferenceDataError(shared.ReferenceSchematic, int64(schematicID))
		}
		return nil, fmt.Errorf("failed to load schematic: %w", err)
	}

	schematic := &planetary.Schematic{
		SchematicID:      model.SchematicID,
		Name:             model.Name,
		CycleTimeSeconds: model.CycleTime,
		Output:           planetary.SchematicQuantity{TypeID: model.OutputTypeID, Quantity: model.OutputQuantity},
	}
	for _, in := range model.Inputs {
		schematic.Inputs = append(schematic.Inputs, planetary.SchematicQuantity{TypeID: in.TypeID, Quantity: in.Quantity})
	}

	r.mu.Lock()
	r.schematics[schematicID] = schematic
	r.mu.Unlock()
	return schematic, nil
}

// GetMaterial returns a material's name and tier
func (r *GormReferenceRepository) GetMaterial(ctx context.Context, typeID int32) (*planetary.Material, error) {
	r.mu.RLock()
	cached, ok := r.materials[typeID]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	var model ReferenceTypeModel
	err := r.db.WithContext(ctx).Where("type_id = ?", typeID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewMissingReferenceDataError(shared.ReferenceType, int64(typeID))
		}
		return nil, fmt.Errorf("failed to load type: %w", err)
	}

	material := &planetary.Material{TypeID: model.TypeID, Name: model.Name, Tier: planetary.Tier(model.Tier)}
	if tier, err := planetary.ParseTier(model.Tier); err == nil {
		material.Tier = tier
	}

	r.mu.Lock()
	r.materials[typeID] = material
	r.mu.Unlock()
	return material, nil
}

// GetTier returns the tier of a material
func (r *GormReferenceRepository) GetTier(ctx context.Context, typeID int32) (planetary.Tier, error) {
	material, err := r.GetMaterial(ctx, typeID)
	if err != nil {
		return "", err
	}
	return material.Tier, nil
}

// GetUnitPrice returns the unit price of a material for the given side of the market.
// Split is the mean of buy and sell.
func (r *GormReferenceRepository) GetUnitPrice(ctx context.Context, typeID int32, source planetary.PriceSource) (decimal.Decimal, error) {
	var model MarketPriceModel
	err := r.db.WithContext(ctx).Where("type_id = ?", typeID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, shared.NewMissingReferenceDataError(shared.ReferencePrice, int64(typeID))
		}
		return decimal.Zero, fmt.Errorf("failed to load price: %w", err)
	}

	switch source {
	case planetary.PriceSourceBuy:
		return model.Buy, nil
	case planetary.PriceSourceSplit:
		return model.Buy.Add(model.Sell).Div(decimal.NewFromInt(2)), nil
	default:
		return model.Sell, nil
	}
}

// GetSolarSystemName returns the name of a solar system
func (r *GormReferenceRepository) GetSolarSystemName(ctx context.Context, solarSystemID int64) (string, error) {
	r.mu.RLock()
	cached, ok := r.systems[solarSystemID]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	var model SolarSystemModel
	err := r.db.WithContext(ctx).Where("id = ?", solarSystemID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", shared.NewMissingReferenceDataError(shared.ReferenceSolarSystem, solarSystemID)
		}
		return "", fmt.Errorf("failed to load solar system: %w", err)
	}

	r.mu.Lock()
	r.systems[solarSystemID] = model.Name
	r.mu.Unlock()
	return model.Name, nil
}

// SaveMaterial stores a material row. Used by the external price and static data
// loaders and by tests.
func (r *GormReferenceRepository) SaveMaterial(ctx context.Context, m *planetary.Material) error {
	model := &ReferenceTypeModel{TypeID: m.TypeID, Name: m.Name, Tier: string(m.Tier)}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save type: %w", err)
	}
	r.mu.Lock()
	delete(r.materials, m.TypeID)
	r.mu.Unlock()
	return nil
}

// SaveSchematic replaces a schematic and its inputs
func (r *GormReferenceRepository) SaveSchematic(ctx context.Context, s *planetary.Schematic) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("schematic_id = ?", s.SchematicID).Delete(&ReferenceSchematicInputModel{}).Error; err != nil {
			return err
		}
		model := &ReferenceSchematicModel{
			SchematicID:    s.SchematicID,
			Name:           s.Name,
			CycleTime:      s.CycleTimeSeconds,
			OutputTypeID:   s.Output.TypeID,
			OutputQuantity: s.Output.Quantity,
		}
		if err := tx.Omit("Inputs").Clauses(clause.OnConflict{UpdateAll: true}).Create(model).Error; err != nil {
			return err
		}
		inputs := make([]ReferenceSchematicInputModel, 0, len(s.Inputs))
		for _, in := range s.Inputs {
			inputs = append(inputs, ReferenceSchematicInputModel{SchematicID: s.SchematicID, TypeID: in.TypeID, Quantity: in.Quantity})
		}
		if len(inputs) > 0 {
			return tx.Create(&inputs).Error
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save schematic: %w", err)
	}
	r.mu.Lock()
	delete(r.schematics, s.SchematicID)
	r.mu.Unlock()
	return nil
}

// SavePrice stores the current buy and sell unit price of a type
func (r *GormReferenceRepository) SavePrice(ctx context.Context, typeID int32, buy, sell decimal.Decimal) error {
	model := &MarketPriceModel{TypeID: typeID, Buy: buy, Sell: sell}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save price: %w", err)
	}
	return nil
}

// SaveSolarSystem stores a solar system name
func (r *GormReferenceRepository) SaveSolarSystem(ctx context.Context, id int64, name string) error {
	model := &SolarSystemModel{ID: id, Name: name}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save solar system: %w", err)
	}
	r.mu.Lock()
	delete(r.systems, id)
	r.mu.Unlock()
	return nil
}
