package helpers

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
)

// MockReferenceProvider is an in-memory planetary.ReferenceProvider
type MockReferenceProvider struct {
	mu         sync.RWMutex
	schematics map[int32]*planetary.Schematic
	materials  map[int32]*planetary.Material
	buy        map[int32]decimal.Decimal
	sell       map[int32]decimal.Decimal
	systems    map[int64]string
}

// NewMockReferenceProvider creates an empty reference provider
func NewMockReferenceProvider() *MockReferenceProvider {
	return &MockReferenceProvider{
		schematics: make(map[int32]*planetary.Schematic),
		materials:  make(map[int32]*planetary.Material),
		buy:        make(map[int32]decimal.Decimal),
		sell:       make(map[int32]decimal.Decimal),
		systems:    make(map[int64]string),
	}
}

// AddMaterial registers a material type
func (m *MockReferenceProvider) AddMaterial(typeID int32, name string, tier planetary.Tier) *MockReferenceProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.materials[typeID] = &planetary.Material{TypeID: typeID, Name: name, Tier: tier}
	return m
}

// AddSchematic registers a schematic
func (m *MockReferenceProvider) AddSchematic(s *planetary.Schematic) *MockReferenceProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schematics[s.SchematicID] = s
	return m
}

// SetPrice sets buy and sell unit prices for a type
func (m *MockReferenceProvider) SetPrice(typeID int32, buy, sell float64) *MockReferenceProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buy[typeID] = decimal.NewFromFloat(buy)
	m.sell[typeID] = decimal.NewFromFloat(sell)
	return m
}

// AddSolarSystem registers a solar system name
func (m *MockReferenceProvider) AddSolarSystem(id int64, name string) *MockReferenceProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.systems[id] = name
	return m
}

func (m *MockReferenceProvider) GetSchematic(ctx context.Context, schematicID int32) (*planetary.Schematic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.schematics[schematicID]
	if !ok {
		return nil, shared.NewMissingReferenceDataError(shared.ReferenceSchematic, int64(schematicID))
	}
	return s, nil
}

func (m *MockReferenceProvider) GetMaterial(ctx context.Context, typeID int32) (*planetary.Material, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mat, ok := m.materials[typeID]
	if !ok {
		return nil, shared.NewMissingReferenceDataError(shared.ReferenceType, int64(typeID))
	}
	return mat, nil
}

func (m *MockReferenceProvider) GetTier(ctx context.Context, typeID int32) (planetary.Tier, error) {
	mat, err := m.GetMaterial(ctx, typeID)
	if err != nil {
		return "", err
	}
	return mat.Tier, nil
}

func (m *MockReferenceProvider) GetUnitPrice(ctx context.Context, typeID int32, source planetary.PriceSource) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	buy, hasBuy := m.buy[typeID]
	sell, hasSell := m.sell[typeID]
	if !hasBuy && !hasSell {
		return decimal.Zero, shared.NewMissingReferenceDataError(shared.ReferencePrice, int64(typeID))
	}
	switch source {
	case planetary.PriceSourceBuy:
		return buy, nil
	case planetary.PriceSourceSplit:
		return buy.Add(sell).Div(decimal.NewFromInt(2)), nil
	default:
		return sell, nil
	}
}

func (m *MockReferenceProvider) GetSolarSystemName(ctx context.Context, solarSystemID int64) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.systems[solarSystemID]
	if !ok {
		return "", shared.NewMissingReferenceDataError(shared.ReferenceSolarSystem, solarSystemID)
	}
	return name, nil
}
