package supplychain

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
)

// lookup memoizes reference data for one aggregation pass and collects misses as
// warnings. Misses degrade to zero contribution.
type lookup struct {
	ctx        context.Context
	reference  planetary.ReferenceProvider
	schematics map[int32]*planetary.Schematic
	materials  map[int32]*planetary.Material
	systems    map[int64]string
	prices     map[int32]decimal.Decimal
	source     planetary.PriceSource
	warned     map[string]bool
	warnings   []error
}

func newLookup(ctx context.Context, reference planetary.ReferenceProvider, source planetary.PriceSource) *lookup {
	return &lookup{
		ctx:        ctx,
		reference:  reference,
		schematics: make(map[int32]*planetary.Schematic),
		materials:  make(map[int32]*planetary.Material),
		systems:    make(map[int64]string),
		prices:     make(map[int32]decimal.Decimal),
		source:     source,
		warned:     make(map[string]bool),
	}
}

func (l *lookup) warn(key string, err error) {
	if l.warned[key] {
		return
	}
	l.warned[key] = true
	l.warnings = append(l.warnings, err)
}

func (l *lookup) schematic(id int32) *planetary.Schematic {
	if s, ok := l.schematics[id]; ok {
		return s
	}
	s, err := l.reference.GetSchematic(l.ctx, id)
	if err != nil {
		l.warn(fmt.Sprintf("schematic:%d", id), err)
		s = nil
	}
	l.schematics[id] = s
	return s
}

func (l *lookup) material(typeID int32) *planetary.Material {
	if m, ok := l.materials[typeID]; ok {
		return m
	}
	m, err := l.reference.GetMaterial(l.ctx, typeID)
	if err != nil {
		l.warn(fmt.Sprintf("type:%d", typeID), err)
		m = &planetary.Material{TypeID: typeID, Name: fmt.Sprintf("Type %d", typeID)}
	}
	l.materials[typeID] = m
	return m
}

func (l *lookup) systemName(id int64) string {
	if name, ok := l.systems[id]; ok {
		return name
	}
	name, err := l.reference.GetSolarSystemName(l.ctx, id)
	if err != nil {
		l.warn(fmt.Sprintf("system:%d", id), err)
		name = fmt.Sprintf("System %d", id)
	}
	l.systems[id] = name
	return name
}

// price satisfies planetary.PriceFunc. Unknown prices are zero.
func (l *lookup) price(typeID int32) decimal.Decimal {
	if p, ok := l.prices[typeID]; ok {
		return p
	}
	p, err := l.reference.GetUnitPrice(l.ctx, typeID, l.source)
	if err != nil {
		if !shared.IsMissingReferenceData(err) {
			err = fmt.Errorf("price lookup for type %d: %w", typeID, err)
		}
		l.warn(fmt.Sprintf("price:%d", typeID), err)
		p = decimal.Zero
	}
	l.prices[typeID] = p
	return p
}
