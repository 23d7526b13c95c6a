package supplychain

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
)

// FactoryProfitLine is the hourly profit of one factory pin
type FactoryProfitLine struct {
	PinID         int64
	SchematicID   int32
	SchematicName string
	OutputTypeID  int32
	OutputName    string
	OutputPerHour float64
	planetary.Profit
}

// PlanetProfit is the hourly profit of one planet. Customs legs that belong to no
// factory are charged to the planet directly.
type PlanetProfit struct {
	CharacterID     int64
	CharacterName   string
	PlanetID        int64
	PlanetType      string
	SolarSystemName string
	Factories       []FactoryProfitLine
	planetary.Profit
}

// ProfitBreakdown is the account-wide profit view
type ProfitBreakdown struct {
	PriceSource planetary.PriceSource
	Planets     []PlanetProfit
	Totals      planetary.Profit
	Warnings    []error
}

// ProfitCalculator values factory output against inputs and customs taxes
type ProfitCalculator struct {
	reference planetary.ReferenceProvider
	taxes     planetary.TaxRates
	clock     shared.Clock
}

// NewProfitCalculator creates a calculator. If clock is nil, uses RealClock.
func NewProfitCalculator(reference planetary.ReferenceProvider, taxes planetary.TaxRates, clock shared.Clock) *ProfitCalculator {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ProfitCalculator{reference: reference, taxes: taxes, clock: clock}
}

// Breakdown computes per-factory and per-planet hourly profit for every snapshot
func (c *ProfitCalculator) Breakdown(
	ctx context.Context,
	snapshots []*planetary.PlanetSnapshot,
	characterNames map[int64]string,
	source planetary.PriceSource,
) (*ProfitBreakdown, error) {
	refs := newLookup(ctx, c.reference, source)
	now := c.clock.Now()

	result := &ProfitBreakdown{PriceSource: source, Totals: zeroProfit()}
	for _, snapshot := range snapshots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		planet := c.planetProfit(snapshot, refs, now)
		planet.CharacterName = characterNames[planet.CharacterID]
		result.Planets = append(result.Planets, planet)
		result.Totals = result.Totals.Add(planet.Profit)
	}

	sort.SliceStable(result.Planets, func(i, j int) bool {
		pi, pj := result.Planets[i], result.Planets[j]
		if !pi.Profit.Profit.Equal(pj.Profit.Profit) {
			return pi.Profit.Profit.GreaterThan(pj.Profit.Profit)
		}
		return pi.PlanetID < pj.PlanetID
	})
	result.Warnings = refs.warnings
	return result, nil
}

func (c *ProfitCalculator) planetProfit(snapshot *planetary.PlanetSnapshot, refs *lookup, now time.Time) PlanetProfit {
	planet := snapshot.Planet
	colony := &snapshot.Colony

	// Schematic per running factory pin; unknown schematics and expired factories
	// contribute nothing
	schematics := make(map[int64]*planetary.Schematic)
	for i := range colony.Pins {
		pin := &colony.Pins[i]
		if pin.Kind != planetary.PinKindFactory || pin.IsExpired(now) {
			continue
		}
		if id, ok := pin.EffectiveSchematicID(); ok {
			if s := refs.schematic(id); s != nil {
				schematics[pin.PinID] = s
			}
		}
	}

	factoryLegs, planetLegs := attributeLegs(colony, schematics, now)

	out := PlanetProfit{
		CharacterID:     planet.OwnerID,
		PlanetID:        planet.PlanetID,
		PlanetType:      planet.PlanetType,
		SolarSystemName: refs.systemName(planet.SolarSystemID),
		Profit:          zeroProfit(),
	}

	for i := range colony.Pins {
		pin := &colony.Pins[i]
		schematic, ok := schematics[pin.PinID]
		if !ok {
			continue
		}
		rates := planetary.ComputeFactoryRates(schematic, 1)
		line := FactoryProfitLine{
			PinID:         pin.PinID,
			SchematicID:   schematic.SchematicID,
			SchematicName: schematic.Name,
			OutputTypeID:  rates.OutputTypeID,
			OutputName:    refs.material(rates.OutputTypeID).Name,
			OutputPerHour: rates.OutputPerHour,
			Profit:        planetary.FactoryProfitPerHour(rates, refs.price, factoryLegs[pin.PinID], c.taxes),
		}
		out.Factories = append(out.Factories, line)
		out.Profit = out.Profit.Add(line.Profit)
	}

	if len(planetLegs) > 0 {
		exportTax, importTax := planetary.CustomsTax(planetLegs, refs.price, c.taxes)
		out.Profit = out.Profit.Add(planetary.Profit{
			OutputValue: decimal.Zero,
			InputCost:   decimal.Zero,
			ExportTax:   exportTax,
			ImportTax:   importTax,
			Profit:      exportTax.Add(importTax).Neg(),
		})
	}

	sort.SliceStable(out.Factories, func(i, j int) bool {
		return out.Factories[i].PinID < out.Factories[j].PinID
	})
	return out
}

// attributeLegs expands every route into customs legs and assigns them to the factory at
// the source of the route, else the factory at its destination, else the planet.
// A route moves its quantity once per cycle of the pin feeding it.
func attributeLegs(
	colony *planetary.Colony,
	schematics map[int64]*planetary.Schematic,
	now time.Time,
) (map[int64][]planetary.CustomsLeg, []planetary.CustomsLeg) {
	factoryLegs := make(map[int64][]planetary.CustomsLeg)
	var planetLegs []planetary.CustomsLeg

	for _, route := range colony.Routes {
		if colony.CustomsCrossings(route) == 0 {
			continue
		}
		if stalled(colony, route.SourcePinID, now) || stalled(colony, route.DestinationPinID, now) {
			continue
		}

		cycles := pinCyclesPerHour(colony, route.SourcePinID, schematics, now)
		if cycles <= 0 {
			cycles = pinCyclesPerHour(colony, route.DestinationPinID, schematics, now)
		}
		if cycles <= 0 {
			cycles = 1
		}

		legs := planetary.RouteCustomsLegs(colony, route, cycles)
		switch {
		case schematics[route.SourcePinID] != nil:
			factoryLegs[route.SourcePinID] = append(factoryLegs[route.SourcePinID], legs...)
		case schematics[route.DestinationPinID] != nil:
			factoryLegs[route.DestinationPinID] = append(factoryLegs[route.DestinationPinID], legs...)
		default:
			planetLegs = append(planetLegs, legs...)
		}
	}
	return factoryLegs, planetLegs
}

// stalled reports whether the pin is an extractor or factory whose program has expired,
// so routes touching it move nothing
func stalled(colony *planetary.Colony, pinID int64, now time.Time) bool {
	pin, ok := colony.PinByID(pinID)
	if !ok {
		return false
	}
	return (pin.Kind == planetary.PinKindExtractor || pin.Kind == planetary.PinKindFactory) && pin.IsExpired(now)
}

func pinCyclesPerHour(
	colony *planetary.Colony,
	pinID int64,
	schematics map[int64]*planetary.Schematic,
	now time.Time,
) float64 {
	if s, ok := schematics[pinID]; ok {
		return s.CyclesPerHour()
	}
	pin, ok := colony.PinByID(pinID)
	if !ok || pin.Kind != planetary.PinKindExtractor || pin.IsExpired(now) {
		return 0
	}
	if pin.ExtractorDetails == nil || pin.ExtractorDetails.CycleTime <= 0 {
		return 0
	}
	return 3600 / float64(pin.ExtractorDetails.CycleTime)
}

func zeroProfit() planetary.Profit {
	return planetary.Profit{
		OutputValue: decimal.Zero,
		InputCost:   decimal.Zero,
		ExportTax:   decimal.Zero,
		ImportTax:   decimal.Zero,
		Profit:      decimal.Zero,
	}
}
