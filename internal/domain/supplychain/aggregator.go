package supplychain

import (
	"context"
	"sort"

	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
	"github.com/andrescamacho/eve-pi-go/internal/domain/stockpile"
)

// Input is everything one aggregation pass reads. Snapshots are whatever is committed
// at read time.
type Input struct {
	Snapshots      []*planetary.PlanetSnapshot
	CharacterNames map[int64]string
	Markers        []*stockpile.Marker
	Scope          Scope
}

// Result is the aggregated supply chain plus any reference data misses
type Result struct {
	Items    []*Item
	Warnings []error
}

// Aggregator groups per-pin rates by material across a scope
type Aggregator struct {
	reference planetary.ReferenceProvider
	clock     shared.Clock
}

// NewAggregator creates an aggregator. If clock is nil, uses RealClock.
func NewAggregator(reference planetary.ReferenceProvider, clock shared.Clock) *Aggregator {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Aggregator{reference: reference, clock: clock}
}

type planetKey struct {
	characterID int64
	planetID    int64
}

// accumulator collects flows of one material
type accumulator struct {
	produced     float64
	consumed     float64
	stock        int64
	hasExtractor bool
	hasFactory   bool
	producers    map[planetKey]float64
	consumers    map[planetKey]float64
}

func newAccumulator() *accumulator {
	return &accumulator{
		producers: make(map[planetKey]float64),
		consumers: make(map[planetKey]float64),
	}
}

// Aggregate builds the supply-chain items for the input scope:
//  1. extractor and factory output is summed into produced per hour
//  2. factory input demand is summed into consumed per hour
//  3. storage contents inside the scope are summed into current stock
//  4. items get net rate, source classification, depletion forecast and markers
func (a *Aggregator) Aggregate(ctx context.Context, in Input) (*Result, error) {
	refs := newLookup(ctx, a.reference, planetary.PriceSourceSell)
	now := a.clock.Now()

	flows := make(map[int32]*accumulator)
	flow := func(typeID int32) *accumulator {
		acc, ok := flows[typeID]
		if !ok {
			acc = newAccumulator()
			flows[typeID] = acc
		}
		return acc
	}
	planets := make(map[planetKey]planetary.Planet)

	for _, snapshot := range in.Snapshots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		planet := snapshot.Planet
		if !in.Scope.Includes(planet.OwnerID, planet.PlanetID) {
			continue
		}
		key := planetKey{characterID: planet.OwnerID, planetID: planet.PlanetID}
		planets[key] = planet

		colony := snapshot.Colony
		inScope := func(pin *planetary.Pin) bool { return true }
		holdsStock := func(pin *planetary.Pin) bool { return pin.HoldsStock() }
		if in.Scope.IsLaunchpad() {
			routed := colony.RoutedPinIDs(in.Scope.LaunchpadPinID)
			inScope = func(pin *planetary.Pin) bool { return routed[pin.PinID] }
			holdsStock = func(pin *planetary.Pin) bool { return pin.PinID == in.Scope.LaunchpadPinID }
		}

		for i := range colony.Pins {
			pin := &colony.Pins[i]
			if !inScope(pin) {
				continue
			}

			switch pin.Kind {
			case planetary.PinKindExtractor:
				rate := planetary.PinExtractionRate(pin, now)
				if rate <= 0 {
					continue
				}
				acc := flow(pin.ExtractorDetails.ProductTypeID)
				acc.produced += rate
				acc.hasExtractor = true
				acc.producers[key] += rate

			case planetary.PinKindFactory:
				schematicID, ok := pin.EffectiveSchematicID()
				if !ok {
					continue
				}
				schematic := refs.schematic(schematicID)
				if schematic == nil {
					continue
				}
				rates := planetary.PinFactoryRates(pin, schematic, now)
				if rates.OutputPerHour > 0 {
					acc := flow(rates.OutputTypeID)
					acc.produced += rates.OutputPerHour
					acc.hasFactory = true
					acc.producers[key] += rates.OutputPerHour
				}
				for _, input := range rates.Inputs {
					if input.PerHour <= 0 {
						continue
					}
					acc := flow(input.TypeID)
					acc.consumed += input.PerHour
					acc.consumers[key] += input.PerHour
				}
			}

			if holdsStock(pin) {
				for _, content := range pin.Contents {
					if content.Amount > 0 {
						flow(content.TypeID).stock += content.Amount
					}
				}
			}
		}
	}

	markersByType := make(map[int32][]*stockpile.Marker)
	for _, m := range in.Markers {
		markersByType[m.Key.TypeID] = append(markersByType[m.Key.TypeID], m)
	}

	items := make([]*Item, 0, len(flows))
	for typeID, acc := range flows {
		if acc.produced <= 0 && acc.consumed <= 0 {
			continue
		}
		material := refs.material(typeID)
		net := acc.produced - acc.consumed
		markers := markersByType[typeID]

		items = append(items, &Item{
			TypeID:           typeID,
			Name:             material.Name,
			Tier:             material.Tier,
			Source:           classify(acc),
			ProducedPerHour:  acc.produced,
			ConsumedPerHour:  acc.consumed,
			NetPerHour:       net,
			CurrentStock:     acc.stock,
			StockpileQty:     stockpile.TotalDesired(markers),
			DepletionHours:   ForecastDepletion(net, acc.consumed, acc.stock),
			Producers:        a.contributors(acc.producers, planets, in.CharacterNames, refs),
			Consumers:        a.contributors(acc.consumers, planets, in.CharacterNames, refs),
			StockpileMarkers: markers,
		})
	}

	SortItems(items)
	return &Result{Items: items, Warnings: refs.warnings}, nil
}

// classify derives the source of a material from its contributors
func classify(acc *accumulator) Source {
	switch {
	case acc.produced <= 0 && acc.consumed > 0:
		return SourceBought
	case acc.hasExtractor && acc.hasFactory:
		return SourceMixed
	case acc.hasExtractor:
		return SourceExtracted
	default:
		return SourceProduced
	}
}

func (a *Aggregator) contributors(
	rates map[planetKey]float64,
	planets map[planetKey]planetary.Planet,
	names map[int64]string,
	refs *lookup,
) []Contributor {
	out := make([]Contributor, 0, len(rates))
	for key, rate := range rates {
		planet := planets[key]
		out = append(out, Contributor{
			CharacterID:     key.characterID,
			CharacterName:   names[key.characterID],
			PlanetID:        key.planetID,
			PlanetType:      planet.PlanetType,
			SolarSystemName: refs.systemName(planet.SolarSystemID),
			RatePerHour:     rate,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RatePerHour != out[j].RatePerHour {
			return out[i].RatePerHour > out[j].RatePerHour
		}
		return out[i].PlanetID < out[j].PlanetID
	})
	return out
}
