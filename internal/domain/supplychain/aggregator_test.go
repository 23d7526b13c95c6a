package supplychain_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
	"github.com/andrescamacho/eve-pi-go/internal/domain/stockpile"
	"github.com/andrescamacho/eve-pi-go/internal/domain/supplychain"
	"github.com/andrescamacho/eve-pi-go/test/helpers"
)

const (
	typeBaseMetals    int32 = 2267
	typeNobleMetals   int32 = 2270
	typeReactiveMtl   int32 = 2398
	typePreciousMtl   int32 = 2399
	schematicReactive int32 = 127
	schematicPrecious int32 = 128
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func newReference() *helpers.MockReferenceProvider {
	return helpers.NewMockReferenceProvider().
		AddMaterial(typeBaseMetals, "Base Metals", planetary.TierR0).
		AddMaterial(typeNobleMetals, "Noble Metals", planetary.TierR0).
		AddMaterial(typeReactiveMtl, "Reactive Metals", planetary.TierP1).
		AddMaterial(typePreciousMtl, "Precious Metals", planetary.TierP1).
		AddSchematic(&planetary.Schematic{
			SchematicID:      schematicReactive,
			Name:             "Reactive Metals",
			CycleTimeSeconds: 3600,
			Inputs:           []planetary.SchematicQuantity{{TypeID: typeBaseMetals, Quantity: 500}},
			Output:           planetary.SchematicQuantity{TypeID: typeReactiveMtl, Quantity: 20},
		}).
		AddSchematic(&planetary.Schematic{
			SchematicID:      schematicPrecious,
			Name:             "Precious Metals",
			CycleTimeSeconds: 1800,
			Inputs:           []planetary.SchematicQuantity{{TypeID: typeNobleMetals, Quantity: 3000}},
			Output:           planetary.SchematicQuantity{TypeID: typePreciousMtl, Quantity: 20},
		}).
		AddSolarSystem(30000142, "Jita")
}

func extractorPin(pinID int64, product int32, qty int64, cycle int, expiry time.Time) planetary.Pin {
	return planetary.Pin{
		PinID:      pinID,
		TypeID:     3062,
		Kind:       planetary.PinKindExtractor,
		ExpiryTime: &expiry,
		ExtractorDetails: &planetary.ExtractorDetails{
			CycleTime: cycle, ProductTypeID: product, QtyPerCycle: qty,
		},
	}
}

func factoryPin(pinID int64, schematicID int32) planetary.Pin {
	return planetary.Pin{
		PinID:          pinID,
		TypeID:         2473,
		Kind:           planetary.PinKindFactory,
		FactoryDetails: &planetary.FactoryDetails{SchematicID: schematicID},
	}
}

func storagePin(pinID int64, typeID int32, contents ...planetary.PinContent) planetary.Pin {
	return planetary.Pin{PinID: pinID, TypeID: typeID, Kind: planetary.PinKindStorage, Contents: contents}
}

func snapshot(owner, planetID int64, pins ...planetary.Pin) *planetary.PlanetSnapshot {
	return &planetary.PlanetSnapshot{
		Planet: planetary.Planet{
			OwnerID: owner, PlanetID: planetID, PlanetType: "barren", SolarSystemID: 30000142,
		},
		Colony: planetary.Colony{Pins: pins},
	}
}

func findItem(t *testing.T, items []*supplychain.Item, typeID int32) *supplychain.Item {
	t.Helper()
	for _, item := range items {
		if item.TypeID == typeID {
			return item
		}
	}
	t.Fatalf("no item for type %d", typeID)
	return nil
}

func TestAggregate_ExtractorFeedsFactory(t *testing.T) {
	// Arrange
	aggregator := supplychain.NewAggregator(newReference(), shared.NewMockClock(testNow))
	in := supplychain.Input{
		Snapshots: []*planetary.PlanetSnapshot{snapshot(1001, 40000001,
			extractorPin(1, typeBaseMetals, 9000, 1800, testNow.Add(24*time.Hour)),
			factoryPin(2, schematicReactive),
			storagePin(3, 2544, planetary.PinContent{TypeID: typeBaseMetals, Amount: 1000}),
		)},
		CharacterNames: map[int64]string{1001: "Miner One"},
	}

	// Act
	result, err := aggregator.Aggregate(context.Background(), in)

	// Assert
	require.NoError(t, err)
	base := findItem(t, result.Items, typeBaseMetals)
	assert.Equal(t, 18000.0, base.ProducedPerHour)
	assert.Equal(t, 500.0, base.ConsumedPerHour)
	assert.Equal(t, 17500.0, base.NetPerHour)
	assert.Equal(t, int64(1000), base.CurrentStock)
	assert.Nil(t, base.DepletionHours, "net positive material must not forecast depletion")
	assert.Equal(t, supplychain.SourceExtracted, base.Source)
	require.Len(t, base.Producers, 1)
	assert.Equal(t, "Miner One", base.Producers[0].CharacterName)
	assert.Equal(t, "Jita", base.Producers[0].SolarSystemName)

	reactive := findItem(t, result.Items, typeReactiveMtl)
	assert.Equal(t, 20.0, reactive.ProducedPerHour)
	assert.Equal(t, supplychain.SourceProduced, reactive.Source)
	assert.Empty(t, result.Warnings)
}

func TestAggregate_BoughtMaterialDepletes(t *testing.T) {
	// Arrange
	aggregator := supplychain.NewAggregator(newReference(), shared.NewMockClock(testNow))
	in := supplychain.Input{
		Snapshots: []*planetary.PlanetSnapshot{snapshot(1001, 40000001,
			factoryPin(1, schematicPrecious),
			factoryPin(2, schematicPrecious),
			storagePin(3, 2544, planetary.PinContent{TypeID: typeNobleMetals, Amount: 24000}),
		)},
	}

	// Act
	result, err := aggregator.Aggregate(context.Background(), in)

	// Assert
	require.NoError(t, err)
	noble := findItem(t, result.Items, typeNobleMetals)
	assert.Equal(t, supplychain.SourceBought, noble.Source)
	assert.Equal(t, 12000.0, noble.ConsumedPerHour, "each factory pin counts")
	assert.Equal(t, -12000.0, noble.NetPerHour)
	require.NotNil(t, noble.DepletionHours)
	assert.InDelta(t, 2.0, *noble.DepletionHours, 1e-9)
}

func TestAggregate_NoStockMeansNoForecast(t *testing.T) {
	aggregator := supplychain.NewAggregator(newReference(), shared.NewMockClock(testNow))
	in := supplychain.Input{
		Snapshots: []*planetary.PlanetSnapshot{snapshot(1001, 40000001, factoryPin(1, schematicPrecious))},
	}

	result, err := aggregator.Aggregate(context.Background(), in)

	require.NoError(t, err)
	noble := findItem(t, result.Items, typeNobleMetals)
	assert.Less(t, noble.NetPerHour, 0.0)
	assert.Nil(t, noble.DepletionHours)
}

func TestAggregate_MixedSourceAcrossPlanets(t *testing.T) {
	// Arrange: one planet refines Reactive Metals, another extracts it directly
	aggregator := supplychain.NewAggregator(newReference(), shared.NewMockClock(testNow))
	in := supplychain.Input{
		Snapshots: []*planetary.PlanetSnapshot{
			snapshot(1001, 40000001, factoryPin(1, schematicReactive)),
			snapshot(1002, 40000002, extractorPin(5, typeReactiveMtl, 100, 3600, testNow.Add(time.Hour))),
		},
	}

	// Act
	result, err := aggregator.Aggregate(context.Background(), in)

	// Assert
	require.NoError(t, err)
	reactive := findItem(t, result.Items, typeReactiveMtl)
	assert.Equal(t, supplychain.SourceMixed, reactive.Source)
	assert.Equal(t, 120.0, reactive.ProducedPerHour)
	require.Len(t, reactive.Producers, 2)
	assert.Equal(t, int64(40000002), reactive.Producers[0].PlanetID, "producers sorted by rate descending")
}

func TestAggregate_ExpiredExtractorIgnored(t *testing.T) {
	aggregator := supplychain.NewAggregator(newReference(), shared.NewMockClock(testNow))
	in := supplychain.Input{
		Snapshots: []*planetary.PlanetSnapshot{snapshot(1001, 40000001,
			extractorPin(1, typeBaseMetals, 9000, 1800, testNow.Add(-time.Hour)),
			factoryPin(2, schematicReactive),
		)},
	}

	result, err := aggregator.Aggregate(context.Background(), in)

	require.NoError(t, err)
	base := findItem(t, result.Items, typeBaseMetals)
	assert.Equal(t, 0.0, base.ProducedPerHour)
	assert.Equal(t, supplychain.SourceBought, base.Source)
}

func TestAggregate_ExpiredFactoryIgnored(t *testing.T) {
	// Arrange
	expired := factoryPin(2, schematicReactive)
	expiry := testNow.Add(-time.Hour)
	expired.ExpiryTime = &expiry
	aggregator := supplychain.NewAggregator(newReference(), shared.NewMockClock(testNow))
	in := supplychain.Input{
		Snapshots: []*planetary.PlanetSnapshot{snapshot(1001, 40000001,
			extractorPin(1, typeBaseMetals, 9000, 1800, testNow.Add(time.Hour)),
			expired,
			factoryPin(3, schematicPrecious),
		)},
	}

	// Act
	result, err := aggregator.Aggregate(context.Background(), in)

	// Assert
	require.NoError(t, err)
	base := findItem(t, result.Items, typeBaseMetals)
	assert.Equal(t, 18000.0, base.ProducedPerHour)
	assert.Equal(t, 0.0, base.ConsumedPerHour)
	assert.Equal(t, supplychain.SourceExtracted, base.Source)
	for _, item := range result.Items {
		assert.NotEqual(t, typeReactiveMtl, item.TypeID, "an expired factory produces nothing")
	}
	assert.Equal(t, 40.0, findItem(t, result.Items, typePreciousMtl).ProducedPerHour)
}

func TestAggregate_JoinsStockpileMarkers(t *testing.T) {
	// Arrange
	markers := []*stockpile.Marker{
		{Key: stockpile.MarkerKey{UserID: 7, TypeID: typeNobleMetals, OwnerType: stockpile.OwnerCharacter, OwnerID: 1001, LocationID: 60003760}, DesiredQuantity: 30},
		{Key: stockpile.MarkerKey{UserID: 7, TypeID: typeNobleMetals, OwnerType: stockpile.OwnerCorporation, OwnerID: 98000001, LocationID: 60003760}, DesiredQuantity: 70},
		{Key: stockpile.MarkerKey{UserID: 7, TypeID: 9999, OwnerType: stockpile.OwnerCharacter, OwnerID: 1001, LocationID: 60003760}, DesiredQuantity: 5},
	}
	aggregator := supplychain.NewAggregator(newReference(), shared.NewMockClock(testNow))
	in := supplychain.Input{
		Snapshots: []*planetary.PlanetSnapshot{snapshot(1001, 40000001, factoryPin(1, schematicPrecious))},
		Markers:   markers,
	}

	// Act
	result, err := aggregator.Aggregate(context.Background(), in)

	// Assert
	require.NoError(t, err)
	noble := findItem(t, result.Items, typeNobleMetals)
	assert.Equal(t, int64(100), noble.StockpileQty)
	assert.Len(t, noble.StockpileMarkers, 2)
	for _, item := range result.Items {
		assert.NotEqual(t, int32(9999), item.TypeID, "markers alone do not create items")
	}
}

func TestAggregate_MissingSchematicDegradesToWarning(t *testing.T) {
	aggregator := supplychain.NewAggregator(newReference(), shared.NewMockClock(testNow))
	in := supplychain.Input{
		Snapshots: []*planetary.PlanetSnapshot{snapshot(1001, 40000001,
			factoryPin(1, 4242),
			factoryPin(2, 4242),
			factoryPin(3, schematicReactive),
		)},
	}

	result, err := aggregator.Aggregate(context.Background(), in)

	require.NoError(t, err)
	require.Len(t, result.Warnings, 1, "misses are reported once per key")
	assert.True(t, shared.IsMissingReferenceData(result.Warnings[0]))
	assert.Len(t, result.Items, 2)
}

func TestAggregate_LaunchpadScope(t *testing.T) {
	// Arrange: launchpad 10 feeds factory 11; factory 12 is on its own storage.
	snap := snapshot(1001, 40000001,
		storagePin(10, 2544, planetary.PinContent{TypeID: typeNobleMetals, Amount: 6000}),
		factoryPin(11, schematicPrecious),
		factoryPin(12, schematicReactive),
		storagePin(13, 2541, planetary.PinContent{TypeID: typeNobleMetals, Amount: 50000}),
	)
	snap.Colony.Routes = []planetary.Route{
		{RouteID: 1, SourcePinID: 10, DestinationPinID: 11, ContentTypeID: typeNobleMetals, Quantity: 3000, Waypoints: []int64{10, 11}},
		{RouteID: 2, SourcePinID: 13, DestinationPinID: 12, ContentTypeID: typeBaseMetals, Quantity: 500, Waypoints: []int64{13, 12}},
	}
	aggregator := supplychain.NewAggregator(newReference(), shared.NewMockClock(testNow))

	// Act
	result, err := aggregator.Aggregate(context.Background(), supplychain.Input{
		Snapshots: []*planetary.PlanetSnapshot{snap, snapshot(1002, 40000002, factoryPin(1, schematicPrecious))},
		Scope:     supplychain.Scope{CharacterID: 1001, PlanetID: 40000001, LaunchpadPinID: 10},
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	noble := findItem(t, result.Items, typeNobleMetals)
	assert.Equal(t, 6000.0, noble.ConsumedPerHour)
	assert.Equal(t, int64(6000), noble.CurrentStock, "only the launchpad's contents count")
	require.NotNil(t, noble.DepletionHours)
	assert.InDelta(t, 1.0, *noble.DepletionHours, 1e-9)
}

func TestAggregate_SortedByTierThenNetThenName(t *testing.T) {
	aggregator := supplychain.NewAggregator(newReference(), shared.NewMockClock(testNow))
	in := supplychain.Input{
		Snapshots: []*planetary.PlanetSnapshot{snapshot(1001, 40000001,
			factoryPin(1, schematicReactive),
			factoryPin(2, schematicPrecious),
		)},
	}

	result, err := aggregator.Aggregate(context.Background(), in)

	require.NoError(t, err)
	require.Len(t, result.Items, 4)
	assert.Equal(t, typeNobleMetals, result.Items[0].TypeID, "R0 with the worst deficit first")
	assert.Equal(t, typeBaseMetals, result.Items[1].TypeID)
	assert.Equal(t, typeReactiveMtl, result.Items[2].TypeID)
	assert.Equal(t, typePreciousMtl, result.Items[3].TypeID)
}

func TestAggregate_NetIsProducedMinusConsumed(t *testing.T) {
	aggregator := supplychain.NewAggregator(newReference(), shared.NewMockClock(testNow))
	in := supplychain.Input{
		Snapshots: []*planetary.PlanetSnapshot{
			snapshot(1001, 40000001,
				extractorPin(1, typeNobleMetals, 3333, 900, testNow.Add(time.Hour)),
				factoryPin(2, schematicPrecious),
				storagePin(3, 2544, planetary.PinContent{TypeID: typeNobleMetals, Amount: 10}),
			),
		},
	}

	result, err := aggregator.Aggregate(context.Background(), in)

	require.NoError(t, err)
	for _, item := range result.Items {
		assert.Equal(t, item.ProducedPerHour-item.ConsumedPerHour, item.NetPerHour)
		if item.NetPerHour >= 0 {
			assert.Nil(t, item.DepletionHours)
		}
	}
}
