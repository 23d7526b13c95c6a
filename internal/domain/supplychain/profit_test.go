package supplychain_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
	"github.com/andrescamacho/eve-pi-go/internal/domain/supplychain"
)

func decimalEqual(t *testing.T, expected float64, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.NewFromFloat(expected).Equal(actual), "expected %v, got %s", expected, actual.String())
}

func TestProfitBreakdown_FactoryWithCustomsExport(t *testing.T) {
	// Arrange: factory 2 refines noble metals and ships its output to orbit through customs
	reference := newReference().
		SetPrice(typeNobleMetals, 1, 2).
		SetPrice(typePreciousMtl, 300, 500)
	snap := snapshot(1001, 40000001,
		factoryPin(2, schematicPrecious),
		storagePin(3, 2544),
	)
	snap.Colony.Routes = []planetary.Route{
		{RouteID: 1, SourcePinID: 2, DestinationPinID: 3, ContentTypeID: typePreciousMtl, Quantity: 20, Waypoints: []int64{2, 1000000001, 3}},
	}
	calculator := supplychain.NewProfitCalculator(reference, planetary.TaxRates{Export: 0.10, Import: 0.05}, shared.NewMockClock(testNow))

	// Act
	breakdown, err := calculator.Breakdown(context.Background(), []*planetary.PlanetSnapshot{snap},
		map[int64]string{1001: "Miner One"}, planetary.PriceSourceSell)

	// Assert
	require.NoError(t, err)
	require.Len(t, breakdown.Planets, 1)
	planet := breakdown.Planets[0]
	assert.Equal(t, "Miner One", planet.CharacterName)
	require.Len(t, planet.Factories, 1)

	// 40/h * 500 = 20000 output, 6000/h * 2 = 12000 input, legs 40/h * 500 = 20000 each way
	line := planet.Factories[0]
	assert.Equal(t, 40.0, line.OutputPerHour)
	assert.Equal(t, "Precious Metals", line.OutputName)
	decimalEqual(t, 20000, line.OutputValue)
	decimalEqual(t, 12000, line.InputCost)
	decimalEqual(t, 2000, line.ExportTax)
	decimalEqual(t, 1000, line.ImportTax)
	decimalEqual(t, 5000, line.Profit.Profit)

	decimalEqual(t, 5000, breakdown.Totals.Profit)
	decimalEqual(t, 20000, breakdown.Totals.OutputValue)
}

func TestProfitBreakdown_SplitPriceAverages(t *testing.T) {
	reference := newReference().
		SetPrice(typeNobleMetals, 1, 3).
		SetPrice(typePreciousMtl, 400, 600)
	calculator := supplychain.NewProfitCalculator(reference, planetary.TaxRates{}, shared.NewMockClock(testNow))

	breakdown, err := calculator.Breakdown(context.Background(),
		[]*planetary.PlanetSnapshot{snapshot(1001, 40000001, factoryPin(1, schematicPrecious))},
		nil, planetary.PriceSourceSplit)

	require.NoError(t, err)
	// 40 * 500 - 6000 * 2
	decimalEqual(t, 8000, breakdown.Totals.Profit)
}

func TestProfitBreakdown_MissingPricesDegradeToZero(t *testing.T) {
	calculator := supplychain.NewProfitCalculator(newReference(), planetary.TaxRates{Export: 0.1, Import: 0.05}, shared.NewMockClock(testNow))

	breakdown, err := calculator.Breakdown(context.Background(),
		[]*planetary.PlanetSnapshot{snapshot(1001, 40000001, factoryPin(1, schematicPrecious))},
		nil, planetary.PriceSourceSell)

	require.NoError(t, err)
	assert.True(t, breakdown.Totals.Profit.IsZero())
	assert.Len(t, breakdown.Warnings, 2, "one warning per unpriced type")
	for _, w := range breakdown.Warnings {
		assert.True(t, shared.IsMissingReferenceData(w))
	}
}

func TestProfitBreakdown_UnattributedLegsChargePlanet(t *testing.T) {
	// Arrange: an extractor exports raw material straight to orbit
	reference := newReference().SetPrice(typeBaseMetals, 1, 4)
	snap := snapshot(1001, 40000001,
		extractorPin(1, typeBaseMetals, 1000, 1800, testNow.Add(time.Hour)),
		storagePin(3, 2544),
	)
	snap.Colony.Routes = []planetary.Route{
		{RouteID: 1, SourcePinID: 1, DestinationPinID: 3, ContentTypeID: typeBaseMetals, Quantity: 1000, Waypoints: []int64{1, 1000000001, 3}},
	}
	calculator := supplychain.NewProfitCalculator(reference, planetary.TaxRates{Export: 0.10, Import: 0.05}, shared.NewMockClock(testNow))

	// Act
	breakdown, err := calculator.Breakdown(context.Background(), []*planetary.PlanetSnapshot{snap}, nil, planetary.PriceSourceSell)

	// Assert: 2 cycles/h * 1000 * 4 = 8000 ISK/h crossing each way
	require.NoError(t, err)
	planet := breakdown.Planets[0]
	assert.Empty(t, planet.Factories)
	decimalEqual(t, 800, planet.ExportTax)
	decimalEqual(t, 400, planet.ImportTax)
	decimalEqual(t, -1200, planet.Profit.Profit)
}

func TestProfitBreakdown_PlanetsSortedByProfit(t *testing.T) {
	reference := newReference().
		SetPrice(typeNobleMetals, 1, 1).
		SetPrice(typePreciousMtl, 500, 500).
		SetPrice(typeBaseMetals, 1, 1).
		SetPrice(typeReactiveMtl, 10, 10)
	calculator := supplychain.NewProfitCalculator(reference, planetary.TaxRates{}, shared.NewMockClock(testNow))

	breakdown, err := calculator.Breakdown(context.Background(), []*planetary.PlanetSnapshot{
		snapshot(1001, 40000001, factoryPin(1, schematicReactive)),
		snapshot(1001, 40000002, factoryPin(1, schematicPrecious)),
	}, nil, planetary.PriceSourceSell)

	require.NoError(t, err)
	require.Len(t, breakdown.Planets, 2)
	assert.Equal(t, int64(40000002), breakdown.Planets[0].PlanetID)
	assert.Equal(t, int64(40000001), breakdown.Planets[1].PlanetID)
}

func TestProfitBreakdown_ExpiredFactoryEarnsNothing(t *testing.T) {
	// Arrange
	reference := newReference().
		SetPrice(typeNobleMetals, 1, 2).
		SetPrice(typePreciousMtl, 300, 500)
	expired := factoryPin(2, schematicPrecious)
	expiry := testNow.Add(-time.Minute)
	expired.ExpiryTime = &expiry
	snap := snapshot(1001, 40000001, expired, storagePin(3, 2544))
	snap.Colony.Routes = []planetary.Route{
		{RouteID: 1, SourcePinID: 2, DestinationPinID: 3, ContentTypeID: typePreciousMtl, Quantity: 20, Waypoints: []int64{2, 1000000001, 3}},
	}
	calculator := supplychain.NewProfitCalculator(reference, planetary.TaxRates{Export: 0.10, Import: 0.05}, shared.NewMockClock(testNow))

	// Act
	breakdown, err := calculator.Breakdown(context.Background(), []*planetary.PlanetSnapshot{snap}, nil, planetary.PriceSourceSell)

	// Assert
	require.NoError(t, err)
	require.Len(t, breakdown.Planets, 1)
	assert.Empty(t, breakdown.Planets[0].Factories)
	decimalEqual(t, 0, breakdown.Totals.Profit)
	decimalEqual(t, 0, breakdown.Totals.ExportTax)
}
