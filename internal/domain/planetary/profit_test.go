package planetary_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
)

func priceTable(prices map[int32]float64) planetary.PriceFunc {
	return func(typeID int32) decimal.Decimal {
		p, ok := prices[typeID]
		if !ok {
			return decimal.Zero
		}
		return decimal.NewFromFloat(p)
	}
}

func TestFactoryProfitPerHour(t *testing.T) {
	// Arrange
	rates := planetary.FactoryRates{
		OutputTypeID:  3645,
		OutputPerHour: 40,
		Inputs:        []planetary.MaterialRate{{TypeID: 2268, PerHour: 6000}},
	}
	price := priceTable(map[int32]float64{3645: 500, 2268: 2})
	legs := []planetary.CustomsLeg{
		{Direction: planetary.LegExport, TypeID: 3645, QuantityPerHour: 40},
		{Direction: planetary.LegImport, TypeID: 3645, QuantityPerHour: 40},
	}
	taxes := planetary.TaxRates{Export: 0.10, Import: 0.05}

	// Act
	profit := planetary.FactoryProfitPerHour(rates, price, legs, taxes)

	// Assert
	assert.True(t, decimal.NewFromInt(20000).Equal(profit.OutputValue), profit.OutputValue.String())
	assert.True(t, decimal.NewFromInt(12000).Equal(profit.InputCost), profit.InputCost.String())
	assert.True(t, decimal.NewFromInt(2000).Equal(profit.ExportTax), profit.ExportTax.String())
	assert.True(t, decimal.NewFromInt(1000).Equal(profit.ImportTax), profit.ImportTax.String())
	assert.True(t, decimal.NewFromInt(5000).Equal(profit.Profit), profit.Profit.String())
}

func TestFactoryProfitPerHour_MissingPricesAreZero(t *testing.T) {
	rates := planetary.FactoryRates{
		OutputTypeID:  3645,
		OutputPerHour: 40,
		Inputs:        []planetary.MaterialRate{{TypeID: 2268, PerHour: 6000}},
	}
	price := priceTable(map[int32]float64{2268: 2})

	profit := planetary.FactoryProfitPerHour(rates, price, nil, planetary.TaxRates{Export: 0.1, Import: 0.05})

	assert.True(t, profit.OutputValue.IsZero())
	assert.True(t, decimal.NewFromInt(-12000).Equal(profit.Profit), profit.Profit.String())
}

func TestFactoryProfitPerHour_NoCustomsNoTax(t *testing.T) {
	rates := planetary.FactoryRates{OutputTypeID: 1, OutputPerHour: 10}
	price := priceTable(map[int32]float64{1: 3})

	profit := planetary.FactoryProfitPerHour(rates, price, nil, planetary.TaxRates{Export: 0.5, Import: 0.5})

	assert.True(t, profit.ExportTax.IsZero())
	assert.True(t, profit.ImportTax.IsZero())
	assert.True(t, decimal.NewFromInt(30).Equal(profit.Profit))
}
