package planetary

import "github.com/shopspring/decimal"

// PriceFunc resolves a unit price for a material. Unknown prices must resolve to zero.
type PriceFunc func(typeID int32) decimal.Decimal

// Profit is an hourly ISK breakdown
type Profit struct {
	OutputValue decimal.Decimal
	InputCost   decimal.Decimal
	ExportTax   decimal.Decimal
	ImportTax   decimal.Decimal
	Profit      decimal.Decimal
}

// Add sums two breakdowns
func (p Profit) Add(o Profit) Profit {
	return Profit{
		OutputValue: p.OutputValue.Add(o.OutputValue),
		InputCost:   p.InputCost.Add(o.InputCost),
		ExportTax:   p.ExportTax.Add(o.ExportTax),
		ImportTax:   p.ImportTax.Add(o.ImportTax),
		Profit:      p.Profit.Add(o.Profit),
	}
}

// FactoryProfitPerHour values a factory's hourly output against its inputs and the
// customs legs attributed to it:
// profit = outputValue - inputCost - exportTax - importTax
func FactoryProfitPerHour(rates FactoryRates, price PriceFunc, legs []CustomsLeg, taxes TaxRates) Profit {
	outputValue := decimal.NewFromFloat(rates.OutputPerHour).Mul(price(rates.OutputTypeID))

	inputCost := decimal.Zero
	for _, in := range rates.Inputs {
		inputCost = inputCost.Add(decimal.NewFromFloat(in.PerHour).Mul(price(in.TypeID)))
	}

	exportTax, importTax := CustomsTax(legs, price, taxes)

	return Profit{
		OutputValue: outputValue,
		InputCost:   inputCost,
		ExportTax:   exportTax,
		ImportTax:   importTax,
		Profit:      outputValue.Sub(inputCost).Sub(exportTax).Sub(importTax),
	}
}

// CustomsTax sums valueOfLeg * rate over the legs, split by direction
func CustomsTax(legs []CustomsLeg, price PriceFunc, taxes TaxRates) (exportTax, importTax decimal.Decimal) {
	exportRate := decimal.NewFromFloat(taxes.Export)
	importRate := decimal.NewFromFloat(taxes.Import)
	exportTax, importTax = decimal.Zero, decimal.Zero

	for _, leg := range legs {
		value := decimal.NewFromFloat(leg.QuantityPerHour).Mul(price(leg.TypeID))
		switch leg.Direction {
		case LegExport:
			exportTax = exportTax.Add(value.Mul(exportRate))
		case LegImport:
			importTax = importTax.Add(value.Mul(importRate))
		}
	}
	return exportTax, importTax
}
