package planetary

import "time"

const secondsPerHour = 3600.0

// MaterialRate is a per-hour flow of one material
type MaterialRate struct {
	TypeID  int32
	PerHour float64
}

// FactoryRates is the hourly output and input demand of one or more factories
// running the same schematic
type FactoryRates struct {
	SchematicID   int32
	OutputTypeID  int32
	OutputPerHour float64
	Inputs        []MaterialRate
}

// ExtractorRate converts an extraction program into units per hour.
// Non-positive cycle times or quantities yield 0.
func ExtractorRate(e *ExtractorDetails) float64 {
	if e == nil || e.CycleTime <= 0 || e.QtyPerCycle <= 0 {
		return 0
	}
	return float64(e.QtyPerCycle) / float64(e.CycleTime) * secondsPerHour
}

// PinExtractionRate is ExtractorRate for a pin, honouring program expiry: an expired
// extractor contributes nothing even if residual contents remain.
func PinExtractionRate(p *Pin, now time.Time) float64 {
	if p == nil || p.Kind != PinKindExtractor || p.IsExpired(now) {
		return 0
	}
	return ExtractorRate(p.ExtractorDetails)
}

// ComputeFactoryRates converts a schematic into hourly rates, scaled by the number of
// factory pins running it. Each pin counts; rates are never deduplicated.
func ComputeFactoryRates(s *Schematic, multiplicity int) FactoryRates {
	if s == nil {
		return FactoryRates{}
	}
	rates := FactoryRates{
		SchematicID:  s.SchematicID,
		OutputTypeID: s.Output.TypeID,
		Inputs:       make([]MaterialRate, 0, len(s.Inputs)),
	}

	cycles := s.CyclesPerHour() * float64(max(multiplicity, 0))
	rates.OutputPerHour = float64(max(s.Output.Quantity, 0)) * cycles
	for _, in := range s.Inputs {
		rates.Inputs = append(rates.Inputs, MaterialRate{
			TypeID:  in.TypeID,
			PerHour: float64(max(in.Quantity, 0)) * cycles,
		})
	}
	return rates
}

// PinFactoryRates is ComputeFactoryRates for a single factory pin. A factory whose
// expiry has passed runs nothing, so every rate is 0.
func PinFactoryRates(p *Pin, s *Schematic, now time.Time) FactoryRates {
	if p == nil || p.Kind != PinKindFactory || p.IsExpired(now) {
		return ComputeFactoryRates(s, 0)
	}
	return ComputeFactoryRates(s, 1)
}

// LegDirection is the direction of goods crossing a customs office
type LegDirection string

const (
	LegExport LegDirection = "export"
	LegImport LegDirection = "import"
)

// CustomsLeg is an hourly quantity of one material crossing customs in one direction
type CustomsLeg struct {
	RouteID         int64
	Direction       LegDirection
	TypeID          int32
	QuantityPerHour float64
}

// RouteCustomsLegs expands a route into its customs legs. Each crossing goes up to orbit
// (export) and back down into the network (import). cyclesPerHour is how often the route
// moves its quantity.
func RouteCustomsLegs(c *Colony, r Route, cyclesPerHour float64) []CustomsLeg {
	crossings := c.CustomsCrossings(r)
	if crossings == 0 || r.Quantity <= 0 || cyclesPerHour <= 0 {
		return nil
	}
	qty := float64(r.Quantity) * cyclesPerHour
	legs := make([]CustomsLeg, 0, crossings*2)
	for i := 0; i < crossings; i++ {
		legs = append(legs,
			CustomsLeg{RouteID: r.RouteID, Direction: LegExport, TypeID: r.ContentTypeID, QuantityPerHour: qty},
			CustomsLeg{RouteID: r.RouteID, Direction: LegImport, TypeID: r.ContentTypeID, QuantityPerHour: qty},
		)
	}
	return legs
}
