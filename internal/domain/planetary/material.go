package planetary

import (
	"fmt"
	"strings"
)

// Tier is the processing depth of a planetary material
type Tier string

const (
	TierR0 Tier = "R0"
	TierP1 Tier = "P1"
	TierP2 Tier = "P2"
	TierP3 Tier = "P3"
	TierP4 Tier = "P4"
)

// Rank orders tiers from raw to most refined. Unknown tiers sort last.
func (t Tier) Rank() int {
	switch t {
	case TierR0:
		return 0
	case TierP1:
		return 1
	case TierP2:
		return 2
	case TierP3:
		return 3
	case TierP4:
		return 4
	default:
		return 5
	}
}

// ParseTier validates a tier name
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToUpper(strings.TrimSpace(s)))
	if t.Rank() > 4 {
		return "", fmt.Errorf("unknown tier %q", s)
	}
	return t, nil
}

// Material is a planetary commodity from the static reference data
type Material struct {
	TypeID int32
	Name   string
	Tier   Tier
}

// SchematicQuantity is one line of a schematic recipe
type SchematicQuantity struct {
	TypeID   int32
	Quantity int64
}

// Schematic is a static recipe: inputs are consumed every cycle to make one output batch
type Schematic struct {
	SchematicID      int32
	Name             string
	CycleTimeSeconds int
	Inputs           []SchematicQuantity
	Output           SchematicQuantity
}

// CyclesPerHour returns how many cycles complete per hour, 0 for invalid cycle times
func (s *Schematic) CyclesPerHour() float64 {
	if s == nil || s.CycleTimeSeconds <= 0 {
		return 0
	}
	return secondsPerHour / float64(s.CycleTimeSeconds)
}

// PriceSource selects which side of the market values a material
type PriceSource string

const (
	PriceSourceSell  PriceSource = "sell"
	PriceSourceBuy   PriceSource = "buy"
	PriceSourceSplit PriceSource = "split"
)

// ParsePriceSource validates a price source name; empty defaults to sell
func ParsePriceSource(s string) (PriceSource, error) {
	switch PriceSource(strings.ToLower(strings.TrimSpace(s))) {
	case "", PriceSourceSell:
		return PriceSourceSell, nil
	case PriceSourceBuy:
		return PriceSourceBuy, nil
	case PriceSourceSplit:
		return PriceSourceSplit, nil
	default:
		return "", fmt.Errorf("unknown price source %q (expected sell, buy or split)", s)
	}
}

// TaxRates are customs office tax fractions applied to the value of customs legs
type TaxRates struct {
	Export float64
	Import float64
}
