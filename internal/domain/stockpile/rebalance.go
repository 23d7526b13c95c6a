package stockpile

import (
	"github.com/shopspring/decimal"

	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
)

// Allocate redistributes newTotal across markers in proportion to their previous
// quantities. Every position but the last gets round(newTotal*q_i/oldTotal) (half away
// from zero); the last absorbs the remainder so the sum is exactly newTotal. When all old
// quantities are zero the total is split evenly with the remainder on the last position.
// A position never takes more than what is left, so no allocation goes negative.
func Allocate(old []int64, newTotal int64) ([]int64, error) {
	if newTotal < 0 {
		return nil, shared.NewValidationError("new_total_quantity", "must not be negative")
	}
	n := len(old)
	if n == 0 {
		return nil, nil
	}
	if n == 1 {
		return []int64{newTotal}, nil
	}

	var oldTotal int64
	for _, q := range old {
		if q < 0 {
			return nil, shared.NewValidationError("desired_quantity", "existing marker has a negative quantity")
		}
		oldTotal += q
	}

	result := make([]int64, n)
	if oldTotal == 0 {
		share := newTotal / int64(n)
		for i := 0; i < n-1; i++ {
			result[i] = share
		}
		result[n-1] = newTotal - share*int64(n-1)
		return result, nil
	}

	total := decimal.NewFromInt(newTotal)
	divisor := decimal.NewFromInt(oldTotal)
	two := decimal.NewFromInt(2)

	var assigned int64
	for i := 0; i < n-1; i++ {
		quotient, remainder := total.Mul(decimal.NewFromInt(old[i])).QuoRem(divisor, 0)
		share := quotient.IntPart()
		if remainder.Mul(two).GreaterThanOrEqual(divisor) {
			share++
		}
		share = min(share, newTotal-assigned)
		result[i] = share
		assigned += share
	}
	result[n-1] = newTotal - assigned
	return result, nil
}

// CoveragePreset is a named coverage duration
type CoveragePreset string

// CoveragePresets maps preset names to hours
var CoveragePresets = map[CoveragePreset]float64{
	"1d":  24,
	"3d":  72,
	"1w":  168,
	"2w":  336,
	"30d": 720,
}

// PresetHours resolves a preset name
func PresetHours(preset string) (float64, error) {
	hours, ok := CoveragePresets[CoveragePreset(preset)]
	if !ok {
		return 0, shared.NewValidationError("preset", "unknown coverage preset "+preset)
	}
	return hours, nil
}

// ratePrecision is the number of decimal places kept from a summed float rate. Beyond it
// the digits are accumulation noise, e.g. 0.1+0.2 = 0.30000000000000004.
const ratePrecision = 6

// TargetForCoverage sizes a stockpile to last the given hours: ceil(consumedPerHour * hours)
func TargetForCoverage(consumedPerHour, hours float64) int64 {
	if consumedPerHour <= 0 || hours <= 0 {
		return 0
	}
	rate := decimal.NewFromFloat(consumedPerHour).Round(ratePrecision)
	span := decimal.NewFromFloat(hours).Round(ratePrecision)
	return rate.Mul(span).Round(ratePrecision).Ceil().IntPart()
}
