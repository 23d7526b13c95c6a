package steps

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/eve-pi-go/internal/domain/supplychain"
)

type depletionContext struct {
	netPerHour      float64
	consumedPerHour float64
	stock           int64
	forecast        *float64
}

func (dc *depletionContext) reset() {
	*dc = depletionContext{}
}

func (dc *depletionContext) aMaterialWithNetRateConsumptionAndStock(net, consumed float64, stock int64) error {
	dc.netPerHour = net
	dc.consumedPerHour = consumed
	dc.stock = stock
	return nil
}

func (dc *depletionContext) iForecastDepletion() error {
	dc.forecast = supplychain.ForecastDepletion(dc.netPerHour, dc.consumedPerHour, dc.stock)
	return nil
}

func (dc *depletionContext) theForecastShouldBe(expected string) error {
	if expected == "not depleting" {
		if dc.forecast != nil {
			return fmt.Errorf("expected no depletion, got %.2f hours", *dc.forecast)
		}
		return nil
	}

	hours, err := strconv.ParseFloat(strings.TrimSuffix(expected, " hours"), 64)
	if err != nil {
		return fmt.Errorf("invalid expectation %q", expected)
	}
	if dc.forecast == nil {
		return fmt.Errorf("expected %.2f hours, got not depleting", hours)
	}
	if math.Abs(*dc.forecast-hours) > 1e-9 {
		return fmt.Errorf("expected %.2f hours, got %.2f", hours, *dc.forecast)
	}
	return nil
}

// InitializeDepletionScenario registers depletion forecast steps
func InitializeDepletionScenario(ctx *godog.ScenarioContext) {
	dc := &depletionContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		dc.reset()
		return ctx, nil
	})

	ctx.Step(`^a material with net rate (-?[0-9.]+) per hour, consumption ([0-9.]+) per hour and (\d+) units in stock$`, dc.aMaterialWithNetRateConsumptionAndStock)
	ctx.Step(`^I forecast depletion$`, dc.iForecastDepletion)
	ctx.Step(`^the forecast should be "([^"]*)"$`, dc.theForecastShouldBe)
}
