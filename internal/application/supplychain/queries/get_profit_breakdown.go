package queries

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/eve-pi-go/internal/application/common"
	"github.com/andrescamacho/eve-pi-go/internal/domain/character"
	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
	"github.com/andrescamacho/eve-pi-go/internal/domain/supplychain"
)

// GetProfitBreakdownQuery asks for hourly profit of every factory on the user's planets.
// An empty PriceSource uses the configured default.
type GetProfitBreakdownQuery struct {
	UserID      int64
	PriceSource string
}

// GetProfitBreakdownResponse is the per-planet profit view plus account totals
type GetProfitBreakdownResponse struct {
	PriceSource      planetary.PriceSource
	Planets          []supplychain.PlanetProfit
	TotalOutputValue decimal.Decimal
	TotalInputCost   decimal.Decimal
	TotalExportTax   decimal.Decimal
	TotalImportTax   decimal.Decimal
	TotalProfit      decimal.Decimal
	Warnings         []string
}

// GetProfitBreakdownHandler handles the GetProfitBreakdown query
type GetProfitBreakdownHandler struct {
	characters    character.Repository
	colonies      planetary.ColonyRepository
	calculator    *supplychain.ProfitCalculator
	defaultSource planetary.PriceSource
}

// NewGetProfitBreakdownHandler creates a new GetProfitBreakdownHandler
func NewGetProfitBreakdownHandler(
	characters character.Repository,
	colonies planetary.ColonyRepository,
	reference planetary.ReferenceProvider,
	taxes planetary.TaxRates,
	defaultSource planetary.PriceSource,
	clock shared.Clock,
) *GetProfitBreakdownHandler {
	if defaultSource == "" {
		defaultSource = planetary.PriceSourceSell
	}
	return &GetProfitBreakdownHandler{
		characters:    characters,
		colonies:      colonies,
		calculator:    supplychain.NewProfitCalculator(reference, taxes, clock),
		defaultSource: defaultSource,
	}
}

// Handle executes the GetProfitBreakdown query
func (h *GetProfitBreakdownHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetProfitBreakdownQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetProfitBreakdownQuery")
	}
	if query.UserID <= 0 {
		return nil, shared.NewValidationError("user_id", "must be positive")
	}

	source := h.defaultSource
	if query.PriceSource != "" {
		parsed, err := planetary.ParsePriceSource(query.PriceSource)
		if err != nil {
			return nil, shared.NewValidationError("price_source", err.Error())
		}
		source = parsed
	}

	acc, err := loadAccount(ctx, h.characters, h.colonies, query.UserID)
	if err != nil {
		return nil, err
	}

	breakdown, err := h.calculator.Breakdown(ctx, acc.snapshots, acc.names, source)
	if err != nil {
		return nil, fmt.Errorf("failed to compute profit breakdown: %w", err)
	}

	logger := common.LoggerFromContext(ctx)
	for _, w := range breakdown.Warnings {
		logger.Log(common.LevelWarning, "Reference data missing during profit breakdown", map[string]interface{}{
			"user_id":      query.UserID,
			"price_source": string(source),
			"error":        w.Error(),
		})
	}

	return &GetProfitBreakdownResponse{
		PriceSource:      source,
		Planets:          breakdown.Planets,
		TotalOutputValue: breakdown.Totals.OutputValue,
		TotalInputCost:   breakdown.Totals.InputCost,
		TotalExportTax:   breakdown.Totals.ExportTax,
		TotalImportTax:   breakdown.Totals.ImportTax,
		TotalProfit:      breakdown.Totals.Profit,
		Warnings:         warningStrings(breakdown.Warnings),
	}, nil
}
