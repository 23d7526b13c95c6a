package setup

import (
	"github.com/andrescamacho/eve-pi-go/internal/application/account"
	"github.com/andrescamacho/eve-pi-go/internal/application/common"
	stockpileCommands "github.com/andrescamacho/eve-pi-go/internal/application/stockpile/commands"
	stockpileQueries "github.com/andrescamacho/eve-pi-go/internal/application/stockpile/queries"
	supplyChainQueries "github.com/andrescamacho/eve-pi-go/internal/application/supplychain/queries"
	"github.com/andrescamacho/eve-pi-go/internal/domain/character"
	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
	"github.com/andrescamacho/eve-pi-go/internal/domain/stockpile"
)

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	characters    character.Repository
	colonies      planetary.ColonyRepository
	markers       stockpile.MarkerRepository
	reference     planetary.ReferenceProvider
	taxes         planetary.TaxRates
	defaultSource planetary.PriceSource
	clock         shared.Clock

	// Shared by every stockpile writer so resizes and marker edits of one material serialize
	locks *stockpileCommands.MaterialLocks
}

// NewHandlerRegistry creates a new handler registry with required dependencies
func NewHandlerRegistry(
	characters character.Repository,
	colonies planetary.ColonyRepository,
	markers stockpile.MarkerRepository,
	reference planetary.ReferenceProvider,
	taxes planetary.TaxRates,
	defaultSource planetary.PriceSource,
	clock shared.Clock,
) *HandlerRegistry {
	// Default to real clock if not provided
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &HandlerRegistry{
		characters:    characters,
		colonies:      colonies,
		markers:       markers,
		reference:     reference,
		taxes:         taxes,
		defaultSource: defaultSource,
		clock:         clock,
		locks:         stockpileCommands.NewMaterialLocks(),
	}
}

// RegisterAccountHandlers registers character linking and listing
func (r *HandlerRegistry) RegisterAccountHandlers(m common.Mediator) error {
	if err := common.RegisterHandler[*account.AddCharacterCommand](m, account.NewAddCharacterHandler(r.characters)); err != nil {
		return err
	}
	return common.RegisterHandler[*account.ListCharactersQuery](m, account.NewListCharactersHandler(r.characters))
}

// RegisterSupplyChainHandlers registers the read-side supply chain and profit queries
func (r *HandlerRegistry) RegisterSupplyChainHandlers(m common.Mediator) error {
	supplyChain := supplyChainQueries.NewGetSupplyChainHandler(r.characters, r.colonies, r.markers, r.reference, r.clock)
	if err := common.RegisterHandler[*supplyChainQueries.GetSupplyChainQuery](m, supplyChain); err != nil {
		return err
	}

	profit := supplyChainQueries.NewGetProfitBreakdownHandler(r.characters, r.colonies, r.reference, r.taxes, r.defaultSource, r.clock)
	return common.RegisterHandler[*supplyChainQueries.GetProfitBreakdownQuery](m, profit)
}

// RegisterStockpileHandlers registers marker CRUD and the resize commands.
//
// ResizeAllStockpilesCommand reads consumption through GetSupplyChainQuery, so the
// supply chain handlers must be registered on the same mediator.
func (r *HandlerRegistry) RegisterStockpileHandlers(m common.Mediator) error {
	if err := common.RegisterHandler[*stockpileQueries.ListMarkersQuery](m, stockpileQueries.NewListMarkersHandler(r.markers)); err != nil {
		return err
	}
	if err := common.RegisterHandler[*stockpileCommands.UpsertMarkerCommand](m, stockpileCommands.NewUpsertMarkerHandler(r.markers, r.locks)); err != nil {
		return err
	}
	if err := common.RegisterHandler[*stockpileCommands.DeleteMarkerCommand](m, stockpileCommands.NewDeleteMarkerHandler(r.markers, r.locks)); err != nil {
		return err
	}
	if err := common.RegisterHandler[*stockpileCommands.ResizeStockpileCommand](m, stockpileCommands.NewResizeStockpileHandler(r.markers, r.locks)); err != nil {
		return err
	}
	resizeAll := stockpileCommands.NewResizeAllStockpilesHandler(m, r.markers, r.locks)
	return common.RegisterHandler[*stockpileCommands.ResizeAllStockpilesCommand](m, resizeAll)
}

// CreateConfiguredMediator creates a mediator with every handler registered and the
// given middlewares installed in order
func (r *HandlerRegistry) CreateConfiguredMediator(middlewares ...common.Middleware) (common.Mediator, error) {
	m := common.NewMediator()
	for _, mw := range middlewares {
		m.Use(mw)
	}

	if err := r.RegisterAccountHandlers(m); err != nil {
		return nil, err
	}
	if err := r.RegisterSupplyChainHandlers(m); err != nil {
		return nil, err
	}
	if err := r.RegisterStockpileHandlers(m); err != nil {
		return nil, err
	}
	return m, nil
}
