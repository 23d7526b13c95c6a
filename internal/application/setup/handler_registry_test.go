package setup_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/eve-pi-go/internal/adapters/persistence"
	"github.com/andrescamacho/eve-pi-go/internal/application/account"
	"github.com/andrescamacho/eve-pi-go/internal/application/common"
	"github.com/andrescamacho/eve-pi-go/internal/application/setup"
	stockpileCommands "github.com/andrescamacho/eve-pi-go/internal/application/stockpile/commands"
	stockpileQueries "github.com/andrescamacho/eve-pi-go/internal/application/stockpile/queries"
	supplyChainQueries "github.com/andrescamacho/eve-pi-go/internal/application/supplychain/queries"
	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
	"github.com/andrescamacho/eve-pi-go/internal/domain/stockpile"
	"github.com/andrescamacho/eve-pi-go/test/helpers"
)

func TestCreateConfiguredMediator_RoutesEveryRequest(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	registry := setup.NewHandlerRegistry(
		persistence.NewGormCharacterRepository(db, clock),
		persistence.NewGormColonyRepository(db),
		persistence.NewGormMarkerRepository(db, clock),
		helpers.SampleReference(),
		planetary.TaxRates{Export: 0.1, Import: 0.05},
		planetary.PriceSourceSell,
		clock,
	)

	var seen []string
	recorder := func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
		seen = append(seen, "call")
		return next(ctx, request)
	}

	// Act
	m, err := registry.CreateConfiguredMediator(recorder)
	require.NoError(t, err)
	ctx := context.Background()

	// Assert
	_, err = m.Send(ctx, &account.AddCharacterCommand{CharacterID: 90000001, Name: "Pilot One", UserID: 7})
	require.NoError(t, err)

	key := stockpile.MarkerKey{UserID: 7, TypeID: helpers.BaseMetalsTypeID, OwnerType: stockpile.OwnerCharacter, OwnerID: 90000001, LocationID: 60000001}
	_, err = m.Send(ctx, &stockpileCommands.UpsertMarkerCommand{Key: key, DesiredQuantity: 100})
	require.NoError(t, err)

	requests := []common.Request{
		&account.ListCharactersQuery{UserID: 7},
		&supplyChainQueries.GetSupplyChainQuery{UserID: 7},
		&supplyChainQueries.GetProfitBreakdownQuery{UserID: 7},
		&stockpileQueries.ListMarkersQuery{UserID: 7},
		&stockpileCommands.ResizeStockpileCommand{UserID: 7, TypeID: helpers.BaseMetalsTypeID, NewTotalQuantity: 300},
		&stockpileCommands.ResizeAllStockpilesCommand{UserID: 7, Preset: "1w"},
		&stockpileCommands.DeleteMarkerCommand{Key: key},
	}
	for _, req := range requests {
		_, err := m.Send(ctx, req)
		assert.NoError(t, err, "%T", req)
	}
	// ResizeAll dispatches a nested GetSupplyChainQuery through the mediator
	assert.Len(t, seen, 2+len(requests)+1)
}
