package queries_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/eve-pi-go/internal/application/stockpile/queries"
	"github.com/andrescamacho/eve-pi-go/internal/domain/stockpile"
	"github.com/andrescamacho/eve-pi-go/test/helpers"
)

func marker(userID int64, typeID int32, location, desired int64) *stockpile.Marker {
	return &stockpile.Marker{
		Key: stockpile.MarkerKey{
			UserID: userID, TypeID: typeID, OwnerType: stockpile.OwnerCorporation,
			OwnerID: 98000001, LocationID: location,
		},
		DesiredQuantity: desired,
	}
}

func TestListMarkers(t *testing.T) {
	// Arrange
	repo := helpers.NewInMemoryMarkerRepository().Seed(
		marker(7, helpers.BaseMetalsTypeID, 60000001, 400),
		marker(7, helpers.BaseMetalsTypeID, 60000002, 600),
		marker(7, helpers.ReactiveMtlTypeID, 60000001, 90),
		marker(8, helpers.BaseMetalsTypeID, 60000001, 5000),
	)
	handler := queries.NewListMarkersHandler(repo)

	t.Run("all materials", func(t *testing.T) {
		resp, err := handler.Handle(context.Background(), &queries.ListMarkersQuery{UserID: 7})

		require.NoError(t, err)
		result := resp.(*queries.ListMarkersResponse)
		assert.Len(t, result.Markers, 3)
		assert.Equal(t, int64(1090), result.TotalDesired)
	})

	t.Run("one material", func(t *testing.T) {
		resp, err := handler.Handle(context.Background(), &queries.ListMarkersQuery{UserID: 7, TypeID: helpers.BaseMetalsTypeID})

		require.NoError(t, err)
		result := resp.(*queries.ListMarkersResponse)
		require.Len(t, result.Markers, 2)
		assert.Equal(t, int64(60000001), result.Markers[0].Key.LocationID)
		assert.Equal(t, int64(1000), result.TotalDesired)
	})

	t.Run("repository failure", func(t *testing.T) {
		failing := helpers.NewInMemoryMarkerRepository()
		failing.ListErr = errors.New("connection reset")

		_, err := queries.NewListMarkersHandler(failing).Handle(context.Background(), &queries.ListMarkersQuery{UserID: 7})

		assert.ErrorContains(t, err, "connection reset")
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := handler.Handle(context.Background(), &queries.ListMarkersQuery{})
		assert.Error(t, err)
	})
}
