package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/eve-pi-go/internal/adapters/persistence"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
	"github.com/andrescamacho/eve-pi-go/internal/domain/stockpile"
	"github.com/andrescamacho/eve-pi-go/test/helpers"
)

func markerKey(typeID int32, location int64, container *int64, division *int) stockpile.MarkerKey {
	return stockpile.MarkerKey{
		UserID:         7,
		TypeID:         typeID,
		OwnerType:      stockpile.OwnerCharacter,
		OwnerID:        90000001,
		LocationID:     location,
		ContainerID:    container,
		DivisionNumber: division,
	}
}

func TestMarkerRepository_UpsertInsertsThenUpdates(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormMarkerRepository(db, nil)
	ctx := context.Background()
	key := markerKey(2398, 60003760, nil, nil)

	// Act
	require.NoError(t, repo.Upsert(ctx, &stockpile.Marker{Key: key, DesiredQuantity: 100}))
	require.NoError(t, repo.Upsert(ctx, &stockpile.Marker{Key: key, DesiredQuantity: 250}))

	// Assert
	markers, err := repo.ListByType(ctx, 7, 2398)
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, int64(250), markers[0].DesiredQuantity)
	assert.Nil(t, markers[0].Key.ContainerID)
	assert.Nil(t, markers[0].Key.DivisionNumber)
}

func TestMarkerRepository_ContainerAndDivisionAreKeyParts(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormMarkerRepository(db, nil)
	ctx := context.Background()
	container := int64(1000000001)
	division := 3

	// Act
	require.NoError(t, repo.Upsert(ctx, &stockpile.Marker{Key: markerKey(2398, 60003760, nil, nil), DesiredQuantity: 10}))
	require.NoError(t, repo.Upsert(ctx, &stockpile.Marker{Key: markerKey(2398, 60003760, &container, nil), DesiredQuantity: 20}))
	require.NoError(t, repo.Upsert(ctx, &stockpile.Marker{Key: markerKey(2398, 60003760, &container, &division), DesiredQuantity: 30}))

	// Assert
	markers, err := repo.ListByType(ctx, 7, 2398)
	require.NoError(t, err)
	require.Len(t, markers, 3)
	assert.Equal(t, int64(10), markers[0].DesiredQuantity)
	assert.Equal(t, int64(20), markers[1].DesiredQuantity)
	require.NotNil(t, markers[1].Key.ContainerID)
	assert.Equal(t, container, *markers[1].Key.ContainerID)
	require.NotNil(t, markers[2].Key.DivisionNumber)
	assert.Equal(t, 3, *markers[2].Key.DivisionNumber)
}

func TestMarkerRepository_ListOrderingIsStable(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormMarkerRepository(db, nil)
	ctx := context.Background()
	for _, loc := range []int64{60000003, 60000001, 60000002} {
		require.NoError(t, repo.Upsert(ctx, &stockpile.Marker{Key: markerKey(2398, loc, nil, nil), DesiredQuantity: loc}))
	}
	require.NoError(t, repo.Upsert(ctx, &stockpile.Marker{Key: markerKey(2267, 60000009, nil, nil), DesiredQuantity: 1}))

	// Act
	byType, err := repo.ListByType(ctx, 7, 2398)
	require.NoError(t, err)
	all, err := repo.ListByUser(ctx, 7)
	require.NoError(t, err)
	other, err := repo.ListByUser(ctx, 8)
	require.NoError(t, err)

	// Assert
	require.Len(t, byType, 3)
	assert.Equal(t, int64(60000001), byType[0].Key.LocationID)
	assert.Equal(t, int64(60000002), byType[1].Key.LocationID)
	assert.Equal(t, int64(60000003), byType[2].Key.LocationID)
	require.Len(t, all, 4)
	assert.Equal(t, int32(2267), all[0].Key.TypeID)
	assert.Empty(t, other)
}

func TestMarkerRepository_Delete(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormMarkerRepository(db, nil)
	ctx := context.Background()
	key := markerKey(2398, 60003760, nil, nil)
	require.NoError(t, repo.Upsert(ctx, &stockpile.Marker{Key: key, DesiredQuantity: 5}))

	// Act
	require.NoError(t, repo.Delete(ctx, key))
	err := repo.Delete(ctx, key)

	// Assert
	assert.ErrorIs(t, err, shared.ErrMarkerNotFound)
	markers, err := repo.ListByUser(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, markers)
}

func TestMarkerRepository_RejectsExplicitZeroContainer(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormMarkerRepository(db, nil)
	ctx := context.Background()
	zero := int64(0)

	err := repo.Upsert(ctx, &stockpile.Marker{Key: markerKey(2398, 60003760, &zero, nil), DesiredQuantity: 10})
	require.Error(t, err)

	markers, err := repo.ListByType(ctx, 7, 2398)
	require.NoError(t, err)
	assert.Empty(t, markers)
}
