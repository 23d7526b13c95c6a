package persistence_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrescamacho/eve-pi-go/internal/adapters/persistence"
	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
	"github.com/andrescamacho/eve-pi-go/internal/infrastructure/config"
	"github.com/andrescamacho/eve-pi-go/internal/infrastructure/database"
	"github.com/andrescamacho/eve-pi-go/test/helpers"
)

var colonyNow = time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)

func TestColonyRepository_ReplaceAndLoad(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormColonyRepository(db)
	ctx := context.Background()
	snapshot := helpers.SampleSnapshot(1, 40000001, colonyNow)
	snapshot.Planet.Fingerprint = "fp-1"
	snapshot.Planet.SyncedAt = colonyNow

	// Act
	changed, err := repo.ReplaceColony(ctx, snapshot)

	// Assert
	require.NoError(t, err)
	assert.True(t, changed)

	loaded, err := repo.FindOne(ctx, 1, 40000001)
	require.NoError(t, err)
	assert.Equal(t, "barren", loaded.Planet.PlanetType)
	assert.Equal(t, "fp-1", loaded.Planet.Fingerprint)
	assert.True(t, loaded.Planet.SyncedAt.Equal(colonyNow))
	require.Len(t, loaded.Colony.Pins, 3)
	require.Len(t, loaded.Colony.Links, 2)
	require.Len(t, loaded.Colony.Routes, 2)

	extractor, ok := loaded.Colony.PinByID(helpers.SampleExtractorPin)
	require.True(t, ok)
	assert.Equal(t, planetary.PinKindExtractor, extractor.Kind)
	require.NotNil(t, extractor.ExtractorDetails)
	assert.Equal(t, int64(9000), extractor.ExtractorDetails.QtyPerCycle)
	assert.Len(t, extractor.ExtractorDetails.Heads, 1)
	require.NotNil(t, extractor.ExpiryTime)

	factory, _ := loaded.Colony.PinByID(helpers.SampleFactoryPin)
	schematicID, ok := factory.EffectiveSchematicID()
	assert.True(t, ok)
	assert.Equal(t, helpers.ReactiveSchematic, schematicID)

	launchpad, _ := loaded.Colony.PinByID(helpers.SampleLaunchpadPin)
	assert.True(t, launchpad.IsLaunchpad())
	assert.Equal(t, int64(500), launchpad.AmountOf(helpers.ReactiveMtlTypeID))

	assert.Equal(t, []int64{helpers.SampleFactoryPin, helpers.SampleLaunchpadPin}, loaded.Colony.Routes[1].Waypoints)
	assert.NoError(t, loaded.Colony.Validate())
}

func TestColonyRepository_SameFingerprintOnlyTouchesSyncedAt(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormColonyRepository(db)
	ctx := context.Background()
	first := helpers.SampleSnapshot(1, 40000001, colonyNow)
	first.Planet.Fingerprint = "fp-1"
	first.Planet.SyncedAt = colonyNow
	_, err := repo.ReplaceColony(ctx, first)
	require.NoError(t, err)

	// Act
	replay := helpers.SampleSnapshot(1, 40000001, colonyNow)
	replay.Planet.Fingerprint = "fp-1"
	replay.Planet.SyncedAt = colonyNow.Add(30 * time.Minute)
	replay.Colony.Pins[2].Contents = nil // ignored because the fingerprint matches
	changed, err := repo.ReplaceColony(ctx, replay)

	// Assert
	require.NoError(t, err)
	assert.False(t, changed)
	loaded, err := repo.FindOne(ctx, 1, 40000001)
	require.NoError(t, err)
	assert.True(t, loaded.Planet.SyncedAt.Equal(colonyNow.Add(30*time.Minute)))
	launchpad, _ := loaded.Colony.PinByID(helpers.SampleLaunchpadPin)
	assert.Equal(t, int64(500), launchpad.AmountOf(helpers.ReactiveMtlTypeID))
}

func TestColonyRepository_ReplaceSwapsWholeLayout(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormColonyRepository(db)
	ctx := context.Background()
	first := helpers.SampleSnapshot(1, 40000001, colonyNow)
	first.Planet.Fingerprint = "fp-1"
	_, err := repo.ReplaceColony(ctx, first)
	require.NoError(t, err)

	// Act
	smaller := helpers.SampleSnapshot(1, 40000001, colonyNow)
	smaller.Planet.Fingerprint = "fp-2"
	smaller.Colony.Pins = smaller.Colony.Pins[:1]
	smaller.Colony.Links = nil
	smaller.Colony.Routes = nil
	changed, err := repo.ReplaceColony(ctx, smaller)

	// Assert
	require.NoError(t, err)
	assert.True(t, changed)
	loaded, err := repo.FindOne(ctx, 1, 40000001)
	require.NoError(t, err)
	assert.Len(t, loaded.Colony.Pins, 1)
	assert.Empty(t, loaded.Colony.Links)
	assert.Empty(t, loaded.Colony.Routes)
	assert.Equal(t, "fp-2", loaded.Planet.Fingerprint)
}

func TestColonyRepository_PruneMissing(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormColonyRepository(db)
	ctx := context.Background()
	for _, planetID := range []int64{40000001, 40000002, 40000003} {
		_, err := repo.ReplaceColony(ctx, helpers.SampleSnapshot(1, planetID, colonyNow))
		require.NoError(t, err)
	}
	_, err := repo.ReplaceColony(ctx, helpers.SampleSnapshot(2, 40000009, colonyNow))
	require.NoError(t, err)

	// Act
	pruned, err := repo.PruneMissing(ctx, 1, []int64{40000002})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, pruned)
	remaining, err := repo.FindByCharacters(ctx, []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, int64(40000002), remaining[0].Planet.PlanetID)
	assert.Equal(t, int64(40000009), remaining[1].Planet.PlanetID)

	var orphanPins int64
	require.NoError(t, db.Model(&persistence.PlanetPinModel{}).Where("planet_id = ?", 40000001).Count(&orphanPins).Error)
	assert.Zero(t, orphanPins)
}

func TestColonyRepository_PruneEverythingWhenNoPlanetsRemain(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormColonyRepository(db)
	ctx := context.Background()
	_, err := repo.ReplaceColony(ctx, helpers.SampleSnapshot(1, 40000001, colonyNow))
	require.NoError(t, err)

	// Act
	pruned, err := repo.PruneMissing(ctx, 1, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)
	_, err = repo.FindOne(ctx, 1, 40000001)
	assert.ErrorIs(t, err, shared.ErrColonyNotFound)
}

func TestColonyRepository_FindByCharactersEmpty(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormColonyRepository(db)

	snapshots, err := repo.FindByCharacters(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, snapshots)
}

// openSharedFileDB opens two independent handles on one WAL-mode SQLite file so a
// writer can commit while a reader is in the middle of a read
func openSharedFileDB(t *testing.T) (reader, writer *gorm.DB) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "colonies.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	cfg := &config.DatabaseConfig{Type: "sqlite", Path: dsn}

	writer, err := database.NewConnection(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(writer) })
	require.NoError(t, database.AutoMigrate(writer))

	reader, err = database.NewConnection(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(reader) })
	return reader, writer
}

// shiftedSnapshot is SampleSnapshot with every pin id moved by offset
func shiftedSnapshot(characterID, planetID, offset int64) *planetary.PlanetSnapshot {
	s := helpers.SampleSnapshot(characterID, planetID, colonyNow)
	for i := range s.Colony.Pins {
		s.Colony.Pins[i].PinID += offset
	}
	for i := range s.Colony.Links {
		s.Colony.Links[i].SourcePinID += offset
		s.Colony.Links[i].DestinationPinID += offset
	}
	for i := range s.Colony.Routes {
		r := &s.Colony.Routes[i]
		r.SourcePinID += offset
		r.DestinationPinID += offset
		waypoints := make([]int64, len(r.Waypoints))
		for j, w := range r.Waypoints {
			waypoints[j] = w + offset
		}
		r.Waypoints = waypoints
	}
	return s
}

func TestColonyRepository_ReadIsNotTornByConcurrentReplace(t *testing.T) {
	// Arrange
	reader, writer := openSharedFileDB(t)
	ctx := context.Background()
	writerRepo := persistence.NewGormColonyRepository(writer)
	original := helpers.SampleSnapshot(1, 40000001, colonyNow)
	original.Planet.Fingerprint = "old"
	_, err := writerRepo.ReplaceColony(ctx, original)
	require.NoError(t, err)

	replacement := shiftedSnapshot(1, 40000001, 1000)
	replacement.Planet.Fingerprint = "new"

	// Commit the replacement right after the reader has loaded the pins
	var (
		once       sync.Once
		replaceErr error
		replaced   bool
	)
	require.NoError(t, reader.Callback().Query().After("gorm:query").Register("test:replace_after_pins", func(tx *gorm.DB) {
		if tx.Statement.Table != "planet_pins" {
			return
		}
		once.Do(func() {
			replaced, replaceErr = writerRepo.ReplaceColony(context.Background(), replacement)
		})
	}))

	// Act
	snapshots, err := persistence.NewGormColonyRepository(reader).FindByCharacters(ctx, []int64{1})

	// Assert
	require.NoError(t, err)
	require.NoError(t, replaceErr)
	require.True(t, replaced, "the replacement must commit during the read")
	require.Len(t, snapshots, 1)
	loaded := snapshots[0]
	assert.Equal(t, "old", loaded.Planet.Fingerprint)
	pinIDs := make([]int64, 0, len(loaded.Colony.Pins))
	for _, pin := range loaded.Colony.Pins {
		pinIDs = append(pinIDs, pin.PinID)
	}
	assert.Equal(t, []int64{helpers.SampleExtractorPin, helpers.SampleFactoryPin, helpers.SampleLaunchpadPin}, pinIDs)
	assert.Equal(t, helpers.SampleExtractorPin, loaded.Colony.Links[0].SourcePinID)
	assert.Equal(t, helpers.SampleFactoryPin, loaded.Colony.Routes[0].DestinationPinID)
	assert.NoError(t, loaded.Colony.Validate())

	after, err := persistence.NewGormColonyRepository(writer).FindOne(ctx, 1, 40000001)
	require.NoError(t, err)
	assert.Equal(t, "new", after.Planet.Fingerprint)
	assert.NoError(t, after.Colony.Validate())
}
