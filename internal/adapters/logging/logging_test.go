package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/eve-pi-go/internal/adapters/logging"
	"github.com/andrescamacho/eve-pi-go/internal/adapters/persistence"
	"github.com/andrescamacho/eve-pi-go/internal/application/common"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
	"github.com/andrescamacho/eve-pi-go/test/helpers"
)

func TestConsoleLogger_JSONIncludesMetadata(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewConsoleLogger(&buf, "json", "info")

	logger.Log(common.LevelInfo, "Planet snapshot replaced", map[string]interface{}{
		"planet_id": int64(40000001),
		"outcome":   "synced",
	})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Planet snapshot replaced", line["msg"])
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, "synced", line["outcome"])
	assert.EqualValues(t, 40000001, line["planet_id"])
}

func TestConsoleLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewConsoleLogger(&buf, "text", "warn")

	logger.Log(common.LevelInfo, "quiet", nil)
	logger.Log(common.LevelDebug, "quieter", nil)
	assert.Empty(t, buf.String())

	logger.Log(common.LevelWarning, "loud", nil)
	assert.Contains(t, buf.String(), "loud")
}

func TestMultiLogger_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	multi := logging.NewMultiLogger(
		logging.NewConsoleLogger(&a, "text", "debug"),
		nil,
		logging.NewConsoleLogger(&b, "text", "debug"),
	)

	multi.Log(common.LevelError, "boom", nil)

	assert.Len(t, multi, 2)
	assert.Contains(t, a.String(), "boom")
	assert.Contains(t, b.String(), "boom")
}

func TestSyncLogSink_PersistsRunEntries(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	repo := persistence.NewGormSyncLogRepository(db, clock)
	sink := logging.NewSyncLogSink(repo, "info", 0)
	defer sink.Close()

	// Act
	sink.Log(common.LevelWarning, "Planet sync failed, previous snapshot kept", map[string]interface{}{
		"run_id":       "sync-abc12345",
		"character_id": int64(90000001),
		"planet_id":    int64(40000001),
	})
	sink.Log(common.LevelInfo, "not a sync entry", map[string]interface{}{"foo": "bar"})
	sink.Log(common.LevelDebug, "too chatty", map[string]interface{}{"run_id": "sync-abc12345"})
	sink.Flush()

	// Assert
	entries, err := repo.GetLogs(context.Background(), persistence.SyncLogFilter{RunID: "sync-abc12345"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(90000001), entries[0].CharacterID)
	assert.Equal(t, common.LevelWarning, entries[0].Level)
	assert.EqualValues(t, 40000001, entries[0].Metadata["planet_id"])
	assert.NotContains(t, entries[0].Metadata, "run_id")
}

// gatedSyncLogRepository reports each write as it starts and blocks it until release
// is closed
type gatedSyncLogRepository struct {
	started chan string
	release chan struct{}
	mu      sync.Mutex
	written []string
}

func newGatedSyncLogRepository() *gatedSyncLogRepository {
	return &gatedSyncLogRepository{started: make(chan string, 16), release: make(chan struct{})}
}

func (r *gatedSyncLogRepository) Log(ctx context.Context, runID string, characterID int64, message, level string, metadata map[string]interface{}) error {
	r.started <- message
	<-r.release
	r.mu.Lock()
	defer r.mu.Unlock()
	r.written = append(r.written, message)
	return nil
}

func (r *gatedSyncLogRepository) GetLogs(ctx context.Context, filter persistence.SyncLogFilter) ([]persistence.SyncLogEntry, error) {
	return nil, nil
}

func TestSyncLogSink_DropsWhenQueueFullAndDrainsOnClose(t *testing.T) {
	// Arrange
	repo := newGatedSyncLogRepository()
	sink := logging.NewSyncLogSink(repo, "info", 2)
	run := map[string]interface{}{"run_id": "sync-full0001"}

	// Act: the writer holds "first", the queue takes two more and drops the rest
	sink.Log(common.LevelInfo, "first", run)
	select {
	case msg := <-repo.started:
		require.Equal(t, "first", msg)
	case <-time.After(time.Second):
		t.Fatal("writer never picked up the first entry")
	}
	sink.Log(common.LevelInfo, "second", run)
	sink.Log(common.LevelInfo, "third", run)
	sink.Log(common.LevelInfo, "fourth", run)
	close(repo.release)
	sink.Close()
	sink.Log(common.LevelInfo, "after close", run)

	// Assert
	assert.Equal(t, []string{"first", "second", "third"}, repo.written)
	assert.Equal(t, int64(2), sink.Dropped())
}
