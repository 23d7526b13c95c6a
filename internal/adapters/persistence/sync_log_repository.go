package persistence

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
)

// SyncLogRepository manages sync run log persistence
type SyncLogRepository interface {
	// Log writes a log entry with deduplication
	Log(ctx context.Context, runID string, characterID int64, message, level string, metadata map[string]interface{}) error

	// GetLogs retrieves log entries, newest first
	GetLogs(ctx context.Context, filter SyncLogFilter) ([]SyncLogEntry, error)
}

// SyncLogFilter narrows GetLogs. Zero values mean no filter; Limit defaults to 100.
type SyncLogFilter struct {
	RunID       string
	CharacterID int64
	Level       string
	Since       *time.Time
	Limit       int
}

// SyncLogEntry represents a log entry
type SyncLogEntry struct {
	ID          int64
	RunID       string
	CharacterID int64
	Timestamp   time.Time
	Level       string
	Message     string
	Metadata    map[string]interface{}
}

// GormSyncLogRepository is a GORM-based implementation
type GormSyncLogRepository struct {
	db    *gorm.DB
	clock shared.Clock

	dedupCache   map[string]time.Time // key: runID|characterID|message
	dedupMu      sync.Mutex
	dedupWindow  time.Duration
	dedupMaxSize int
}

// NewGormSyncLogRepository creates a new sync log repository.
// If clock is nil, uses RealClock.
func NewGormSyncLogRepository(db *gorm.DB, clock shared.Clock) *GormSyncLogRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormSyncLogRepository{
		db:           db,
		clock:        clock,
		dedupCache:   make(map[string]time.Time),
		dedupWindow:  60 * time.Second,
		dedupMaxSize: 10000,
	}
}

// Log writes a log entry, dropping repeats of the same message within the dedup window
func (r *GormSyncLogRepository) Log(ctx context.Context, runID string, characterID int64, message, level string, metadata map[string]interface{}) error {
	now := r.clock.Now()
	cacheKey := runID + "|" + strconv.FormatInt(characterID, 10) + "|" + message

	r.dedupMu.Lock()
	if lastLogged, exists := r.dedupCache[cacheKey]; exists && now.Sub(lastLogged) < r.dedupWindow {
		r.dedupMu.Unlock()
		return nil
	}
	if len(r.dedupCache) >= r.dedupMaxSize {
		r.cleanupDedupCache(now)
	}
	r.dedupCache[cacheKey] = now
	r.dedupMu.Unlock()

	var metadataJSON datatypes.JSON
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = datatypes.JSON(b)
		}
	}

	entry := &SyncLogModel{
		RunID:       runID,
		CharacterID: characterID,
		Timestamp:   now,
		Level:       level,
		Message:     message,
		Metadata:    metadataJSON,
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// Must be called while holding dedupMu
func (r *GormSyncLogRepository) cleanupDedupCache(now time.Time) {
	cutoff := now.Add(-r.dedupWindow)
	for key, timestamp := range r.dedupCache {
		if timestamp.Before(cutoff) {
			delete(r.dedupCache, key)
		}
	}
}

// GetLogs retrieves log entries matching the filter, newest first
func (r *GormSyncLogRepository) GetLogs(ctx context.Context, filter SyncLogFilter) ([]SyncLogEntry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := r.db.WithContext(ctx).Model(&SyncLogModel{})
	if filter.RunID != "" {
		query = query.Where("run_id = ?", filter.RunID)
	}
	if filter.CharacterID != 0 {
		query = query.Where("character_id = ?", filter.CharacterID)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.Since != nil {
		query = query.Where("timestamp > ?", *filter.Since)
	}

	var models []SyncLogModel
	if err := query.Order("timestamp DESC, id DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]SyncLogEntry, len(models))
	for i, model := range models {
		var metadata map[string]interface{}
		if len(model.Metadata) > 0 {
			if err := json.Unmarshal(model.Metadata, &metadata); err != nil {
				metadata = nil
			}
		}
		entries[i] = SyncLogEntry{
			ID:          model.ID,
			RunID:       model.RunID,
			CharacterID: model.CharacterID,
			Timestamp:   model.Timestamp,
			Level:       model.Level,
			Message:     model.Message,
			Metadata:    metadata,
		}
	}
	return entries, nil
}
