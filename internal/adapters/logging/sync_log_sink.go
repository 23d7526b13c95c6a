package logging

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andrescamacho/eve-pi-go/internal/adapters/persistence"
)

const defaultSyncLogBuffer = 1024

type syncLogEntry struct {
	runID       string
	characterID int64
	level       string
	message     string
	fields      map[string]interface{}
}

// SyncLogSink persists log entries carrying a run_id to the sync_logs table.
// Entries go through a bounded queue drained by one writer goroutine, so a slow
// database never stalls a sync run. When the queue is full new entries are dropped.
type SyncLogSink struct {
	repo     persistence.SyncLogRepository
	minLevel int
	entries  chan syncLogEntry
	done     chan struct{}
	pending  sync.WaitGroup
	dropped  atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// NewSyncLogSink creates a sink that skips entries below minLevel and queues at most
// bufferSize entries (a default when bufferSize <= 0). Close must be called to drain it.
func NewSyncLogSink(repo persistence.SyncLogRepository, minLevel string, bufferSize int) *SyncLogSink {
	if bufferSize <= 0 {
		bufferSize = defaultSyncLogBuffer
	}
	s := &SyncLogSink{
		repo:     repo,
		minLevel: levelRank(minLevel),
		entries:  make(chan syncLogEntry, bufferSize),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

// Log implements common.Logger. Entries without a run_id are not sync logs and are skipped.
func (s *SyncLogSink) Log(level, message string, metadata map[string]interface{}) {
	if levelRank(level) < s.minLevel {
		return
	}
	runID, _ := metadata["run_id"].(string)
	if runID == "" {
		return
	}
	characterID, _ := metadata["character_id"].(int64)

	fields := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		if k != "run_id" && k != "character_id" {
			fields[k] = v
		}
	}
	entry := syncLogEntry{runID: runID, characterID: characterID, level: level, message: message, fields: fields}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.dropped.Add(1)
		return
	}
	s.pending.Add(1)
	select {
	case s.entries <- entry:
	default:
		s.pending.Done()
		s.dropped.Add(1)
	}
}

// Flush waits until every queued entry has been written
func (s *SyncLogSink) Flush() {
	s.pending.Wait()
}

// Close stops accepting entries and waits for the queue to drain
func (s *SyncLogSink) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.entries)
	}
	s.mu.Unlock()
	<-s.done
}

// Dropped returns how many entries were discarded because the queue was full or closed
func (s *SyncLogSink) Dropped() int64 {
	return s.dropped.Load()
}

func (s *SyncLogSink) run() {
	defer close(s.done)
	for entry := range s.entries {
		s.write(entry)
		s.pending.Done()
	}
}

func (s *SyncLogSink) write(e syncLogEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.Log(ctx, e.runID, e.characterID, e.message, e.level, e.fields); err != nil {
		fmt.Fprintf(os.Stderr, "[%s] ERROR: failed to persist sync log: %v\n", time.Now().Format(time.RFC3339), err)
	}
}

func levelRank(level string) int {
	switch level {
	case "DEBUG", "debug":
		return 0
	case "WARNING", "warn", "warning":
		return 2
	case "ERROR", "error":
		return 3
	default:
		return 1
	}
}
