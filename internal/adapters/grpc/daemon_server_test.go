package grpc_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	daemongrpc "github.com/andrescamacho/eve-pi-go/internal/adapters/grpc"
	"github.com/andrescamacho/eve-pi-go/internal/application/colonysync"
)

type fakeRunner struct {
	mu       sync.Mutex
	pending  bool
	triggers int
	status   colonysync.Status
}

func (r *fakeRunner) Trigger() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.triggers++
	if r.pending {
		return false
	}
	r.pending = true
	return true
}

func (r *fakeRunner) Status() colonysync.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func startServer(t *testing.T, runner daemongrpc.SyncController) *daemongrpc.DaemonClientGRPC {
	t.Helper()
	dir, err := os.MkdirTemp("", "evepi")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	socket := filepath.Join(dir, "d.sock")

	server, err := daemongrpc.NewDaemonServer(runner, socket, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	client, err := daemongrpc.NewDaemonClientGRPC(socket)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestTriggerSync(t *testing.T) {
	runner := &fakeRunner{}
	client := startServer(t, runner)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first, err := client.TriggerSync(ctx)
	require.NoError(t, err)
	second, err := client.TriggerSync(ctx)
	require.NoError(t, err)

	assert.True(t, first.Accepted)
	assert.False(t, second.Accepted)
	assert.True(t, second.Pending)
	assert.Equal(t, 2, runner.triggers)
}

func TestGetSyncStatus(t *testing.T) {
	// Arrange
	started := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	runner := &fakeRunner{status: colonysync.Status{
		Running:   false,
		Interval:  30 * time.Minute,
		NextRunAt: started.Add(30 * time.Minute),
		LastReport: &colonysync.RunReport{
			RunID:      "sync-abc",
			StartedAt:  started,
			FinishedAt: started.Add(12 * time.Second),
			Characters: 2,
			Synced:     5,
			Unchanged:  1,
			Failed:     1,
			Pruned:     1,
			Failures:   []error{errors.New("planet 40000002: 502")},
		},
	}}
	client := startServer(t, runner)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Act
	status, err := client.GetSyncStatus(ctx)

	// Assert
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.Equal(t, 30*time.Minute, status.Interval)
	assert.True(t, status.NextRunAt.Equal(started.Add(30*time.Minute)))
	require.NotNil(t, status.LastRun)
	assert.Equal(t, "sync-abc", status.LastRun.RunID)
	assert.Equal(t, 5, status.LastRun.Synced)
	assert.Equal(t, 1, status.LastRun.Pruned)
	assert.True(t, status.LastRun.FinishedAt.Equal(started.Add(12*time.Second)))
	assert.Equal(t, []string{"planet 40000002: 502"}, status.LastRun.Failures)
}

func TestGetSyncStatus_BeforeFirstRun(t *testing.T) {
	client := startServer(t, &fakeRunner{status: colonysync.Status{Interval: time.Hour}})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := client.GetSyncStatus(ctx)

	require.NoError(t, err)
	assert.Nil(t, status.LastRun)
	assert.True(t, status.NextRunAt.IsZero())
}

func TestHealthCheck(t *testing.T) {
	client := startServer(t, &fakeRunner{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	health, err := client.HealthCheck(ctx)

	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, daemongrpc.Version, health.Version)
}
