package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/eve-pi-go/internal/application/common"
)

type resizeCommand struct{}

func withRegistry(t *testing.T) {
	t.Helper()
	Registry = prometheus.NewRegistry()
	t.Cleanup(func() { Registry = nil })
}

func TestSyncMetricsCollector_RecordsOutcomes(t *testing.T) {
	withRegistry(t)
	c := NewSyncMetricsCollector()
	require.NoError(t, c.Register())

	c.RecordPlanetSync(1, "synced", 200*time.Millisecond)
	c.RecordPlanetSync(1, "synced", 300*time.Millisecond)
	c.RecordPlanetSync(2, "failed", time.Second)
	c.RecordRun(5*time.Second, 2, 0, 1)
	c.RecordCharacterSynced(1, time.Unix(1700000000, 0))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.planetsTotal.WithLabelValues("synced")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.planetsTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.lastRunPlanets.WithLabelValues("failed")))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(c.lastSuccess.WithLabelValues("1")))
}

func TestRegister_NoRegistryIsNoOp(t *testing.T) {
	Registry = nil

	assert.NoError(t, NewAPIMetricsCollector().Register())
	assert.NoError(t, NewCommandMetricsCollector().Register())
}

func TestPrometheusMiddleware_CountsSuccessAndError(t *testing.T) {
	withRegistry(t)
	collector := NewCommandMetricsCollector()
	require.NoError(t, collector.Register())
	middleware := PrometheusMiddleware(collector)

	ok := func(ctx context.Context, request common.Request) (common.Response, error) { return "done", nil }
	fail := func(ctx context.Context, request common.Request) (common.Response, error) {
		return nil, assert.AnError
	}

	resp, err := middleware(context.Background(), &resizeCommand{}, ok)
	require.NoError(t, err)
	assert.Equal(t, "done", resp)
	_, err = middleware(context.Background(), &resizeCommand{}, fail)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.commandsTotal.WithLabelValues("resizeCommand", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.commandsTotal.WithLabelValues("resizeCommand", "error")))
}

func TestExtractCommandName(t *testing.T) {
	assert.Equal(t, "resizeCommand", extractCommandName(&resizeCommand{}))
	assert.Equal(t, "UnknownCommand", extractCommandName(nil))
}
