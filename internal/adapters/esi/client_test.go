package esi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
)

type recordingMetrics struct {
	mu       sync.Mutex
	requests []int
	retries  []string
}

func (m *recordingMetrics) RecordAPIRequest(method, endpoint string, statusCode int, duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, statusCode)
}

func (m *recordingMetrics) RecordAPIRetry(endpoint, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retries = append(m.retries, reason)
}

func (m *recordingMetrics) RecordRateLimitWait(endpoint string, duration float64) {}

func newTestClient(t *testing.T, handler http.HandlerFunc, metrics MetricsRecorder) (*Client, *shared.MockClock) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	client := NewClient(Config{
		BaseURL:        server.URL,
		UserAgent:      "eve-pi-test",
		RequestsPerSec: 1000,
		Burst:          1000,
		MaxRetries:     2,
		BackoffBase:    time.Second,
		MaxFailures:    2,
		Cooldown:       time.Minute,
	}, metrics, clock)
	return client, clock
}

func TestListPlanets_MapsResponse(t *testing.T) {
	var gotAuth, gotPath, gotAgent string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`[{"last_update":"2026-01-01T10:00:00Z","num_pins":7,"owner_id":90000001,
			"planet_id":40023691,"planet_type":"barren","solar_system_id":30000379,"upgrade_level":4}]`))
	}, nil)

	planets, err := client.ListPlanets(context.Background(), 90000001, "tok")

	require.NoError(t, err)
	require.Len(t, planets, 1)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "/characters/90000001/planets/", gotPath)
	assert.Equal(t, "eve-pi-test", gotAgent)
	assert.Equal(t, int64(40023691), planets[0].PlanetID)
	assert.Equal(t, int64(90000001), planets[0].OwnerID)
	assert.Equal(t, "barren", planets[0].PlanetType)
	assert.Equal(t, 7, planets[0].NumPins)
	assert.Equal(t, 4, planets[0].UpgradeLevel)
	assert.Equal(t, time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC), planets[0].LastUpdate.UTC())
}

func TestGetColonyDetail_ClassifiesPins(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/characters/1/planets/40000001/", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"links":[{"source_pin_id":1,"destination_pin_id":2,"link_level":0}],
			"pins":[
				{"pin_id":1,"type_id":3060,"latitude":1.1,"longitude":2.2,
				 "expiry_time":"2026-01-02T00:00:00Z",
				 "extractor_details":{"cycle_time":1800,"head_radius":0.01,"product_type_id":2267,"qty_per_cycle":6000,
				   "heads":[{"head_id":0,"latitude":1.0,"longitude":2.0}]}},
				{"pin_id":2,"type_id":2473,"factory_details":{"schematic_id":127}},
				{"pin_id":3,"type_id":2544,"contents":[{"type_id":2398,"amount":500}]},
				{"pin_id":4,"type_id":2524},
				{"pin_id":5,"type_id":2481,"schematic_id":128}
			],
			"routes":[{"route_id":9,"source_pin_id":2,"destination_pin_id":3,"content_type_id":2398,"quantity":20.0,"waypoints":[2,3]}]
		}`))
	}, nil)

	colony, err := client.GetColonyDetail(context.Background(), 1, 40000001, "tok")

	require.NoError(t, err)
	require.Len(t, colony.Pins, 5)
	assert.Equal(t, planetary.PinKindExtractor, colony.Pins[0].Kind)
	require.NotNil(t, colony.Pins[0].ExtractorDetails)
	assert.Equal(t, int64(6000), colony.Pins[0].ExtractorDetails.QtyPerCycle)
	assert.Len(t, colony.Pins[0].ExtractorDetails.Heads, 1)
	assert.Equal(t, planetary.PinKindFactory, colony.Pins[1].Kind)
	assert.Equal(t, planetary.PinKindStorage, colony.Pins[2].Kind)
	assert.True(t, colony.Pins[2].IsLaunchpad())
	assert.Equal(t, int64(500), colony.Pins[2].AmountOf(2398))
	assert.Equal(t, planetary.PinKindCommandCenter, colony.Pins[3].Kind)
	assert.Equal(t, planetary.PinKindFactory, colony.Pins[4].Kind)

	require.Len(t, colony.Routes, 1)
	assert.Equal(t, int64(20), colony.Routes[0].Quantity)
	assert.Equal(t, []int64{2, 3}, colony.Routes[0].Waypoints)
	require.Len(t, colony.Links, 1)
	assert.NoError(t, colony.Validate())
}

func TestRequest_RetriesServerErrors(t *testing.T) {
	var calls int32
	metrics := &recordingMetrics{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}, metrics)

	planets, err := client.ListPlanets(context.Background(), 1, "tok")

	require.NoError(t, err)
	assert.Empty(t, planets)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, []int{502, 200}, metrics.requests)
	assert.Equal(t, []string{"server_error"}, metrics.retries)
}

func TestRequest_HonoursRetryAfter(t *testing.T) {
	var calls int32
	client, clock := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "30")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}, nil)
	start := clock.Now()

	_, err := client.ListPlanets(context.Background(), 1, "tok")

	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, clock.Now().Sub(start))
}

func TestRequest_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"token is not valid"}`))
	}, nil)

	_, err := client.ListPlanets(context.Background(), 1, "bad")

	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, CircuitClosed, client.BreakerState())
}

func TestRequest_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, nil)

	_, err := client.GetColonyDetail(context.Background(), 1, 2, "tok")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	var calls int32
	client, clock := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}, nil)
	ctx := context.Background()

	_, _ = client.ListPlanets(ctx, 1, "tok")
	_, _ = client.ListPlanets(ctx, 1, "tok")
	require.Equal(t, CircuitOpen, client.BreakerState())
	before := atomic.LoadInt32(&calls)

	_, err := client.ListPlanets(ctx, 1, "tok")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, before, atomic.LoadInt32(&calls))

	clock.Advance(2 * time.Minute)
	_, err = client.ListPlanets(ctx, 1, "tok")
	assert.NotErrorIs(t, err, ErrCircuitOpen)
	assert.Greater(t, atomic.LoadInt32(&calls), before)
}

func TestCircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Minute, shared.NewMockClock(time.Now()))

	err := cb.Call(func() error { return &APIError{StatusCode: http.StatusNotFound} })

	require.Error(t, err)
	assert.Equal(t, CircuitClosed, cb.State())
	assert.Equal(t, 0, cb.FailureCount())
}
