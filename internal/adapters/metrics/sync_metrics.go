package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetricsCollector records colony sync runs. It satisfies colonysync.MetricsRecorder.
type SyncMetricsCollector struct {
	planetsTotal   *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	runDuration    prometheus.Histogram
	lastRunPlanets *prometheus.GaugeVec
	lastSuccess    *prometheus.GaugeVec
}

// NewSyncMetricsCollector creates a new sync metrics collector
func NewSyncMetricsCollector() *SyncMetricsCollector {
	return &SyncMetricsCollector{
		planetsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "colony_sync_planets_total",
				Help:      "Planets processed by the sync loop by outcome",
			},
			[]string{"status"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "colony_sync_fetch_duration_seconds",
				Help:      "Time to fetch and store one planet",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "colony_sync_run_duration_seconds",
				Help:      "Duration of a full sync run across all characters",
				Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
		),
		lastRunPlanets: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "colony_sync_last_run_planets",
				Help:      "Planets per outcome in the most recent run",
			},
			[]string{"status"},
		),
		lastSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "colony_sync_last_success_timestamp",
				Help:      "Unix time of the last run in which every planet of the character synced",
			},
			[]string{"character_id"},
		),
	}
}

// Register registers all sync metrics with the Prometheus registry
func (c *SyncMetricsCollector) Register() error {
	return register(c.planetsTotal, c.fetchDuration, c.runDuration, c.lastRunPlanets, c.lastSuccess)
}

// RecordPlanetSync records one planet outcome
func (c *SyncMetricsCollector) RecordPlanetSync(characterID int64, outcome string, duration time.Duration) {
	c.planetsTotal.WithLabelValues(outcome).Inc()
	c.fetchDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordRun records a finished run
func (c *SyncMetricsCollector) RecordRun(duration time.Duration, synced, unchanged, failed int) {
	c.runDuration.Observe(duration.Seconds())
	c.lastRunPlanets.WithLabelValues("synced").Set(float64(synced))
	c.lastRunPlanets.WithLabelValues("unchanged").Set(float64(unchanged))
	c.lastRunPlanets.WithLabelValues("failed").Set(float64(failed))
}

// RecordCharacterSynced stamps the character's last clean sync
func (c *SyncMetricsCollector) RecordCharacterSynced(characterID int64, at time.Time) {
	c.lastSuccess.WithLabelValues(strconv.FormatInt(characterID, 10)).Set(float64(at.Unix()))
}
