package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetricsCollector handles upstream ESI request metrics
type APIMetricsCollector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	retries         *prometheus.CounterVec
	rateLimitWait   *prometheus.HistogramVec
}

// NewAPIMetricsCollector creates a new API metrics collector
func NewAPIMetricsCollector() *APIMetricsCollector {
	return &APIMetricsCollector{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "esi_requests_total",
				Help:      "Total number of ESI requests by method, endpoint, and status code",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "esi_request_duration_seconds",
				Help:      "ESI request duration distribution",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"method", "endpoint"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "esi_retries_total",
				Help:      "Total number of ESI retry attempts",
			},
			[]string{"endpoint", "reason"},
		),
		rateLimitWait: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "esi_rate_limit_wait_seconds",
				Help:      "Time spent waiting for the client-side rate limiter",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"endpoint"},
		),
	}
}

// Register registers all API metrics with the Prometheus registry
func (c *APIMetricsCollector) Register() error {
	return register(c.requestsTotal, c.requestDuration, c.retries, c.rateLimitWait)
}

// RecordAPIRequest records an ESI request completion. Network failures use status code 0.
func (c *APIMetricsCollector) RecordAPIRequest(method, endpoint string, statusCode int, duration float64) {
	c.requestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	c.requestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordAPIRetry records a retry attempt
func (c *APIMetricsCollector) RecordAPIRetry(endpoint, reason string) {
	c.retries.WithLabelValues(endpoint, reason).Inc()
}

// RecordRateLimitWait records time spent waiting for the rate limiter
func (c *APIMetricsCollector) RecordRateLimitWait(endpoint string, duration float64) {
	c.rateLimitWait.WithLabelValues(endpoint).Observe(duration)
}
