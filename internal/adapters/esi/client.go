package esi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
)

const (
	defaultBaseURL     = "https://esi.evetech.net/latest"
	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 3
	defaultBackoffBase = time.Second

	// ESI answers 420 when the per-IP error budget is exhausted
	statusErrorLimited = 420
)

// MetricsRecorder receives per-request measurements. metrics.APIMetricsCollector
// satisfies it.
type MetricsRecorder interface {
	RecordAPIRequest(method, endpoint string, statusCode int, duration float64)
	RecordAPIRetry(endpoint, reason string)
	RecordRateLimitWait(endpoint string, duration float64)
}

// Config tunes the client. Zero values fall back to defaults.
type Config struct {
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	RequestsPerSec int
	Burst          int
	MaxRetries     int
	BackoffBase    time.Duration
	MaxFailures    int
	Cooldown       time.Duration
}

// APIError is a non-2xx answer from ESI
type APIError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ESI error (status %d): %s", e.StatusCode, e.Body)
}

// Retryable reports whether the same request may succeed later
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == statusErrorLimited ||
		e.StatusCode >= 500
}

// Client reads planetary colonies from ESI. It implements planetary.ColonyProvider.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	breaker     *CircuitBreaker
	baseURL     string
	userAgent   string
	maxRetries  int
	backoffBase time.Duration
	clock       shared.Clock
	metrics     MetricsRecorder
}

// NewClient creates an ESI client. metrics and clock may be nil.
func NewClient(cfg Config, metrics MetricsRecorder, clock shared.Clock) *Client {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.RequestsPerSec
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultBackoffBase
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = time.Minute
	}
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		breaker:     NewCircuitBreaker(cfg.MaxFailures, cfg.Cooldown, clock),
		baseURL:     cfg.BaseURL,
		userAgent:   cfg.UserAgent,
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		clock:       clock,
		metrics:     metrics,
	}
}

// ListPlanets returns the planets on which the character has a colony
func (c *Client) ListPlanets(ctx context.Context, characterID int64, token string) ([]planetary.Planet, error) {
	path := fmt.Sprintf("/characters/%d/planets/", characterID)

	var response []planetDTO
	if err := c.get(ctx, "characters_planets", path, token, &response); err != nil {
		return nil, fmt.Errorf("failed to list planets: %w", err)
	}

	planets := make([]planetary.Planet, 0, len(response))
	for _, p := range response {
		planets = append(planets, p.toDomain(characterID))
	}
	return planets, nil
}

// GetColonyDetail returns the full layout of one colony
func (c *Client) GetColonyDetail(ctx context.Context, characterID, planetID int64, token string) (*planetary.Colony, error) {
	path := fmt.Sprintf("/characters/%d/planets/%d/", characterID, planetID)

	var response colonyDTO
	if err := c.get(ctx, "characters_planet", path, token, &response); err != nil {
		return nil, fmt.Errorf("failed to get colony %d: %w", planetID, err)
	}
	return response.toDomain(), nil
}

// BreakerState exposes the circuit breaker state for status reporting
func (c *Client) BreakerState() CircuitState {
	return c.breaker.State()
}

func (c *Client) get(ctx context.Context, endpoint, path, token string, result interface{}) error {
	return c.breaker.Call(func() error {
		return c.request(ctx, endpoint, path, token, result)
	})
}

// request performs a GET with exponential backoff plus jitter on network errors,
// 420, 429 and 5xx. Retry-After replaces the computed backoff when present.
func (c *Client) request(ctx context.Context, endpoint, path, token string, result interface{}) error {
	url := c.baseURL + path
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := addJitter(c.backoffBase * time.Duration(1<<(attempt-1)))
			var apiErr *APIError
			if errors.As(lastErr, &apiErr) && apiErr.RetryAfter > 0 {
				delay = apiErr.RetryAfter
			}
			if err := c.sleep(ctx, delay); err != nil {
				return fmt.Errorf("context cancelled: %w", err)
			}
		}

		waitStart := time.Now()
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}
		c.recordRateLimitWait(endpoint, time.Since(waitStart))

		err := c.do(ctx, endpoint, url, token, result)
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *APIError
		switch {
		case errors.As(err, &apiErr) && !apiErr.Retryable():
			return err
		case ctx.Err() != nil:
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		}
		if attempt < c.maxRetries {
			c.recordRetry(endpoint, retryReason(err))
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) do(ctx context.Context, endpoint, url, token string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordRequest(endpoint, 0, time.Since(start))
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.recordRequest(endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil {
				apiErr.RetryAfter = time.Duration(seconds) * time.Second
			}
		}
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

// sleep waits on the injected clock but gives up when ctx ends
func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	done := make(chan struct{})
	go func() {
		c.clock.Sleep(d)
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) recordRequest(endpoint string, statusCode int, d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordAPIRequest(http.MethodGet, endpoint, statusCode, d.Seconds())
	}
}

func (c *Client) recordRetry(endpoint, reason string) {
	if c.metrics != nil {
		c.metrics.RecordAPIRetry(endpoint, reason)
	}
}

func (c *Client) recordRateLimitWait(endpoint string, d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordRateLimitWait(endpoint, d.Seconds())
	}
}

func retryReason(err error) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return "network"
	}
	switch {
	case apiErr.StatusCode == http.StatusTooManyRequests:
		return "rate_limited"
	case apiErr.StatusCode == statusErrorLimited:
		return "error_limited"
	default:
		return "server_error"
	}
}

// addJitter adds up to 10% random jitter to a delay
func addJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	return d + time.Duration(rand.Int63n(int64(d)/10+1))
}
