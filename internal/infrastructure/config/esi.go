package config

import "time"

// ESIConfig holds the upstream colony API client configuration
type ESIConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// Sent as User-Agent on every request
	UserAgent string `mapstructure:"user_agent"`

	Timeout time.Duration `mapstructure:"timeout" validate:"required"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	Retry RetryConfig `mapstructure:"retry"`

	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// RateLimitConfig holds token bucket settings
type RateLimitConfig struct {
	// Requests per second
	Requests int `mapstructure:"requests" validate:"min=1"`

	Burst int `mapstructure:"burst" validate:"min=1"`
}

// RetryConfig holds retry configuration for failed requests
type RetryConfig struct {
	MaxAttempts int `mapstructure:"max_attempts" validate:"min=0"`

	// Base duration for exponential backoff
	BackoffBase time.Duration `mapstructure:"backoff_base"`
}

// CircuitBreakerConfig opens the breaker after MaxFailures consecutive failures
// and keeps it open for Cooldown
type CircuitBreakerConfig struct {
	MaxFailures int           `mapstructure:"max_failures" validate:"min=1"`
	Cooldown    time.Duration `mapstructure:"cooldown"`
}
