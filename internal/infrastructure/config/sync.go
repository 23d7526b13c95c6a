package config

import "time"

// SyncConfig holds the colony sync loop settings
type SyncConfig struct {
	Interval time.Duration `mapstructure:"interval" validate:"required"`

	// Maximum planets fetched at once per character
	PlanetConcurrency int `mapstructure:"planet_concurrency" validate:"min=1,max=32"`

	// Per-request deadline for upstream fetches
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" validate:"required"`

	RunOnStart bool `mapstructure:"run_on_start"`
}
