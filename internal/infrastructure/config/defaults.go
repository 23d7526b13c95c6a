package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "evepi"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "evepi"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// ESI defaults
	if cfg.ESI.BaseURL == "" {
		cfg.ESI.BaseURL = "https://esi.evetech.net/latest"
	}
	if cfg.ESI.UserAgent == "" {
		cfg.ESI.UserAgent = "eve-pi-go"
	}
	if cfg.ESI.Timeout == 0 {
		cfg.ESI.Timeout = 30 * time.Second
	}
	if cfg.ESI.RateLimit.Requests == 0 {
		cfg.ESI.RateLimit.Requests = 10
	}
	if cfg.ESI.RateLimit.Burst == 0 {
		cfg.ESI.RateLimit.Burst = 20
	}
	if cfg.ESI.Retry.MaxAttempts == 0 {
		cfg.ESI.Retry.MaxAttempts = 3
	}
	if cfg.ESI.Retry.BackoffBase == 0 {
		cfg.ESI.Retry.BackoffBase = 1 * time.Second
	}
	if cfg.ESI.CircuitBreaker.MaxFailures == 0 {
		cfg.ESI.CircuitBreaker.MaxFailures = 5
	}
	if cfg.ESI.CircuitBreaker.Cooldown == 0 {
		cfg.ESI.CircuitBreaker.Cooldown = 60 * time.Second
	}

	// Sync defaults
	if cfg.Sync.Interval == 0 {
		cfg.Sync.Interval = 30 * time.Minute
	}
	if cfg.Sync.PlanetConcurrency == 0 {
		cfg.Sync.PlanetConcurrency = 4
	}
	if cfg.Sync.FetchTimeout == 0 {
		cfg.Sync.FetchTimeout = 30 * time.Second
	}

	// Daemon defaults
	if cfg.Daemon.SocketPath == "" {
		cfg.Daemon.SocketPath = "/tmp/eve-pi-daemon.sock"
	}
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/eve-pi-daemon.pid"
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 30 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.SyncLogBuffer == 0 {
		cfg.Logging.SyncLogBuffer = 1024
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Economics defaults
	if cfg.Economics.DefaultPriceSource == "" {
		cfg.Economics.DefaultPriceSource = "sell"
	}
	if cfg.Economics.ExportTaxRate == 0 {
		cfg.Economics.ExportTaxRate = 0.10
	}
	if cfg.Economics.ImportTaxRate == 0 {
		cfg.Economics.ImportTaxRate = 0.05
	}
}
