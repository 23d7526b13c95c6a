package config

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// Log level: debug, info, warn, error
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`

	// Log format: json, text
	Format string `mapstructure:"format" validate:"required,oneof=json text"`

	// Persist sync run logs to the sync_logs table
	PersistSyncLogs bool `mapstructure:"persist_sync_logs"`

	// Entries queued for the database before new ones are dropped
	SyncLogBuffer int `mapstructure:"sync_log_buffer" validate:"gte=0"`
}
