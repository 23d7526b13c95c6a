package config

import "time"

// DaemonConfig holds daemon service configuration
type DaemonConfig struct {
	// Unix socket path for the control plane
	SocketPath string `mapstructure:"socket_path" validate:"required"`

	PIDFile string `mapstructure:"pid_file"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}
