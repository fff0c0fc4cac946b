package config

import "time"

// Config is the root configuration shared by the console client and the
// dev game server.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Connection ConnectionConfig `yaml:"connection"`
	Logging    LoggingConfig    `yaml:"logging"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// ServerConfig locates the game server.
type ServerConfig struct {
	WSURL      string `yaml:"ws_url"`      // endpoint the client dials
	ListenAddr string `yaml:"listen_addr"` // address the dev server binds
}

// ConnectionConfig holds connection manager settings.
type ConnectionConfig struct {
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`
	HandshakeTimeout     time.Duration `yaml:"handshake_timeout"`
	WriteTimeout         time.Duration `yaml:"write_timeout"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// TelemetryConfig controls OpenTelemetry tracing. The exporter itself is
// configured through the standard OTEL_* environment variables.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled"`
}
