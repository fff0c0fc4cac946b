package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultWSURL                = "ws://localhost:8000/ws"
	DefaultListenAddr           = ":8000"
	DefaultMaxReconnectAttempts = 5
	DefaultHandshakeTimeout     = 10 * time.Second
	DefaultWriteTimeout         = 5 * time.Second
	DefaultLogLevel             = "info"
)

func (c *Config) applyDefaults() {
	if c.Server.WSURL == "" {
		c.Server.WSURL = DefaultWSURL
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}

	if c.Connection.MaxReconnectAttempts == 0 {
		c.Connection.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if c.Connection.HandshakeTimeout == 0 {
		c.Connection.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Connection.WriteTimeout == 0 {
		c.Connection.WriteTimeout = DefaultWriteTimeout
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}
