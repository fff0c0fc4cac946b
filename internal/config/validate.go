package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.WSURL)
	if err != nil {
		return fmt.Errorf("server.ws_url is not a valid URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("server.ws_url must use ws:// or wss://, got %q", u.Scheme)
	}

	if c.Connection.MaxReconnectAttempts < 1 {
		return errors.New("connection.max_reconnect_attempts must be >= 1")
	}
	if c.Connection.HandshakeTimeout <= 0 {
		return errors.New("connection.handshake_timeout must be positive")
	}
	if c.Connection.WriteTimeout <= 0 {
		return errors.New("connection.write_timeout must be positive")
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	return nil
}

// SlogLevel maps the configured level name onto slog.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}
