package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected = errors.New("not connected")
	ErrNoAttempt    = errors.New("no connection attempt in flight")
)

// State is the connection lifecycle state. Exactly one is active at any
// instant.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Config configures the connection Manager.
type Config struct {
	URL                  string        // WebSocket URL (e.g., ws://localhost:8000/ws)
	MaxReconnectAttempts int           // Consecutive failures before automatic recovery stops
	HandshakeTimeout     time.Duration // Dial deadline per attempt
	WriteTimeout         time.Duration // Write deadline for sends
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxReconnectAttempts: 5,
		HandshakeTimeout:     10 * time.Second,
		WriteTimeout:         5 * time.Second,
	}
}
