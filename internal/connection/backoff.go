package connection

import (
	"math"
	"time"
)

// Reconnection pacing. The server-side session cache is tuned around
// these values; changing them changes how aggressively stale clients
// hammer a recovering server.
const (
	reconnectBaseDelay  = 3 * time.Second
	reconnectMaxDelay   = 30 * time.Second
	reconnectMultiplier = 1.5
)

// ReconnectDelay returns the wait before reconnect attempt n (1-based):
// base * 1.5^(n-1), capped at the ceiling. Pure and deterministic.
func ReconnectDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Duration(float64(reconnectBaseDelay) * math.Pow(reconnectMultiplier, float64(attempt-1)))
	if d > reconnectMaxDelay {
		return reconnectMaxDelay
	}
	return d
}
