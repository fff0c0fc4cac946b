// Package connection implements the resilient connection manager.
//
// The Manager:
//   - Owns a single WebSocket to the game server
//   - Moves through Idle -> Connecting -> Open -> Closed
//   - Reconnects with exponential backoff after abnormal closures
//   - Gates early senders on connection readiness
//   - Routes inbound frames onto the event bus by frame type
package connection
