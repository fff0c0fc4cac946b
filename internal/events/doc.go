// Package events implements the typed event router.
//
// A Bus maps event names to ordered subscriber lists and dispatches
// synchronously in registration order. It is an explicit instance owned
// by the application's composition root and injected into consumers, not
// a package-level singleton, so lifecycle and tests stay explicit.
//
// Reserved event names carry a closed set of payload types:
//   - connected:    nil
//   - disconnected: nil
//   - error:        events.ErrorPayload
//   - message:      protocol.Frame (the full inbound frame)
//
// Every other event name is application-defined; its payload is the raw
// JSON payload of the inbound frame (json.RawMessage).
package events
