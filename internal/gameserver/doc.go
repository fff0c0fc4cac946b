// Package gameserver implements a development game server speaking the
// client's wire protocol over WebSocket.
//
// The server holds a single in-memory game state and serves one
// text-frame protocol:
//   - Inbound: {"command": "LOOK"|"USE_ITEM"|"TALK_TO", "payload": {...}}
//   - Outbound: {"type": "welcome"|"description"|"dialogue"|"action_result"|"state_update"|"error", "payload": {...}}
//
// Malformed input never closes the connection; the server answers with
// an "error" frame and keeps reading. It exists so the client can be
// exercised end to end without the production backend.
package gameserver
