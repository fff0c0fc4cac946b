// Package protocol defines the wire schema between client and game server.
//
// Every WebSocket frame is one UTF-8 text message containing one JSON
// object. Server-to-client frames carry a type tag and payload; client-
// to-server messages carry a command name and payload:
//
//	inbound:  {"type": "description", "payload": {...}}
//	outbound: {"command": "LOOK", "payload": {"target": "door"}}
//
// The connection layer treats payloads as opaque JSON. The typed payload
// structs in this package exist for application collaborators that want
// to decode the known frame types and build the known commands.
package protocol
