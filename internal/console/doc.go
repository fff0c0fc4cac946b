// Package console implements the interactive terminal client.
//
// It is a Bubble Tea program layered on top of the connection manager:
// player input is parsed into game commands and sent through the
// manager, and frames arriving on the event bus are forwarded into the
// program as messages and rendered into a scrolling transcript.
package console
