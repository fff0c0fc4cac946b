package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Errors
var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrMissingType    = errors.New("frame has no type")
)

// Frame is one server-to-client message parsed from a raw text frame.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Command is one client-to-server message.
type Command struct {
	Command string `json:"command"`
	Payload any    `json:"payload"`
}

// Known frame types emitted by the game server. Frame types outside this
// set are application-defined and pass through the connection layer
// untouched.
const (
	FrameWelcome      = "welcome"
	FrameDescription  = "description"
	FrameDialogue     = "dialogue"
	FrameActionResult = "action_result"
	FrameStateUpdate  = "state_update"
	FrameError        = "error"
)

// Known command names.
const (
	CmdLook    = "LOOK"
	CmdUseItem = "USE_ITEM"
	CmdTalkTo  = "TALK_TO"
)

// DescriptionPayload is the payload of a "description" frame.
type DescriptionPayload struct {
	Description string `json:"description"`
}

// DialoguePayload is the payload of a "dialogue" frame.
type DialoguePayload struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// ErrorPayload is the payload of an "error" frame.
type ErrorPayload struct {
	Message string `json:"message"`
}

// WelcomePayload is the payload of a "welcome" frame.
type WelcomePayload struct {
	Message string `json:"message"`
}

// ActionResultPayload is the payload of an "action_result" frame.
type ActionResultPayload struct {
	Result string `json:"result"`
}

// LookPayload is the payload of a LOOK command.
type LookPayload struct {
	Target string `json:"target"`
}

// UseItemPayload is the payload of a USE_ITEM command.
type UseItemPayload struct {
	Item   string `json:"item"`
	Target string `json:"target,omitempty"`
}

// TalkToPayload is the payload of a TALK_TO command.
type TalkToPayload struct {
	NPCID string `json:"npc_id"`
}

// ParseFrame decodes a raw text frame into a Frame. Frames that are not
// valid JSON objects or carry no type tag are rejected; callers drop
// them without delivering anything to subscribers.
func ParseFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if f.Type == "" {
		return Frame{}, ErrMissingType
	}
	return f, nil
}

// EncodeCommand serializes a command for transmission.
func EncodeCommand(command string, payload any) ([]byte, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(Command{Command: command, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encode command %s: %w", command, err)
	}
	return data, nil
}

// DecodePayload unmarshals a frame payload into a typed struct.
func DecodePayload[T any](f Frame) (T, error) {
	var v T
	if len(f.Payload) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(f.Payload, &v); err != nil {
		return v, fmt.Errorf("decode %s payload: %w", f.Type, err)
	}
	return v, nil
}
