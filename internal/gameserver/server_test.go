package gameserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/backdoor-game/client/internal/protocol"
)

func newTestConn(t *testing.T) *websocket.Conn {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewServer(NewWorld(), logger))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) protocol.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	f, err := protocol.ParseFrame(data)
	if err != nil {
		t.Fatalf("parse frame %q: %v", data, err)
	}
	return f
}

// skipWelcome consumes the welcome frame sent on connect.
func skipWelcome(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	f := readFrame(t, conn)
	if f.Type != protocol.FrameWelcome {
		t.Fatalf("first frame = %q, want welcome", f.Type)
	}
}

func sendCommand(t *testing.T, conn *websocket.Conn, command string, payload any) {
	t.Helper()
	data, err := protocol.EncodeCommand(command, payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestServer_WelcomeOnConnect(t *testing.T) {
	conn := newTestConn(t)

	f := readFrame(t, conn)
	if f.Type != protocol.FrameWelcome {
		t.Fatalf("type = %q, want welcome", f.Type)
	}
	p, err := protocol.DecodePayload[protocol.WelcomePayload](f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Message == "" {
		t.Error("welcome message is empty")
	}
}

func TestServer_LookKnownTarget(t *testing.T) {
	conn := newTestConn(t)
	skipWelcome(t, conn)

	sendCommand(t, conn, protocol.CmdLook, protocol.LookPayload{Target: "door"})

	f := readFrame(t, conn)
	if f.Type != protocol.FrameDescription {
		t.Fatalf("type = %q, want description", f.Type)
	}
	p, err := protocol.DecodePayload[protocol.DescriptionPayload](f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(p.Description, "door") {
		t.Errorf("description %q does not mention the door", p.Description)
	}
}

func TestServer_LookDefaultsToLocation(t *testing.T) {
	conn := newTestConn(t)
	skipWelcome(t, conn)

	sendCommand(t, conn, protocol.CmdLook, nil)

	f := readFrame(t, conn)
	if f.Type != protocol.FrameDescription {
		t.Fatalf("type = %q, want description", f.Type)
	}
	p, _ := protocol.DecodePayload[protocol.DescriptionPayload](f)
	if !strings.Contains(p.Description, "pod") {
		t.Errorf("description %q is not the starting location", p.Description)
	}
}

func TestServer_UseItemEmitsResultAndStateUpdate(t *testing.T) {
	conn := newTestConn(t)
	skipWelcome(t, conn)

	sendCommand(t, conn, protocol.CmdUseItem, protocol.UseItemPayload{Item: "item_laptop_old"})

	f := readFrame(t, conn)
	if f.Type != protocol.FrameActionResult {
		t.Fatalf("type = %q, want action_result", f.Type)
	}

	f = readFrame(t, conn)
	if f.Type != protocol.FrameStateUpdate {
		t.Fatalf("type = %q, want state_update", f.Type)
	}
	var state PlayerState
	if err := json.Unmarshal(f.Payload, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if !state.Flags.KnowsProjectBackdoor {
		t.Error("using the laptop should set knows_project_backdoor")
	}
}

func TestServer_UseItemNotHeld(t *testing.T) {
	conn := newTestConn(t)
	skipWelcome(t, conn)

	sendCommand(t, conn, protocol.CmdUseItem, protocol.UseItemPayload{Item: "item_crowbar"})

	f := readFrame(t, conn)
	if f.Type != protocol.FrameActionResult {
		t.Fatalf("type = %q, want action_result", f.Type)
	}
	p, _ := protocol.DecodePayload[protocol.ActionResultPayload](f)
	if !strings.Contains(p.Result, "don't have") {
		t.Errorf("result = %q, want a narrated failure", p.Result)
	}
}

func TestServer_TalkTo(t *testing.T) {
	conn := newTestConn(t)
	skipWelcome(t, conn)

	sendCommand(t, conn, protocol.CmdTalkTo, protocol.TalkToPayload{NPCID: "npc_greg"})

	f := readFrame(t, conn)
	if f.Type != protocol.FrameDialogue {
		t.Fatalf("type = %q, want dialogue", f.Type)
	}
	p, err := protocol.DecodePayload[protocol.DialoguePayload](f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Speaker != "Greg" {
		t.Errorf("speaker = %q, want Greg", p.Speaker)
	}
	if p.Text == "" {
		t.Error("dialogue text is empty")
	}
}

func TestServer_TalkToUnknownNPC(t *testing.T) {
	conn := newTestConn(t)
	skipWelcome(t, conn)

	sendCommand(t, conn, protocol.CmdTalkTo, protocol.TalkToPayload{NPCID: "npc_nobody"})

	f := readFrame(t, conn)
	if f.Type != protocol.FrameError {
		t.Fatalf("type = %q, want error", f.Type)
	}
}

func TestServer_UnknownCommand(t *testing.T) {
	conn := newTestConn(t)
	skipWelcome(t, conn)

	sendCommand(t, conn, "DANCE", nil)

	f := readFrame(t, conn)
	if f.Type != protocol.FrameError {
		t.Fatalf("type = %q, want error", f.Type)
	}
	p, _ := protocol.DecodePayload[protocol.ErrorPayload](f)
	if p.Message != "Unknown command: DANCE" {
		t.Errorf("message = %q", p.Message)
	}
}

func TestServer_CommandNameCaseInsensitive(t *testing.T) {
	conn := newTestConn(t)
	skipWelcome(t, conn)

	sendCommand(t, conn, "look", protocol.LookPayload{Target: "door"})

	f := readFrame(t, conn)
	if f.Type != protocol.FrameDescription {
		t.Fatalf("type = %q, want description", f.Type)
	}
}

func TestServer_NonJSONMessage(t *testing.T) {
	conn := newTestConn(t)
	skipWelcome(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}

	f := readFrame(t, conn)
	if f.Type != protocol.FrameError {
		t.Fatalf("type = %q, want error", f.Type)
	}
	p, _ := protocol.DecodePayload[protocol.ErrorPayload](f)
	if p.Message != "Invalid message format. Expected JSON." {
		t.Errorf("message = %q", p.Message)
	}

	// The connection stays usable after a protocol error.
	sendCommand(t, conn, protocol.CmdLook, protocol.LookPayload{Target: "door"})
	f = readFrame(t, conn)
	if f.Type != protocol.FrameDescription {
		t.Fatalf("type after error = %q, want description", f.Type)
	}
}

func TestServer_MissingCommand(t *testing.T) {
	conn := newTestConn(t)
	skipWelcome(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"payload":{}}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	f := readFrame(t, conn)
	if f.Type != protocol.FrameError {
		t.Fatalf("type = %q, want error", f.Type)
	}
}
