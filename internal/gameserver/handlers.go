package gameserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/codes"

	"github.com/backdoor-game/client/internal/protocol"
)

// incomingMessage is the raw shape of one client-to-server message.
type incomingMessage struct {
	Command string          `json:"command"`
	Payload json.RawMessage `json:"payload"`
}

// handleMessage parses one raw text frame and routes it. Every failure
// mode answers with an "error" frame; nothing here closes the
// connection.
func (s *Server) handleMessage(ctx context.Context, conn *websocket.Conn, log *slog.Logger, data []byte) {
	var msg incomingMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Warn("non-JSON message", "error", err)
		s.sendError(conn, log, "Invalid message format. Expected JSON.")
		return
	}
	if msg.Command == "" {
		log.Warn("message without command")
		s.sendError(conn, log, "Invalid message structure: command is required.")
		return
	}

	command := strings.ToUpper(msg.Command)
	ctx, span := s.tracer.Start(ctx, "gameserver.command", commandAttrs(command))
	defer span.End()

	log.Info("handling command", "command", command)

	if err := s.dispatch(ctx, conn, log, command, msg.Payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func (s *Server) dispatch(_ context.Context, conn *websocket.Conn, log *slog.Logger, command string, payload json.RawMessage) error {
	switch command {
	case protocol.CmdLook:
		return s.handleLook(conn, log, payload)
	case protocol.CmdUseItem:
		return s.handleUseItem(conn, log, payload)
	case protocol.CmdTalkTo:
		return s.handleTalkTo(conn, log, payload)
	default:
		log.Warn("unknown command", "command", command)
		s.sendError(conn, log, fmt.Sprintf("Unknown command: %s", command))
		return fmt.Errorf("unknown command %s", command)
	}
}

func (s *Server) handleLook(conn *websocket.Conn, log *slog.Logger, payload json.RawMessage) error {
	var p protocol.LookPayload
	if err := s.decodePayload(conn, log, protocol.CmdLook, payload, &p); err != nil {
		return err
	}
	if p.Target == "" {
		p.Target = s.world.Snapshot().Location
	}
	s.sendFrame(conn, log, protocol.FrameDescription, protocol.DescriptionPayload{
		Description: s.world.Look(p.Target),
	})
	return nil
}

func (s *Server) handleUseItem(conn *websocket.Conn, log *slog.Logger, payload json.RawMessage) error {
	var p protocol.UseItemPayload
	if err := s.decodePayload(conn, log, protocol.CmdUseItem, payload, &p); err != nil {
		return err
	}
	if p.Item == "" {
		s.sendError(conn, log, "Invalid payload for USE_ITEM: item is required.")
		return fmt.Errorf("USE_ITEM without item")
	}
	result := s.world.UseItem(p.Item, p.Target)
	s.sendFrame(conn, log, protocol.FrameActionResult, protocol.ActionResultPayload{Result: result})
	s.sendFrame(conn, log, protocol.FrameStateUpdate, s.world.Snapshot())
	return nil
}

func (s *Server) handleTalkTo(conn *websocket.Conn, log *slog.Logger, payload json.RawMessage) error {
	var p protocol.TalkToPayload
	if err := s.decodePayload(conn, log, protocol.CmdTalkTo, payload, &p); err != nil {
		return err
	}
	if p.NPCID == "" {
		s.sendError(conn, log, "Invalid payload for TALK_TO: npc_id is required.")
		return fmt.Errorf("TALK_TO without npc_id")
	}
	speaker, text, ok := s.world.TalkTo(p.NPCID)
	if !ok {
		s.sendError(conn, log, fmt.Sprintf("There is nobody called %s here.", p.NPCID))
		return nil
	}
	s.sendFrame(conn, log, protocol.FrameDialogue, protocol.DialoguePayload{Speaker: speaker, Text: text})
	return nil
}

func (s *Server) decodePayload(conn *websocket.Conn, log *slog.Logger, command string, raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Warn("invalid payload", "command", command, "error", err)
		s.sendError(conn, log, fmt.Sprintf("Invalid payload for %s.", command))
		return fmt.Errorf("invalid payload for %s: %w", command, err)
	}
	return nil
}
