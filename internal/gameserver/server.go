package gameserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/backdoor-game/client/internal/protocol"
)

// Server serves the game protocol over WebSocket. It implements
// http.Handler; mount it at the /ws path.
type Server struct {
	logger   *slog.Logger
	tracer   trace.Tracer
	world    *World
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[uuid.UUID]*websocket.Conn
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithTracer sets the tracer used for per-command spans.
func WithTracer(t trace.Tracer) ServerOption {
	return func(s *Server) {
		s.tracer = t
	}
}

// NewServer creates a game server around the given world.
func NewServer(world *World, logger *slog.Logger, opts ...ServerOption) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		logger: logger,
		tracer: noop.NewTracerProvider().Tracer(""),
		world:  world,
		upgrader: websocket.Upgrader{
			// Dev server; the client connects from arbitrary origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[uuid.UUID]*websocket.Conn),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	id := uuid.New()
	if h := r.Header.Get("X-Session-ID"); h != "" {
		if parsed, err := uuid.Parse(h); err == nil {
			id = parsed
		}
	}

	s.register(id, conn)
	defer s.unregister(id, conn)

	log := s.logger.With("session", id, "remote", r.RemoteAddr)
	log.Info("connection opened", "total", s.connCount())

	s.sendFrame(conn, log, protocol.FrameWelcome, protocol.WelcomePayload{
		Message: "Connected to Project: Backdoor.",
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("connection closed", "total", s.connCount()-1)
			} else {
				log.Warn("read failed", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		s.handleMessage(r.Context(), conn, log, data)
	}
}

func (s *Server) register(id uuid.UUID, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[id] = conn
}

func (s *Server) unregister(id uuid.UUID, conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
	conn.Close()
}

func (s *Server) connCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// sendFrame marshals and writes one outbound frame. Write errors are
// logged, not propagated; the read loop notices the dead connection.
func (s *Server) sendFrame(conn *websocket.Conn, log *slog.Logger, frameType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Error("marshal frame payload", "type", frameType, "error", err)
		return
	}
	data, err := json.Marshal(protocol.Frame{Type: frameType, Payload: raw})
	if err != nil {
		log.Error("marshal frame", "type", frameType, "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Warn("write failed", "type", frameType, "error", err)
	}
}

func (s *Server) sendError(conn *websocket.Conn, log *slog.Logger, message string) {
	s.sendFrame(conn, log, protocol.FrameError, protocol.ErrorPayload{Message: message})
}

// Attrs for command spans.
func commandAttrs(command string) trace.SpanStartOption {
	return trace.WithAttributes(attribute.String("game.command", command))
}
