package connection

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/backdoor-game/client/internal/events"
	"github.com/backdoor-game/client/internal/protocol"
)

// Manager owns the socket to the game server and keeps it alive.
//
// It is safe for concurrent use. Lifecycle events (connected,
// disconnected, error) and every inbound frame are published on the
// injected event bus; inbound frames are dispatched in transport order
// from a single reader goroutine. The Manager never emits while holding
// its own lock, so subscribers may call back into it.
type Manager struct {
	cfg     Config
	bus     *events.Bus
	logger  *slog.Logger
	tracer  trace.Tracer
	session uuid.UUID

	mu             sync.Mutex
	state          State
	sock           *socket
	gate           Gate
	attempts       int // consecutive failures since the last successful open
	reconnectTimer *time.Timer

	// delay is ReconnectDelay; tests substitute a faster schedule.
	delay func(attempt int) time.Duration
}

// Option customizes a Manager.
type Option func(*Manager)

// WithTracer attaches an OpenTelemetry tracer for connection spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(m *Manager) {
		if tracer != nil {
			m.tracer = tracer
		}
	}
}

// NewManager creates a connection manager publishing on bus. The zero
// fields of cfg are filled from DefaultConfig.
func NewManager(cfg Config, bus *events.Bus, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.MaxReconnectAttempts <= 0 {
		cfg.MaxReconnectAttempts = def.MaxReconnectAttempts
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = def.HandshakeTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}

	session := uuid.New()
	m := &Manager{
		cfg:     cfg,
		bus:     bus,
		logger:  logger.With("session", session),
		tracer:  noop.NewTracerProvider().Tracer("connection"),
		session: session,
		state:   StateIdle,
		delay:   ReconnectDelay,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Session returns the client session ID sent with every handshake.
func (m *Manager) Session() uuid.UUID {
	return m.session
}

// Connect establishes the connection, or joins the attempt already in
// flight. It returns nil once the socket is open and the attempt's
// failure otherwise. Calling Connect while already Open is a no-op that
// returns the settled outcome without creating a new socket. A manual
// Connect after automatic recovery gave up resets retry eligibility.
func (m *Manager) Connect(ctx context.Context) error {
	return m.beginConnect(true).Wait(ctx)
}

// beginConnect returns the gate for the attempt the caller should wait
// on, starting a new attempt unless one is in flight or the socket is
// already open. manual distinguishes caller-initiated connects from the
// reconnect timer: only the former reset the failure counter.
func (m *Manager) beginConnect(manual bool) *Gate {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateOpen, StateConnecting:
		return &m.gate
	}

	// Idle or Closed: this call owns the new attempt.
	m.cancelReconnectTimerLocked()
	if manual {
		m.attempts = 0
	}
	m.startAttemptLocked()
	return &m.gate
}

// startAttemptLocked flips the state machine to Connecting and dials in
// the background. Callers hold m.mu.
func (m *Manager) startAttemptLocked() {
	m.gate.Create()
	m.state = StateConnecting
	go m.dial()
}

// dial performs one handshake and settles the current gate.
func (m *Manager) dial() {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.HandshakeTimeout)
	defer cancel()

	ctx, span := m.tracer.Start(ctx, "connection.dial",
		trace.WithAttributes(attribute.String("ws.url", m.cfg.URL)),
	)
	defer span.End()

	header := http.Header{}
	header.Set("X-Session-ID", m.session.String())

	dialer := websocket.Dialer{HandshakeTimeout: m.cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, m.cfg.URL, header)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "handshake failed")
		m.handleDialFailure(err)
		return
	}
	span.SetStatus(codes.Ok, "")

	m.mu.Lock()
	if m.state != StateConnecting {
		// A deliberate Disconnect raced the handshake; the gate is
		// already settled. Drop the fresh socket.
		m.mu.Unlock()
		conn.Close()
		return
	}
	sock := newSocket(conn, m.cfg.WriteTimeout)
	m.sock = sock
	m.state = StateOpen
	m.attempts = 0
	m.gate.Resolve()
	m.mu.Unlock()

	m.logger.Info("connected", "url", m.cfg.URL)
	m.bus.Emit(events.Connected, nil)

	go m.readLoop(sock)
}

// handleDialFailure rejects the in-flight gate and schedules the next
// attempt.
func (m *Manager) handleDialFailure(err error) {
	m.mu.Lock()
	if m.state != StateConnecting {
		m.mu.Unlock()
		return
	}
	m.state = StateClosed
	m.gate.Reject(fmt.Errorf("connect %s: %w", m.cfg.URL, err))
	delay, scheduled := m.scheduleReconnectLocked()
	attempt := m.attempts
	m.mu.Unlock()

	if scheduled {
		m.logger.Warn("connection attempt failed",
			"error", err,
			"attempt", attempt,
			"retry_in", delay,
		)
	} else {
		m.logger.Warn("connection attempt failed, giving up",
			"error", err,
			"attempts", attempt,
		)
	}
	m.bus.Emit(events.Disconnected, nil)
}

// readLoop reads frames from one socket until it dies.
func (m *Manager) readLoop(sock *socket) {
	for {
		_, data, err := sock.conn.ReadMessage()
		if err != nil {
			if sock.localClosed() {
				// Disconnect already handled the shutdown.
				return
			}
			m.handleClosure(sock, err)
			return
		}
		m.handleFrame(data)
	}
}

// handleClosure reacts to a transport-initiated close or error on the
// currently owned socket.
func (m *Manager) handleClosure(sock *socket, err error) {
	normal := websocket.IsCloseError(err, websocket.CloseNormalClosure)

	m.mu.Lock()
	if m.sock != sock {
		// A stale read loop lost the race against Disconnect/reconnect.
		m.mu.Unlock()
		return
	}
	m.sock = nil
	m.state = StateClosed
	if m.gate.State() == GatePending {
		m.gate.Reject(fmt.Errorf("connection closed: %w", err))
	}
	var delay time.Duration
	scheduled := false
	if !normal {
		delay, scheduled = m.scheduleReconnectLocked()
	}
	attempt := m.attempts
	m.mu.Unlock()

	sock.conn.Close()

	switch {
	case normal:
		m.logger.Info("connection closed by peer", "code", websocket.CloseNormalClosure)
	case scheduled:
		m.logger.Warn("connection lost",
			"error", err,
			"attempt", attempt,
			"retry_in", delay,
		)
	default:
		m.logger.Warn("connection lost, giving up",
			"error", err,
			"attempts", attempt,
		)
	}
	m.bus.Emit(events.Disconnected, nil)
}

// scheduleReconnectLocked arms the single reconnect timer, unless the
// failure budget is spent. Callers hold m.mu with state Closed.
func (m *Manager) scheduleReconnectLocked() (time.Duration, bool) {
	if m.attempts >= m.cfg.MaxReconnectAttempts {
		return 0, false
	}
	m.attempts++
	delay := m.delay(m.attempts)
	m.reconnectTimer = time.AfterFunc(delay, m.retry)
	return delay, true
}

// retry is the reconnect timer callback.
func (m *Manager) retry() {
	m.mu.Lock()
	m.reconnectTimer = nil
	if m.state != StateClosed {
		// A manual Connect or Disconnect got there first.
		m.mu.Unlock()
		return
	}
	m.startAttemptLocked()
	m.mu.Unlock()
}

func (m *Manager) cancelReconnectTimerLocked() {
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
}

// handleFrame parses one raw text frame and dispatches it. Malformed
// frames are dropped here and never reach subscribers.
func (m *Manager) handleFrame(data []byte) {
	frame, err := protocol.ParseFrame(data)
	if err != nil {
		m.logger.Warn("dropping malformed frame", "error", err, "bytes", len(data))
		return
	}

	m.bus.Emit(events.Message, frame)
	m.bus.Emit(frame.Type, frame.Payload)
}

// Disconnect is a caller-initiated shutdown: it cancels any pending
// reconnect, suppresses further automatic retries, closes the socket
// with a normal-closure frame carrying reason, and emits disconnected.
// It is safe to call with no socket held.
func (m *Manager) Disconnect(reason string) {
	m.mu.Lock()
	m.cancelReconnectTimerLocked()
	m.attempts = m.cfg.MaxReconnectAttempts
	sock := m.sock
	m.sock = nil
	m.state = StateClosed
	if m.gate.State() == GatePending {
		m.gate.Reject(fmt.Errorf("disconnected: %s", reason))
	}
	m.mu.Unlock()

	if sock != nil {
		sock.close(websocket.CloseNormalClosure, reason)
	}

	m.logger.Info("disconnected", "reason", reason)
	m.bus.Emit(events.Disconnected, nil)
}

// IsConnected reports whether the socket is currently open.
func (m *Manager) IsConnected() bool {
	return m.State() == StateOpen
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SendCommand serializes {"command","payload"} and writes it to the
// socket, transparently connecting first when necessary. Failures never
// surface to the caller; they are published as error events so the
// application observes every fault through one channel.
func (m *Manager) SendCommand(ctx context.Context, command string, payload any) {
	gate := m.beginConnect(true)
	if err := gate.Wait(ctx); err != nil {
		m.logger.Warn("send failed, no connection", "command", command, "error", err)
		m.bus.Emit(events.Error, events.ErrorPayload{
			Message: fmt.Sprintf("send %s failed: %v", command, err),
			Cause:   err,
		})
		return
	}

	data, err := protocol.EncodeCommand(command, payload)
	if err != nil {
		m.logger.Error("encode command failed", "command", command, "error", err)
		m.bus.Emit(events.Error, events.ErrorPayload{
			Message: fmt.Sprintf("send %s failed: %v", command, err),
			Cause:   err,
		})
		return
	}

	m.mu.Lock()
	sock := m.sock
	m.mu.Unlock()
	if sock == nil {
		// The connection dropped between gate resolution and the write.
		m.logger.Warn("send failed, connection dropped", "command", command)
		m.bus.Emit(events.Error, events.ErrorPayload{
			Message: fmt.Sprintf("send %s failed: %v", command, ErrNotConnected),
			Cause:   ErrNotConnected,
		})
		return
	}

	if err := sock.send(data); err != nil {
		m.logger.Warn("write failed", "command", command, "error", err)
		m.bus.Emit(events.Error, events.ErrorPayload{
			Message: fmt.Sprintf("send %s failed: %v", command, err),
			Cause:   err,
		})
		return
	}

	m.logger.Debug("command sent", "command", command, "bytes", len(data))
}
