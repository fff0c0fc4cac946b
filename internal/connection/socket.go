package connection

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// socket wraps one open WebSocket. The Manager owns the handle; a new
// socket is created per successful attempt and discarded on closure.
type socket struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	// Write serialization
	writeMu sync.Mutex

	// done is closed when the closure was requested locally, so the read
	// loop can tell a deliberate shutdown from a transport failure.
	done      chan struct{}
	closeOnce sync.Once
}

func newSocket(conn *websocket.Conn, writeTimeout time.Duration) *socket {
	return &socket{
		conn:         conn,
		writeTimeout: writeTimeout,
		done:         make(chan struct{}),
	}
}

// send writes one text frame.
func (s *socket) send(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// close performs a deliberate closure: best-effort close frame with the
// given code and reason, then tears down the transport.
func (s *socket) close(code int, reason string) {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason),
			time.Now().Add(time.Second),
		)
		s.conn.Close()
	})
}

// localClosed reports whether close was called on this socket.
func (s *socket) localClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
