package connection

import (
	"context"
	"errors"
	"sync"
)

// GateState is the lifecycle of the readiness gate.
type GateState int32

const (
	// GateUnset means no connection attempt has ever been made.
	GateUnset GateState = iota
	// GatePending means an attempt is in flight and callers may wait.
	GatePending
	// GateResolved means the last attempt opened the socket.
	GateResolved
	// GateRejected means the last attempt failed before opening.
	GateRejected
)

// String returns the gate state name.
func (s GateState) String() string {
	switch s {
	case GateUnset:
		return "unset"
	case GatePending:
		return "pending"
	case GateResolved:
		return "resolved"
	case GateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// completion is the one-shot record for a single attempt. err is written
// before done is closed, so waiters may read it lock-free after done.
type completion struct {
	done chan struct{}
	err  error
}

// Gate is a single-slot, re-creatable completion signal. Senders wait on
// it until the connection attempt in flight settles; all waiters of the
// same attempt observe the same outcome. A settled gate stays readable
// until the next Create, which installs a fresh pending completion while
// earlier waiters keep the outcome of the attempt they joined.
// All methods are safe for concurrent use.
type Gate struct {
	mu    sync.Mutex
	state GateState
	cur   *completion
}

// Create installs a new pending completion for the next attempt. A gate
// that is already pending is reused, never replaced: a new attempt must
// not start while a prior one is in flight.
func (g *Gate) Create() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == GatePending {
		return
	}
	g.state = GatePending
	g.cur = &completion{done: make(chan struct{})}
}

// Resolve settles the pending completion as success. Settling twice, or
// settling a gate that is not pending, is a no-op.
func (g *Gate) Resolve() {
	g.settle(GateResolved, nil)
}

// Reject settles the pending completion as failure.
func (g *Gate) Reject(err error) {
	if err == nil {
		err = errors.New("connection attempt failed")
	}
	g.settle(GateRejected, err)
}

func (g *Gate) settle(state GateState, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != GatePending {
		return
	}
	g.state = state
	g.cur.err = err
	close(g.cur.done)
}

// Wait blocks until the current attempt settles or ctx is done, then
// returns the attempt outcome. Any number of callers may wait
// concurrently. Waiting on a gate that was never created returns
// ErrNoAttempt.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	if g.state == GateUnset {
		g.mu.Unlock()
		return ErrNoAttempt
	}
	c := g.cur
	g.mu.Unlock()

	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the current gate state.
func (g *Gate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
