package events

import (
	"log/slog"
	"reflect"
	"sync"
)

// Reserved event names emitted by the connection layer.
const (
	Connected    = "connected"
	Disconnected = "disconnected"
	Error        = "error"
	Message      = "message"
)

// ErrorPayload is the payload carried by "error" events.
type ErrorPayload struct {
	Message string
	Cause   error
}

// Handler is a subscriber callback. Payload types are described in the
// package documentation.
type Handler func(payload any)

// subscription pairs a handler with its owning context. The function
// pointer is kept so Off can match by identity; Go funcs themselves are
// not comparable.
type subscription struct {
	fn    Handler
	fnPtr uintptr
	owner any
}

// Bus dispatches events to subscribers in registration order.
type Bus struct {
	logger *slog.Logger

	mu   sync.Mutex
	subs map[string][]subscription
}

// NewBus creates an event bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		logger: logger,
		subs:   make(map[string][]subscription),
	}
}

// On registers fn for the given event. The owner identifies the
// subscribing component (usually a pointer to it, or nil) and must be
// comparable; the same (event, fn, owner) triple can later be removed
// with Off. Duplicate registrations are allowed and each fires.
func (b *Bus) On(event string, fn Handler, owner any) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs[event] = append(b.subs[event], subscription{
		fn:    fn,
		fnPtr: reflect.ValueOf(fn).Pointer(),
		owner: owner,
	})
}

// Off removes the registration matching fn and owner by identity.
// Removing a registration that does not exist is a no-op.
func (b *Bus) Off(event string, fn Handler, owner any) {
	if fn == nil {
		return
	}
	ptr := reflect.ValueOf(fn).Pointer()

	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[event]
	for i, sub := range list {
		if sub.fnPtr == ptr && sub.owner == owner {
			b.subs[event] = append(list[:i:i], list[i+1:]...)
			if len(b.subs[event]) == 0 {
				delete(b.subs, event)
			}
			return
		}
	}
}

// Emit invokes every subscriber registered for event, synchronously and
// in registration order. A panicking subscriber is logged and skipped so
// it cannot prevent delivery to the rest.
func (b *Bus) Emit(event string, payload any) {
	b.mu.Lock()
	list := make([]subscription, len(b.subs[event]))
	copy(list, b.subs[event])
	b.mu.Unlock()

	for _, sub := range list {
		b.dispatch(event, sub, payload)
	}
}

func (b *Bus) dispatch(event string, sub subscription, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("subscriber panicked",
				"event", event,
				"panic", r,
			)
		}
	}()
	sub.fn(payload)
}

// SubscriberCount returns the number of registrations for event.
func (b *Bus) SubscriberCount(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[event])
}
