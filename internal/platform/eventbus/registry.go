// Package eventbus dispatches domain events between modules. In-transaction
// handlers run through a per-transaction bus built from a registry; side
// effects that must follow a commit run on the in-memory bus.
package eventbus

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
)

// ErrNilHandler is returned when subscribing a nil handler.
var ErrNilHandler = errors.New("eventbus: nil handler")

// HandlerRegistry looks up the handlers subscribed to an event type.
type HandlerRegistry interface {
	HandlersFor(eventType events.EventType) []events.Handler
}

// EventHandlerRegistry records in-transaction subscriptions. Modules fill it
// while they are constructed; afterwards it is only read.
type EventHandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[events.EventType][]events.Handler
	logger   *slog.Logger
}

func NewEventHandlerRegistry(logger *slog.Logger) *EventHandlerRegistry {
	return &EventHandlerRegistry{
		handlers: make(map[events.EventType][]events.Handler),
		logger:   logger,
	}
}

// Subscribe appends handler to eventType. Handlers run in subscription order.
func (r *EventHandlerRegistry) Subscribe(eventType events.EventType, handler events.Handler) error {
	if handler == nil {
		return ErrNilHandler
	}
	r.mu.Lock()
	r.handlers[eventType] = append(r.handlers[eventType], handler)
	n := len(r.handlers[eventType])
	r.mu.Unlock()

	r.logger.Debug("handler registered",
		slog.String("event_type", eventType.String()),
		slog.Int("handlers", n),
	)
	return nil
}

// HandlersFor returns a snapshot; later subscriptions do not affect it.
func (r *EventHandlerRegistry) HandlersFor(eventType events.EventType) []events.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]events.Handler(nil), r.handlers[eventType]...)
}

var (
	_ events.Subscriber = (*EventHandlerRegistry)(nil)
	_ HandlerRegistry   = (*EventHandlerRegistry)(nil)
)
