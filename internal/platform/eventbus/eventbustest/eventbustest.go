// Package eventbustest provides units of work for application-layer tests.
package eventbustest

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/transaction"
)

// Scope runs fn without a real transaction.
var Scope transaction.Scope = transaction.Func(func(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
})

// Recorder is a post-commit publisher that keeps every event.
type Recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *Recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns the published events in order.
func (r *Recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// Types returns the types of the published events in order.
func (r *Recorder) Types() []events.EventType {
	evts := r.Events()
	out := make([]events.EventType, len(evts))
	for i, e := range evts {
		out[i] = e.EventType()
	}
	return out
}

// Reset forgets recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// New returns a unit of work over a pass-through scope, its in-transaction
// handler registry and the recorder receiving committed events.
func New() (*eventbus.UnitOfWork, *eventbus.EventHandlerRegistry, *Recorder) {
	registry := eventbus.NewEventHandlerRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec := &Recorder{}
	return eventbus.NewUnitOfWork(Scope, registry, rec), registry, rec
}
