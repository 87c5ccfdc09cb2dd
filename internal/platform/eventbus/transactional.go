package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	shareddomain "github.com/AlagappanMk24/Gymunity/modules/shared/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
)

// ErrEventProcessingDepthExceeded is returned by Flush once it has
// dispatched more events than the bus allows, which usually means two
// handlers keep raising events for each other.
var ErrEventProcessingDepthExceeded = errors.New("eventbus: event processing depth exceeded")

const defaultMaxDepth = 10

// TransactionalEventBus queues the events of one unit of work and dispatches
// them synchronously, inside the transaction, when Flush is called. A failing
// handler fails the flush and so rolls the transaction back.
//
// Instances are single use. UnitOfWork builds one per transaction attempt.
type TransactionalEventBus struct {
	registry HandlerRegistry
	maxDepth int

	mu         sync.Mutex
	queue      []events.Event
	dispatched []events.Event
}

// NewTransactional returns a bus that dispatches at most maxDepth events.
// A non-positive maxDepth uses the default of 10.
func NewTransactional(registry HandlerRegistry, maxDepth int) *TransactionalEventBus {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	return &TransactionalEventBus{registry: registry, maxDepth: maxDepth}
}

// Publish queues event. It is safe to call from a handler during Flush.
func (b *TransactionalEventBus) Publish(_ context.Context, event events.Event) error {
	b.mu.Lock()
	b.queue = append(b.queue, event)
	b.mu.Unlock()
	return nil
}

// Collect queues the events src raised and clears them from it.
func (b *TransactionalEventBus) Collect(ctx context.Context, src shareddomain.EventSource) error {
	for _, event := range src.DomainEvents() {
		if err := b.Publish(ctx, event); err != nil {
			return err
		}
	}
	src.ClearDomainEvents()
	return nil
}

// Flush dispatches queued events in FIFO order until the queue is empty,
// including events raised by the handlers themselves.
func (b *TransactionalEventBus) Flush(ctx context.Context) error {
	for {
		event, ok, err := b.next()
		if err != nil || !ok {
			return err
		}
		for _, handler := range b.registry.HandlersFor(event.EventType()) {
			if err := handler.Handle(ctx, event); err != nil {
				return fmt.Errorf("handling %s: %w", event.EventType(), err)
			}
		}
		b.mu.Lock()
		b.dispatched = append(b.dispatched, event)
		b.mu.Unlock()
	}
}

func (b *TransactionalEventBus) next() (events.Event, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return nil, false, nil
	}
	if len(b.dispatched) >= b.maxDepth {
		return nil, false, ErrEventProcessingDepthExceeded
	}
	event := b.queue[0]
	b.queue = b.queue[1:]
	return event, true, nil
}

// Processed returns the dispatched events in dispatch order.
func (b *TransactionalEventBus) Processed() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.Event(nil), b.dispatched...)
}

// PendingCount returns the number of queued, undispatched events.
func (b *TransactionalEventBus) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

type busKey struct{}

func withBus(ctx context.Context, bus *TransactionalEventBus) context.Context {
	return context.WithValue(ctx, busKey{}, bus)
}

// BusFromContext returns the bus of the unit of work running in ctx.
// In-transaction handlers use it to raise follow-up events.
func BusFromContext(ctx context.Context) (*TransactionalEventBus, bool) {
	bus, ok := ctx.Value(busKey{}).(*TransactionalEventBus)
	return bus, ok
}

// CollectFrom queues the events of src on the bus in ctx. Outside a unit of
// work the events are discarded.
func CollectFrom(ctx context.Context, src shareddomain.EventSource) error {
	bus, ok := BusFromContext(ctx)
	if !ok {
		src.ClearDomainEvents()
		return nil
	}
	return bus.Collect(ctx, src)
}

var _ events.Publisher = (*TransactionalEventBus)(nil)
