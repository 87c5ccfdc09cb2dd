package eventbus

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
)

// InMemoryEventBus delivers committed events to post-commit subscribers
// (mail, in-app notifications, realtime push). Handlers of one event run
// concurrently; Publish returns once all of them finished.
type InMemoryEventBus struct {
	subscriptions *EventHandlerRegistry
	logger        *slog.Logger
}

func New(logger *slog.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventBus{
		subscriptions: NewEventHandlerRegistry(logger),
		logger:        logger,
	}
}

func (b *InMemoryEventBus) Subscribe(eventType events.EventType, handler events.Handler) error {
	return b.subscriptions.Subscribe(eventType, handler)
}

// Publish never returns a handler's error. The event is already committed,
// so a failing subscriber is logged and the others still run.
func (b *InMemoryEventBus) Publish(ctx context.Context, event events.Event) error {
	handlers := b.subscriptions.HandlersFor(event.EventType())
	if len(handlers) == 0 {
		return nil
	}
	log := b.logger.With(
		slog.String("event_type", event.EventType().String()),
		slog.String("event_id", event.EventID()),
	)
	log.Debug("delivering event", slog.Int("handlers", len(handlers)))

	// Slow handlers may outlive the request that raised the event.
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	for _, handler := range handlers {
		g.Go(func() error {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("event handler panicked", slog.Any("panic", rec))
				}
			}()
			if err := handler.Handle(ctx, event); err != nil {
				log.Error("event handler failed", slog.Any("error", err))
			}
			return nil
		})
	}
	return g.Wait()
}

var (
	_ events.Publisher  = (*InMemoryEventBus)(nil)
	_ events.Subscriber = (*InMemoryEventBus)(nil)
)
