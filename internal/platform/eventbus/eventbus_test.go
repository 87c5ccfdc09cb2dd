package eventbus_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	shareddomain "github.com/AlagappanMk24/Gymunity/modules/shared/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	pingType events.EventType = "test.Ping"
	pongType events.EventType = "test.Pong"
)

type testEvent struct {
	events.BaseEvent
}

func newEvent(t events.EventType) testEvent {
	return testEvent{BaseEvent: events.NewBaseEvent(t, "agg-1")}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInMemoryEventBus_DeliversToAllHandlers(t *testing.T) {
	bus := eventbus.New(discardLogger())

	var calls atomic.Int32
	for range 3 {
		require.NoError(t, bus.Subscribe(pingType, events.HandlerFunc(func(ctx context.Context, e events.Event) error {
			calls.Add(1)
			return nil
		})))
	}
	require.NoError(t, bus.Subscribe(pingType, events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		return errors.New("boom")
	})))

	err := bus.Publish(context.Background(), newEvent(pingType))

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestInMemoryEventBus_RecoversPanics(t *testing.T) {
	bus := eventbus.New(discardLogger())
	require.NoError(t, bus.Subscribe(pingType, events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		panic("handler bug")
	})))

	assert.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newEvent(pingType))
	})
}

func TestInMemoryEventBus_HandlerContextSurvivesCancel(t *testing.T) {
	bus := eventbus.New(discardLogger())
	var ctxErr error
	require.NoError(t, bus.Subscribe(pingType, events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		ctxErr = ctx.Err()
		return nil
	})))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, bus.Publish(ctx, newEvent(pingType)))
	assert.NoError(t, ctxErr)
}

func TestTransactionalEventBus_FlushNested(t *testing.T) {
	registry := eventbus.NewEventHandlerRegistry(discardLogger())
	bus := eventbus.NewTransactional(registry, 10)

	var pongs int
	require.NoError(t, registry.Subscribe(pingType, events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		return bus.Publish(ctx, newEvent(pongType))
	})))
	require.NoError(t, registry.Subscribe(pongType, events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		pongs++
		return nil
	})))

	require.NoError(t, bus.Publish(context.Background(), newEvent(pingType)))
	require.NoError(t, bus.Flush(context.Background()))

	assert.Equal(t, 1, pongs)
	assert.Equal(t, 0, bus.PendingCount())
	processed := bus.Processed()
	require.Len(t, processed, 2)
	assert.Equal(t, pingType, processed[0].EventType())
	assert.Equal(t, pongType, processed[1].EventType())
}

func TestTransactionalEventBus_DepthExceeded(t *testing.T) {
	registry := eventbus.NewEventHandlerRegistry(discardLogger())
	bus := eventbus.NewTransactional(registry, 3)

	require.NoError(t, registry.Subscribe(pingType, events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		return bus.Publish(ctx, newEvent(pingType))
	})))

	require.NoError(t, bus.Publish(context.Background(), newEvent(pingType)))
	err := bus.Flush(context.Background())

	assert.ErrorIs(t, err, eventbus.ErrEventProcessingDepthExceeded)
}

func TestTransactionalEventBus_HandlerError(t *testing.T) {
	registry := eventbus.NewEventHandlerRegistry(discardLogger())
	bus := eventbus.NewTransactional(registry, 0)
	errHandler := errors.New("handler failed")

	require.NoError(t, registry.Subscribe(pingType, events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		return errHandler
	})))

	require.NoError(t, bus.Publish(context.Background(), newEvent(pingType)))
	assert.ErrorIs(t, bus.Flush(context.Background()), errHandler)
}

func TestTransactionalEventBus_Collect(t *testing.T) {
	registry := eventbus.NewEventHandlerRegistry(discardLogger())
	bus := eventbus.NewTransactional(registry, 0)

	var agg shareddomain.AggregateRoot
	agg.AddDomainEvent(newEvent(pingType))
	agg.AddDomainEvent(newEvent(pongType))

	require.NoError(t, bus.Collect(context.Background(), &agg))

	assert.Equal(t, 2, bus.PendingCount())
	assert.Empty(t, agg.DomainEvents())
}

func TestRegistry_RejectsNilAndSnapshots(t *testing.T) {
	registry := eventbus.NewEventHandlerRegistry(discardLogger())
	assert.ErrorIs(t, registry.Subscribe(pingType, nil), eventbus.ErrNilHandler)

	noop := events.HandlerFunc(func(ctx context.Context, e events.Event) error { return nil })
	require.NoError(t, registry.Subscribe(pingType, noop))
	snapshot := registry.HandlersFor(pingType)
	require.NoError(t, registry.Subscribe(pingType, noop))

	assert.Len(t, snapshot, 1)
	assert.Len(t, registry.HandlersFor(pingType), 2)
	assert.Empty(t, registry.HandlersFor(pongType))
}
