package eventbus_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlagappanMk24/Gymunity/internal/platform/eventbus"
	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
)

type passthroughScope struct {
	err error
}

func (s passthroughScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return s.err
}

type recordingPublisher struct {
	published []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.published = append(p.published, e)
	return nil
}

func TestUnitOfWork_PublishesAfterCommit(t *testing.T) {
	registry := eventbus.NewEventHandlerRegistry(discardLogger())
	publisher := &recordingPublisher{}

	var inTx int
	require.NoError(t, registry.Subscribe(pingType, events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		inTx++
		assert.Empty(t, publisher.published, "post-commit publish must wait for the flush")
		return nil
	})))

	uow := eventbus.NewUnitOfWork(passthroughScope{}, registry, publisher)
	err := uow.Execute(context.Background(), "test", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		return bus.Publish(ctx, newEvent(pingType))
	})

	require.NoError(t, err)
	assert.Equal(t, 1, inTx)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, pingType, publisher.published[0].EventType())
}

func TestUnitOfWork_CommitFailureSkipsPublish(t *testing.T) {
	registry := eventbus.NewEventHandlerRegistry(discardLogger())
	publisher := &recordingPublisher{}
	errCommit := errors.New("commit failed")

	uow := eventbus.NewUnitOfWork(passthroughScope{err: errCommit}, registry, publisher)
	err := uow.Execute(context.Background(), "test", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		return bus.Publish(ctx, newEvent(pingType))
	})

	assert.ErrorIs(t, err, errCommit)
	assert.Empty(t, publisher.published)
}

func TestUnitOfWork_FnErrorSkipsFlush(t *testing.T) {
	registry := eventbus.NewEventHandlerRegistry(discardLogger())
	errFn := errors.New("business rule")
	require.NoError(t, registry.Subscribe(pingType, events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		t.Fatal("handler must not run when the use case fails")
		return nil
	})))

	uow := eventbus.NewUnitOfWork(passthroughScope{}, registry, nil)
	err := uow.Execute(context.Background(), "test", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		_ = bus.Publish(ctx, newEvent(pingType))
		return errFn
	})

	assert.ErrorIs(t, err, errFn)
}

func TestUnitOfWork_HandlersRaiseFollowUpEvents(t *testing.T) {
	registry := eventbus.NewEventHandlerRegistry(discardLogger())
	publisher := &recordingPublisher{}

	require.NoError(t, registry.Subscribe(pingType, events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		bus, ok := eventbus.BusFromContext(ctx)
		require.True(t, ok)
		return bus.Publish(ctx, newEvent(pongType))
	})))

	uow := eventbus.NewUnitOfWork(passthroughScope{}, registry, publisher)
	err := uow.Execute(context.Background(), "test", func(ctx context.Context, bus *eventbus.TransactionalEventBus) error {
		return bus.Publish(ctx, newEvent(pingType))
	})

	require.NoError(t, err)
	require.Len(t, publisher.published, 2)
	assert.Equal(t, pongType, publisher.published[1].EventType())
}

func TestBusFromContext_OutsideUnitOfWork(t *testing.T) {
	_, ok := eventbus.BusFromContext(context.Background())
	assert.False(t, ok)
}
