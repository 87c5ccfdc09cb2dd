package eventbus

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AlagappanMk24/Gymunity/modules/shared/events"
	"github.com/AlagappanMk24/Gymunity/modules/shared/transaction"
)

var tracer = otel.Tracer("github.com/AlagappanMk24/Gymunity/internal/platform/eventbus")

// UnitOfWork runs a use case inside a transaction, dispatches the events it
// raised to in-transaction handlers before commit, and hands every
// dispatched event to the post-commit publisher once the commit succeeded.
type UnitOfWork struct {
	scope     transaction.Scope
	registry  HandlerRegistry
	publisher events.Publisher
	maxDepth  int
}

// MaxEventsPerUnit bounds the events one unit of work may dispatch. Batch
// jobs such as the subscription sweep raise one event per aggregate.
const MaxEventsPerUnit = 1000

// NewUnitOfWork wires a unit of work. publisher may be nil.
func NewUnitOfWork(scope transaction.Scope, registry HandlerRegistry, publisher events.Publisher) *UnitOfWork {
	return &UnitOfWork{scope: scope, registry: registry, publisher: publisher, maxDepth: MaxEventsPerUnit}
}

// Execute runs fn. fn records events on bus; they are flushed before commit.
func (u *UnitOfWork) Execute(ctx context.Context, name string, fn func(ctx context.Context, bus *TransactionalEventBus) error) error {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()

	var committed []events.Event
	err := u.scope.Execute(ctx, func(ctx context.Context) error {
		// Created inside the closure so a retried transaction starts clean.
		bus := NewTransactional(u.registry, u.maxDepth)
		ctx = withBus(ctx, bus)
		if err := fn(ctx, bus); err != nil {
			return err
		}
		if err := bus.Flush(ctx); err != nil {
			return fmt.Errorf("flushing events: %w", err)
		}
		committed = bus.Processed()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.Int("events.count", len(committed)))
	if u.publisher == nil {
		return nil
	}
	for _, event := range committed {
		if err := u.publisher.Publish(ctx, event); err != nil {
			return fmt.Errorf("publishing %s: %w", event.EventType(), err)
		}
	}
	return nil
}
