// Package transaction decorates transaction scopes with tracing.
package transaction

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AlagappanMk24/Gymunity/modules/shared/transaction"
)

// TracedScope wraps a Scope and records one span per transaction.
type TracedScope struct {
	inner  transaction.Scope
	tracer trace.Tracer
	store  string
}

// WithTracing decorates inner. store names the backing database in span attributes.
func WithTracing(inner transaction.Scope, store string) *TracedScope {
	return &TracedScope{
		inner:  inner,
		tracer: otel.Tracer("github.com/AlagappanMk24/Gymunity/internal/platform/transaction"),
		store:  store,
	}
}

// Execute implements transaction.Scope.
func (s *TracedScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "transaction", trace.WithAttributes(attribute.String("db.system", s.store)))
	defer span.End()

	if err := s.inner.Execute(ctx, fn); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Compile-time interface check.
var _ transaction.Scope = (*TracedScope)(nil)
