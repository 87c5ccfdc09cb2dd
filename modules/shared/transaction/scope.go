// Package transaction defines the transactional boundary application
// handlers run in, independent of the database behind it.
package transaction

import "context"

// Scope runs fn atomically. fn receives a context carrying the transaction;
// repositories look it up there and join it. Returning an error rolls back.
//
// PostgreSQL and Spanner both provide implementations. Spanner may re-run fn
// after an abort, so fn must not have side effects outside the database.
type Scope interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

// Func adapts a plain function to Scope.
type Func func(ctx context.Context, fn func(ctx context.Context) error) error

func (f Func) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return f(ctx, fn)
}

// ExecuteWithResult is Execute for callbacks that produce a value. The zero
// value is returned alongside any error.
func ExecuteWithResult[T any](ctx context.Context, scope Scope, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := scope.Execute(ctx, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
