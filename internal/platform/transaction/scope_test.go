package transaction_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformtx "github.com/AlagappanMk24/Gymunity/internal/platform/transaction"
	"github.com/AlagappanMk24/Gymunity/modules/shared/transaction"
)

func passthrough() transaction.Func {
	return func(ctx context.Context, fn func(ctx context.Context) error) error {
		return fn(ctx)
	}
}

func TestExecuteWithResult_Success(t *testing.T) {
	result, err := transaction.ExecuteWithResult(context.Background(), passthrough(), func(ctx context.Context) (string, error) {
		return "success", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "success", result)
}

func TestExecuteWithResult_FnError(t *testing.T) {
	errFn := errors.New("fn error")
	result, err := transaction.ExecuteWithResult(context.Background(), passthrough(), func(ctx context.Context) (string, error) {
		return "", errFn
	})

	assert.ErrorIs(t, err, errFn)
	assert.Empty(t, result)
}

func TestExecuteWithResult_TransactionError(t *testing.T) {
	errTx := errors.New("transaction error")
	scope := transaction.Func(func(ctx context.Context, fn func(ctx context.Context) error) error {
		_ = fn(ctx) // fn succeeds but the commit fails
		return errTx
	})

	_, err := transaction.ExecuteWithResult(context.Background(), scope, func(ctx context.Context) (int, error) {
		return 42, nil
	})

	assert.ErrorIs(t, err, errTx)
}

func TestTracedScope_PropagatesResult(t *testing.T) {
	traced := platformtx.WithTracing(passthrough(), "postgresql")

	called := false
	err := traced.Execute(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)

	errFn := errors.New("rollback")
	err = traced.Execute(context.Background(), func(ctx context.Context) error { return errFn })
	assert.ErrorIs(t, err, errFn)
}
