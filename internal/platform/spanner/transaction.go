package spanner

import (
	"context"
	"errors"

	"cloud.google.com/go/spanner"

	"github.com/AlagappanMk24/Gymunity/modules/shared/transaction"
)

// ErrNestedTransaction is returned when a scope is entered while ctx already
// carries a Spanner transaction. Spanner has no savepoints, so a nested scope
// would commit independently of its parent.
var ErrNestedTransaction = errors.New("spanner: nested transaction")

// ReadWriteTransactionScope runs units of work in a read-write transaction.
type ReadWriteTransactionScope struct {
	client *spanner.Client
	opts   spanner.TransactionOptions
}

func NewReadWriteTransactionScope(client *spanner.Client) *ReadWriteTransactionScope {
	return &ReadWriteTransactionScope{
		client: client,
		opts:   spanner.TransactionOptions{TransactionTag: "gymunity"},
	}
}

// Execute commits when fn returns nil. The client re-runs fn when Spanner
// aborts the transaction, so the event buffer and anything else fn mutates
// must be created inside it.
func (s *ReadWriteTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := s.client.ReadWriteTransactionWithOptions(ctx, func(ctx context.Context, tx *spanner.ReadWriteTransaction) error {
		txCtx, err := withReadWriteTx(ctx, tx)
		if err != nil {
			return err
		}
		return fn(txCtx)
	}, s.opts)
	return err
}

// ReadOnlyTransactionScope gives every read inside fn the same timestamp.
type ReadOnlyTransactionScope struct {
	client *spanner.Client
	bound  spanner.TimestampBound
}

// NewReadOnlyTransactionScope reads at a strong timestamp.
func NewReadOnlyTransactionScope(client *spanner.Client) *ReadOnlyTransactionScope {
	return &ReadOnlyTransactionScope{client: client, bound: spanner.StrongRead()}
}

func (s *ReadOnlyTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	tx := s.client.ReadOnlyTransaction().WithTimestampBound(s.bound)
	defer tx.Close()

	txCtx, err := withReadOnlyTx(ctx, tx)
	if err != nil {
		return err
	}
	return fn(txCtx)
}

var (
	_ transaction.Scope = (*ReadWriteTransactionScope)(nil)
	_ transaction.Scope = (*ReadOnlyTransactionScope)(nil)
)
