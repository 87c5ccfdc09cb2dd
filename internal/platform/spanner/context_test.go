package spanner

import (
	"context"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTransactionFromContext(t *testing.T) {
	_, ok := ReadTransactionFromContext(context.Background())
	assert.False(t, ok)

	ctx, err := withReadOnlyTx(context.Background(), &spanner.ReadOnlyTransaction{})
	require.NoError(t, err)
	_, ok = ReadTransactionFromContext(ctx)
	assert.True(t, ok)
	_, ok = ReadWriteTxFromContext(ctx)
	assert.False(t, ok, "a snapshot is not writable")
}

func TestNestedTransactionRejected(t *testing.T) {
	ctx, err := withReadWriteTx(context.Background(), &spanner.ReadWriteTransaction{})
	require.NoError(t, err)

	_, err = withReadWriteTx(ctx, &spanner.ReadWriteTransaction{})
	assert.ErrorIs(t, err, ErrNestedTransaction)

	_, err = withReadOnlyTx(ctx, &spanner.ReadOnlyTransaction{})
	assert.ErrorIs(t, err, ErrNestedTransaction)
}

func TestConfigDSN(t *testing.T) {
	cfg := Config{ProjectID: "p", InstanceID: "i", DatabaseID: "d"}
	assert.Equal(t, "projects/p/instances/i/databases/d", cfg.DSN())
}
