// Package postgres provides the PostgreSQL connection, transaction scope
// and migration runner shared by every module repository.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/avast/retry-go/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Config holds PostgreSQL connection configuration.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectAttempts uint
	ConnectDelay    time.Duration
}

// DB wraps sqlx.DB so repositories transparently join the transaction
// carried by the context.
type DB struct {
	*sqlx.DB
}

// NewDB wraps an existing connection, e.g. one opened by sqlmock.
func NewDB(db *sqlx.DB) *DB {
	return &DB{DB: db}
}

// Connect opens the pool and retries until the server accepts connections.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	attempts := cfg.ConnectAttempts
	if attempts == 0 {
		attempts = 10
	}
	delay := cfg.ConnectDelay
	if delay == 0 {
		delay = 2 * time.Second
	}

	var db *sqlx.DB
	err := retry.Do(
		func() error {
			var err error
			db, err = sqlx.ConnectContext(ctx, "postgres", cfg.DSN)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("database not ready, retrying", slog.Uint64("attempt", uint64(n+1)), slog.Any("error", err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return &DB{DB: db}, nil
}

// Executor is the query surface shared by *sqlx.DB and *sqlx.Tx.
type Executor interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// Conn returns the transaction active in ctx, or the pool.
func (db *DB) Conn(ctx context.Context) Executor {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return db.DB
}

// Builder returns a squirrel statement builder using $n placeholders.
func Builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// Get runs a squirrel query expecting one row.
func (db *DB) Get(ctx context.Context, dest interface{}, q sq.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	return db.Conn(ctx).GetContext(ctx, dest, query, args...)
}

// Select runs a squirrel query into a slice.
func (db *DB) Select(ctx context.Context, dest interface{}, q sq.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	return db.Conn(ctx).SelectContext(ctx, dest, query, args...)
}

// Exec runs a squirrel statement and returns the number of affected rows.
func (db *DB) Exec(ctx context.Context, q sq.Sqlizer) (int64, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("building statement: %w", err)
	}
	res, err := db.Conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count runs SELECT COUNT(*) over the given filtered builder.
func (db *DB) Count(ctx context.Context, q sq.SelectBuilder) (int, error) {
	var n int
	if err := db.Get(ctx, &n, q); err != nil {
		return 0, err
	}
	return n, nil
}
