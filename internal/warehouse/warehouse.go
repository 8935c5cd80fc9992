// Package warehouse wraps the cluster connection behind a small surface the
// ETL stages consume. It uses pgx v5 through a pgxpool; Redshift speaks the
// Postgres wire protocol, so no separate driver is needed.
//
// The wrapper stays deliberately thin: one Exec, one Query, one QueryRow, and
// an explicit Begin for the passes that need whole-pass atomicity. Statement
// text lives in internal/schema; this package never composes SQL.
package warehouse

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Execer is the minimal statement-execution surface handed to ETL stages.
// *Warehouse satisfies it (autocommit per statement), and WithinTx hands out a
// transactional implementation. Tests fake it with a function or a recorder.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) error
}

// Warehouse is a live cluster connection pool.
type Warehouse struct {
	pool *pgxpool.Pool
}

// Ensure the pool-backed implementations satisfy the stage surface.
var (
	_ Execer = (*Warehouse)(nil)
	_ Execer = txExecer{}
)

// Open connects to the cluster and verifies the connection with a ping. It
// returns the Warehouse and a close function for cleanup.
//
// Connection failures are classified KindConnect: nothing has run yet and the
// operator response is to fix host/credentials, not inspect tables.
func Open(ctx context.Context, dsn string) (*Warehouse, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, Classify(KindConnect, "parse dsn", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, Classify(KindConnect, "ping cluster", err)
	}
	closeFn := func() { pool.Close() }
	return &Warehouse{pool: pool}, closeFn, nil
}

// Exec runs a single statement. Each Exec commits on its own (driver
// autocommit), which is exactly the per-statement commit the loader and
// materializer contracts require.
func (w *Warehouse) Exec(ctx context.Context, sql string, args ...any) error {
	if _, err := w.pool.Exec(ctx, sql, args...); err != nil {
		return err
	}
	return nil
}

// Query runs a result-returning statement. The caller owns the rows.
func (w *Warehouse) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return w.pool.Query(ctx, sql, args...)
}

// QueryRow runs a single-row query.
func (w *Warehouse) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return w.pool.QueryRow(ctx, sql, args...)
}

// WithinTx runs fn inside one transaction. Commit happens only when fn returns
// nil; any error rolls the whole transaction back and is returned unchanged.
// The latest-state passes use this for whole-pass atomicity.
func (w *Warehouse) WithinTx(ctx context.Context, fn func(x Execer) error) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(txExecer{tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// txExecer adapts pgx.Tx to the Execer surface, discarding the command tag.
type txExecer struct {
	tx pgx.Tx
}

func (t txExecer) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := t.tx.Exec(ctx, sql, args...)
	return err
}
