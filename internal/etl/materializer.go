package etl

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mohanhh/CloudDatawarehouses/internal/warehouse"
)

// RowQuerier is the single-row query surface; *warehouse.Warehouse satisfies
// it. pgx.Row is just Scan(dest ...any) error, so fakes are one line.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RunInserts executes the set-based materializer statements in order,
// dimensions before the fact that references them. Per-statement commit, no
// retry; the first failure aborts with KindStatement.
func RunInserts(ctx context.Context, x warehouse.Execer, inserts []Statement) error {
	for _, stmt := range inserts {
		start := time.Now()
		if err := x.Exec(ctx, stmt.SQL); err != nil {
			return warehouse.Classify(warehouse.KindStatement, stmt.Op, err)
		}
		log.Printf("materializer: %s done in %s", stmt.Op, time.Since(start).Truncate(time.Millisecond))
	}
	return nil
}

// CountUnmatched returns the number of qualifying events the exact fact join
// dropped. The join is intentionally lossy, so the count is the run's
// visibility into that loss.
func CountUnmatched(ctx context.Context, q RowQuerier, query string) (int64, error) {
	var n int64
	if err := q.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unmatched events: %w", err)
	}
	return n, nil
}
