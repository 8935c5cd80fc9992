package etl

import (
	"context"
	"log"
	"time"

	"github.com/mohanhh/CloudDatawarehouses/internal/warehouse"
)

// RunCopy executes the bulk-load statements sequentially. Each statement
// commits on its own; there is no retry. The first failure aborts and is
// classified KindBulkLoad so the caller knows staging may be partial and must
// not feed downstream stages.
func RunCopy(ctx context.Context, x warehouse.Execer, copies []Statement) error {
	for _, stmt := range copies {
		start := time.Now()
		if err := x.Exec(ctx, stmt.SQL); err != nil {
			return warehouse.Classify(warehouse.KindBulkLoad, stmt.Op, err)
		}
		log.Printf("loader: %s done in %s", stmt.Op, time.Since(start).Truncate(time.Millisecond))
	}
	return nil
}
