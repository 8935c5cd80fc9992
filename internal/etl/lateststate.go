package etl

import (
	"context"

	"github.com/mohanhh/CloudDatawarehouses/internal/schema"
	"github.com/mohanhh/CloudDatawarehouses/internal/warehouse"
)

// UserPass maintains the users dimension under latest-wins semantics. The
// warehouse has no native upsert, so the pass relies on the input order:
// events arrive sorted by timestamp strictly descending, a seen-set keyed by
// user id accepts only the first insert attempt per user, and that first row
// is by construction the user's most recent state.
//
// Rows with a missing user id are skipped. Any insert failure aborts the pass
// with KindRow; the caller runs the pass inside one transaction, so an abort
// leaves the users table untouched by this run.
func UserPass(ctx context.Context, x warehouse.Execer, events []Event) (int, error) {
	seen := make(map[int64]struct{}, len(events))
	inserted := 0
	for _, ev := range events {
		if ev.UserID == nil {
			continue
		}
		id := *ev.UserID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if err := x.Exec(ctx, schema.InsertUser, id, ev.FirstName, ev.LastName, ev.Gender, ev.Level); err != nil {
			return inserted, warehouse.Classify(warehouse.KindRow, "insert "+schema.UsersTable, err)
		}
		inserted++
	}
	return inserted, nil
}

// TimePass maintains the time dimension: one row per distinct event timestamp,
// decomposed into calendar components. Order does not matter here — the key is
// the timestamp itself and the decomposition is deterministic — so the pass
// reuses whatever order the events arrived in.
func TimePass(ctx context.Context, x warehouse.Execer, events []Event) (int, error) {
	seen := make(map[int64]struct{}, len(events))
	inserted := 0
	for _, ev := range events {
		if _, ok := seen[ev.TS]; ok {
			continue
		}
		seen[ev.TS] = struct{}{}
		tp := DecomposeTS(ev.TS)
		if err := x.Exec(ctx, schema.InsertTime,
			tp.StartTime, tp.Hour, tp.Day, tp.Week, tp.Month, tp.Year, tp.Weekday,
		); err != nil {
			return inserted, warehouse.Classify(warehouse.KindRow, "insert "+schema.TimeTable, err)
		}
		inserted++
	}
	return inserted, nil
}
