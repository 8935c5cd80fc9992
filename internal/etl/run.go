package etl

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mohanhh/CloudDatawarehouses/internal/metrics"
	"github.com/mohanhh/CloudDatawarehouses/internal/warehouse"
)

// DB is the full warehouse surface Run needs. *warehouse.Warehouse satisfies
// it; tests supply a fake.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	WithinTx(ctx context.Context, fn func(x warehouse.Execer) error) error
}

// Summary reports what a completed run did. Sizes, not success flags: a Run
// either returns a full Summary or an error.
type Summary struct {
	Events    int   // qualifying staging events fetched for the latest-state passes
	Users     int   // rows inserted into users (distinct user ids)
	TimeRows  int   // rows inserted into time (distinct timestamps)
	Unmatched int64 // qualifying events dropped by the exact fact join
}

// fetchEventsFn is a test seam; production points at FetchEvents.
var fetchEventsFn = FetchEvents

// Run executes the whole job: bulk load, set-based materialization, then the
// latest-state passes. Stages run strictly in order and the first failure
// aborts the run with its stage's error kind attached.
//
// Commit granularity, stage by stage: the loader and materializer commit per
// statement (driver autocommit); each latest-state pass runs inside one
// transaction, so a mid-pass failure rolls that pass back completely while
// earlier stages stay committed.
func Run(ctx context.Context, db DB, plan Plan) (Summary, error) {
	var sum Summary

	log.Printf("run: job=%s plan=%s", plan.Job, plan.Fingerprint())

	start := time.Now()
	err := RunCopy(ctx, db, plan.Copies)
	metrics.RecordStep(plan.Job, "bulk_load", err, time.Since(start))
	if err != nil {
		return sum, err
	}

	start = time.Now()
	err = RunInserts(ctx, db, plan.Inserts)
	metrics.RecordStep(plan.Job, "materialize", err, time.Since(start))
	if err != nil {
		return sum, err
	}

	// Observability only: a failed count must not fail a run whose tables are
	// already correct.
	if n, err := CountUnmatched(ctx, db, plan.UnmatchedQuery); err != nil {
		log.Printf("materializer: unmatched count unavailable: %v", err)
	} else {
		sum.Unmatched = n
		metrics.RecordRows(plan.Job, "unmatched", float64(n))
		if n > 0 {
			log.Printf("materializer: %d qualifying events had no catalog match and were dropped from songplays", n)
		}
	}

	start = time.Now()
	events, err := fetchEventsFn(ctx, db, plan.EventsQuery)
	metrics.RecordStep(plan.Job, "fetch_events", err, time.Since(start))
	if err != nil {
		return sum, err
	}
	sum.Events = len(events)
	metrics.RecordRows(plan.Job, "events", float64(len(events)))

	start = time.Now()
	err = db.WithinTx(ctx, func(x warehouse.Execer) error {
		n, err := UserPass(ctx, x, events)
		sum.Users = n
		return err
	})
	metrics.RecordStep(plan.Job, "user_pass", err, time.Since(start))
	if err != nil {
		sum.Users = 0 // pass rolled back
		return sum, err
	}
	metrics.RecordRows(plan.Job, "users", float64(sum.Users))

	start = time.Now()
	err = db.WithinTx(ctx, func(x warehouse.Execer) error {
		n, err := TimePass(ctx, x, events)
		sum.TimeRows = n
		return err
	})
	metrics.RecordStep(plan.Job, "time_pass", err, time.Since(start))
	if err != nil {
		sum.TimeRows = 0
		return sum, err
	}
	metrics.RecordRows(plan.Job, "time_rows", float64(sum.TimeRows))

	log.Printf("run: done events=%d users=%d time_rows=%d unmatched=%d",
		sum.Events, sum.Users, sum.TimeRows, sum.Unmatched)
	return sum, nil
}
