package etl

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/mohanhh/CloudDatawarehouses/internal/warehouse"
)

// execCall records one Exec invocation against the fake warehouse surface.
type execCall struct {
	sql  string
	args []any
}

// fakeExecer implements warehouse.Execer, recording calls and failing once a
// statement containing failOn is executed.
type fakeExecer struct {
	mu     sync.Mutex
	calls  []execCall
	failOn string
	err    error
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	if f.failOn != "" && strings.Contains(sql, f.failOn) {
		if f.err != nil {
			return f.err
		}
		return errors.New("forced failure")
	}
	return nil
}

func (f *fakeExecer) executed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.sql
	}
	return out
}

func TestRunCopy_SequentialAndOrdered(t *testing.T) {
	t.Parallel()

	f := &fakeExecer{}
	copies := []Statement{
		{Op: "copy staging_events", SQL: "copy staging_events from 's3://b/l'"},
		{Op: "copy staging_songs", SQL: "copy staging_songs from 's3://b/s'"},
	}

	if err := RunCopy(context.Background(), f, copies); err != nil {
		t.Fatalf("RunCopy: %v", err)
	}

	got := f.executed()
	if len(got) != 2 {
		t.Fatalf("executed %d statements, want 2", len(got))
	}
	if !strings.Contains(got[0], "staging_events") || !strings.Contains(got[1], "staging_songs") {
		t.Errorf("statements out of order: %v", got)
	}
}

// A failed COPY must abort the loader immediately: partial staging data must
// not silently feed downstream stages.
func TestRunCopy_AbortsOnFirstFailure(t *testing.T) {
	t.Parallel()

	f := &fakeExecer{failOn: "staging_events"}
	copies := []Statement{
		{Op: "copy staging_events", SQL: "copy staging_events from 's3://b/l'"},
		{Op: "copy staging_songs", SQL: "copy staging_songs from 's3://b/s'"},
	}

	err := RunCopy(context.Background(), f, copies)
	if err == nil {
		t.Fatal("RunCopy succeeded despite COPY failure")
	}
	if kind := warehouse.KindOf(err); kind != warehouse.KindBulkLoad {
		t.Errorf("error kind = %q, want %q", kind, warehouse.KindBulkLoad)
	}
	if n := len(f.executed()); n != 1 {
		t.Errorf("executed %d statements after failure, want 1", n)
	}
}

func TestRunInserts_DimensionsBeforeFact(t *testing.T) {
	t.Parallel()

	f := &fakeExecer{}
	plan := BuildPlan(testConfig())

	if err := RunInserts(context.Background(), f, plan.Inserts); err != nil {
		t.Fatalf("RunInserts: %v", err)
	}

	got := f.executed()
	if len(got) != 3 {
		t.Fatalf("executed %d statements, want 3", len(got))
	}
	fact := -1
	for i, sql := range got {
		if strings.Contains(sql, "into songplays") {
			fact = i
		}
	}
	if fact != len(got)-1 {
		t.Errorf("fact insert at position %d, want last; statements: %v", fact, got)
	}
}

func TestRunInserts_AbortsWithStatementKind(t *testing.T) {
	t.Parallel()

	f := &fakeExecer{failOn: "into artists"}
	plan := BuildPlan(testConfig())

	err := RunInserts(context.Background(), f, plan.Inserts)
	if err == nil {
		t.Fatal("RunInserts succeeded despite statement failure")
	}
	if kind := warehouse.KindOf(err); kind != warehouse.KindStatement {
		t.Errorf("error kind = %q, want %q", kind, warehouse.KindStatement)
	}
	// songs insert ran, artists failed, songplays never executed.
	if n := len(f.executed()); n != 2 {
		t.Errorf("executed %d statements, want 2", n)
	}
}

// fakeRow implements pgx.Row for the unmatched count.
type fakeRow struct {
	n   int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if p, ok := dest[0].(*int64); ok {
		*p = r.n
	}
	return nil
}

type fakeRowQuerier struct {
	row fakeRow
}

func (f fakeRowQuerier) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return f.row
}

func TestCountUnmatched(t *testing.T) {
	t.Parallel()

	n, err := CountUnmatched(context.Background(), fakeRowQuerier{row: fakeRow{n: 23}}, "select count(*)")
	if err != nil {
		t.Fatalf("CountUnmatched: %v", err)
	}
	if n != 23 {
		t.Errorf("count = %d, want 23", n)
	}

	_, err = CountUnmatched(context.Background(), fakeRowQuerier{row: fakeRow{err: errors.New("boom")}}, "select count(*)")
	if err == nil {
		t.Fatal("CountUnmatched swallowed scan error")
	}
}
