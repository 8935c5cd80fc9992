// Error taxonomy for warehouse failures. The job has four failure categories
// with different operator responses, so every error leaving this package (or
// wrapped by a stage) carries an explicit Kind:
//
//   - KindConnect: the cluster is unreachable or credentials are bad. Nothing
//     ran; fix connectivity and re-run.
//   - KindBulkLoad: a COPY failed (bad source path, storage role denied,
//     malformed records). Staging may be partially loaded; downstream stages
//     were not run.
//   - KindStatement: a set-based materializer statement failed.
//   - KindRow: a row-level insert in a latest-state pass failed; that pass was
//     rolled back, earlier stages remain committed.
package warehouse

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies a warehouse failure.
type Kind string

const (
	KindConnect   Kind = "connect"
	KindBulkLoad  Kind = "bulk-load"
	KindStatement Kind = "statement"
	KindRow       Kind = "row"
)

// Error wraps a driver error with its failure category and the operation that
// produced it.
type Error struct {
	Kind Kind
	Op   string // e.g. "copy staging_events", "insert users"
	Err  error
}

// Error renders the category, operation, and cause. When the cause is a
// Postgres error with detail, the SQLSTATE and detail are included the way an
// operator would want to see them.
func (e *Error) Error() string {
	var pgErr *pgconn.PgError
	if errors.As(e.Err, &pgErr) && pgErr.Detail != "" {
		return fmt.Sprintf("%s: %s: %s (%s)", e.Kind, e.Op, pgErr.Detail, pgErr.SQLState())
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap exposes the cause for errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// Classify wraps err with a kind and operation. A nil err returns nil so call
// sites can wrap unconditionally.
func Classify(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind attached to err, or "" when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
