package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Event is one staging_events row as the latest-state processor sees it:
// already filtered to qualifying actions and ordered newest first. Staging is
// untyped, so every column that can be null in the raw logs is a pointer; pgx
// binds the pointee (or NULL) natively, which keeps numeric adaptation out of
// the business logic.
type Event struct {
	Artist        *string
	Auth          *string
	FirstName     *string
	Gender        *string
	ItemInSession *int32
	LastName      *string
	Length        *float64
	Level         *string
	Location      *string
	Method        *string
	Page          string
	Registration  *float64
	SessionID     *int64
	Song          *string
	Status        *int32
	TS            int64
	UserAgent     *string
	UserID        *int64
}

// Querier is the read surface FetchEvents needs; *warehouse.Warehouse
// satisfies it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// FetchEvents pulls the full qualifying staging event set into memory. The
// whole-table materialization is deliberate: both latest-state passes iterate
// the same snapshot, and the qualifying subset of a run's logs fits easily.
func FetchEvents(ctx context.Context, q Querier, query string) ([]Event, error) {
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select staging events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(
			&ev.Artist, &ev.Auth, &ev.FirstName, &ev.Gender, &ev.ItemInSession,
			&ev.LastName, &ev.Length, &ev.Level, &ev.Location, &ev.Method,
			&ev.Page, &ev.Registration, &ev.SessionID, &ev.Song, &ev.Status,
			&ev.TS, &ev.UserAgent, &ev.UserID,
		); err != nil {
			return nil, fmt.Errorf("scan staging event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read staging events: %w", err)
	}
	return events, nil
}

// TimeParts is one time-dimension row: an epoch-ms timestamp decomposed into
// calendar components.
type TimeParts struct {
	StartTime int64 // epoch milliseconds, the dimension key
	Hour      int
	Day       int // day of month
	Week      int // ISO 8601 week number
	Month     int
	Year      int
	Weekday   int // Monday = 0 .. Sunday = 6
}

// DecomposeTS derives the calendar components of an epoch-ms timestamp in UTC.
// Pure and deterministic: equal inputs always yield equal parts.
func DecomposeTS(ms int64) TimeParts {
	t := time.UnixMilli(ms).UTC()
	_, week := t.ISOWeek()
	return TimeParts{
		StartTime: ms,
		Hour:      t.Hour(),
		Day:       t.Day(),
		Week:      week,
		Month:     int(t.Month()),
		Year:      t.Year(),
		Weekday:   (int(t.Weekday()) + 6) % 7,
	}
}
