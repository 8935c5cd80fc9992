// Package etl implements the three sequential stages of the warehouse job:
// bulk load (COPY from S3 into staging), set-based materialization of the
// songs/artists dimensions and the songplays fact, and the latest-state passes
// that maintain the users and time dimensions row by row.
//
// Stages are plain functions over small interfaces (warehouse.Execer, Querier)
// so tests can drive them with fakes; SQL text comes in through a Plan built
// once from configuration. Control flow is strictly sequential and the first
// failure aborts the run.
package etl

import (
	"fmt"

	"github.com/zeebo/xxh3"

	"github.com/mohanhh/CloudDatawarehouses/internal/config"
	"github.com/mohanhh/CloudDatawarehouses/internal/schema"
)

// Statement pairs executable SQL with a short operation name used in logs,
// metrics, and error classification.
type Statement struct {
	Op  string
	SQL string
}

// Plan is the fully rendered statement set for one run. Building it up front
// keeps config interpolation in one place and lets the fingerprint identify
// the exact SQL a run executed.
type Plan struct {
	Job string

	// Copies are the bulk-load statements, executed in order by the loader.
	Copies []Statement

	// Inserts are the set-based materializer statements, dimensions first.
	Inserts []Statement

	// EventsQuery feeds the latest-state processor.
	EventsQuery string

	// UnmatchedQuery counts qualifying events dropped by the fact join.
	UnmatchedQuery string
}

// BuildPlan renders all run SQL from validated configuration.
func BuildPlan(cfg config.Config) Plan {
	return Plan{
		Job: cfg.Job,
		Copies: []Statement{
			{
				Op:  "copy " + schema.StagingEventsTable,
				SQL: schema.CopyEvents(cfg.S3.LogData, cfg.S3.LogJSONPath, cfg.IAMRole.ARN, cfg.S3.Region),
			},
			{
				Op:  "copy " + schema.StagingSongsTable,
				SQL: schema.CopySongs(cfg.S3.SongData, cfg.IAMRole.ARN, cfg.S3.Region),
			},
		},
		Inserts: []Statement{
			{Op: "insert " + schema.SongsTable, SQL: schema.InsertSongs},
			{Op: "insert " + schema.ArtistsTable, SQL: schema.InsertArtists},
			{Op: "insert " + schema.SongplaysTable, SQL: schema.InsertSongplays},
		},
		EventsQuery:    schema.SelectEvents,
		UnmatchedQuery: schema.CountUnmatchedEvents,
	}
}

// Fingerprint hashes every statement in the plan into a short stable id.
// Logged at run start so operators can tell configurations apart when
// comparing runs or metrics.
func (p Plan) Fingerprint() string {
	h := xxh3.New()
	for _, s := range p.Copies {
		_, _ = h.WriteString(s.SQL)
		_, _ = h.WriteString("\x00")
	}
	for _, s := range p.Inserts {
		_, _ = h.WriteString(s.SQL)
		_, _ = h.WriteString("\x00")
	}
	_, _ = h.WriteString(p.EventsQuery)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(p.UnmatchedQuery)
	return fmt.Sprintf("%016x", h.Sum64())
}
