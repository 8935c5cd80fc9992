// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the warehouse ETL job.
//
// The package is intentionally minimal and opinionated:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data.
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - Stage code depends only on this interface; concrete metric systems stay
//     isolated in subpackages (currently prompush for a Prometheus
//     Pushgateway).
//
// The primary use is instrumentation of the job's stages (bulk load,
// materialize, latest-state passes) plus a handful of row-level counts, most
// importantly the count of events silently dropped by the fact join.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a duration-style value in seconds.
	ObserveDuration(name string, seconds float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)        {}
func (nopBackend) ObserveDuration(name string, seconds float64, labels Labels) {}
func (nopBackend) Flush() error                                                { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep measures one stage execution: latency plus success/failure.
//
// Steps used by the job: "bulk_load", "materialize", "fetch_events",
// "user_pass", "time_pass".
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter("dwh_step_total", 1, lbls)
	backend.ObserveDuration("dwh_step_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given job and kind.
//
// Kinds used by the job: "events", "users", "time_rows", "unmatched".
func RecordRows(job, kind string, delta float64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("dwh_records_total", delta, Labels{
		"job":  job,
		"kind": kind,
	})
}
