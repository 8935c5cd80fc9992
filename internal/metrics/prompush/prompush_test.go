package prompush

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/mohanhh/CloudDatawarehouses/internal/metrics"
)

// readCounterValue reads the current value of a Counter for assertions.
func readCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Counter.Write() error = %v", err)
	}
	if m.GetCounter() == nil {
		t.Fatalf("metric did not contain Counter value")
	}
	return m.GetCounter().GetValue()
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		jobName     string
		gatewayURL  string
		wantErr     bool
		wantJobName string
	}{
		{
			name:       "missing gateway URL returns error",
			jobName:    "sparkify_dwh",
			gatewayURL: "",
			wantErr:    true,
		},
		{
			name:        "empty job name uses default",
			jobName:     "",
			gatewayURL:  "http://pushgateway:9091",
			wantErr:     false,
			wantJobName: "dwh",
		},
		{
			name:        "explicit job name is preserved",
			jobName:     "sparkify_dwh",
			gatewayURL:  "http://pushgateway:9091",
			wantErr:     false,
			wantJobName: "sparkify_dwh",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := NewBackend(tc.jobName, tc.gatewayURL)
			if tc.wantErr {
				if err == nil {
					t.Fatal("NewBackend succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBackend: %v", err)
			}
			if b.jobName != tc.wantJobName {
				t.Errorf("jobName = %q, want %q", b.jobName, tc.wantJobName)
			}
		})
	}
}

func TestIncCounter_RoutesByName(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("sparkify_dwh", "http://pushgateway:9091")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	b.IncCounter("dwh_step_total", 1, metrics.Labels{"step": "bulk_load", "status": "success"})
	b.IncCounter("dwh_step_total", 1, metrics.Labels{"step": "bulk_load", "status": "success"})
	b.IncCounter("dwh_records_total", 42, metrics.Labels{"kind": "unmatched"})
	b.IncCounter("no_such_metric", 99, nil)

	if got := readCounterValue(t, b.stepCounter.WithLabelValues("bulk_load", "success")); got != 2 {
		t.Errorf("step counter = %v, want 2", got)
	}
	if got := readCounterValue(t, b.recordCounter.WithLabelValues("unmatched")); got != 42 {
		t.Errorf("record counter = %v, want 42", got)
	}
}

func TestObserveDuration_IgnoresUnknownNames(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("sparkify_dwh", "http://pushgateway:9091")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	// Must not panic or register anything under a foreign name.
	b.ObserveDuration("unrelated_seconds", 1.5, metrics.Labels{"step": "x", "status": "y"})
	b.ObserveDuration("dwh_step_duration_seconds", 0.25, metrics.Labels{"step": "user_pass", "status": "success"})

	m := &dto.Metric{}
	obs, ok := b.stepDuration.WithLabelValues("user_pass", "success").(prometheus.Metric)
	if !ok {
		t.Fatal("SummaryVec observer does not implement prometheus.Metric")
	}
	if err := obs.Write(m); err != nil {
		t.Fatalf("Summary.Write() error = %v", err)
	}
	if got := m.GetSummary().GetSampleCount(); got != 1 {
		t.Errorf("summary sample count = %d, want 1", got)
	}
}
