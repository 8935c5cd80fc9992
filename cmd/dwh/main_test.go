package main

import "testing"

func TestResolveMetricsBackend(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		flagVal string
		envVal  string
		want    string
	}{
		{"flag wins over env", "none", "pushgateway", "none"},
		{"env used when flag unset", "", "none", "none"},
		{"default when both unset", "", "", "pushgateway"},
		{"flag alone", "pushgateway", "", "pushgateway"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := resolveMetricsBackend(tc.flagVal, tc.envVal); got != tc.want {
				t.Errorf("resolveMetricsBackend(%q, %q) = %q, want %q", tc.flagVal, tc.envVal, got, tc.want)
			}
		})
	}
}
