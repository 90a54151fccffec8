package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecordsAssignments(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	p.IncAssignment("Kenya", false, true)
	p.IncAssignment("Kenya", false, true)
	p.IncAssignment("Kenya", true, false)

	require.Equal(t, 2.0, testutil.ToFloat64(p.assignments.WithLabelValues("Kenya", "false", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(p.assignments.WithLabelValues("Kenya", "true", "failed")))
}

func TestPrometheusRecordsRunsAndFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "")

	p.ObserveRun(3*time.Second, true)
	p.ObserveRun(time.Second, false)
	p.IncLookupFailure("Uganda", StageWorkload)
	p.IncNoCandidate("Uganda")

	require.Equal(t, 1.0, testutil.ToFloat64(p.runs.WithLabelValues("ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(p.runs.WithLabelValues("failed")))
	require.Equal(t, 1.0, testutil.ToFloat64(p.lookupFailures.WithLabelValues("Uganda", StageWorkload)))
	require.Equal(t, 1.0, testutil.ToFloat64(p.noCandidate.WithLabelValues("Uganda")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	require.Contains(t, names, "autoassign_run_duration_seconds")
}
