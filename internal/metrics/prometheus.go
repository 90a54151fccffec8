package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements Recorder with Prometheus collectors.
type Prometheus struct {
	runs           *prometheus.CounterVec
	runDuration    prometheus.Histogram
	assignments    *prometheus.CounterVec
	lookupFailures *prometheus.CounterVec
	noCandidate    *prometheus.CounterVec
}

var _ Recorder = (*Prometheus)(nil)

// NewPrometheus registers the collectors on reg (prometheus.DefaultRegisterer
// when nil) under namespace ("autoassign" when empty).
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "autoassign"
	}

	p := &Prometheus{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Assignment runs by result (ok, failed).",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of one assignment run in seconds.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1s .. ~8.5m
		}),
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assignments_total",
			Help:      "Assignment mutations dispatched by region, kind and outcome.",
		}, []string{"region", "reassignment", "result"}),
		lookupFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_failures_total",
			Help:      "Failed record store lookups by region and stage.",
		}, []string{"region", "stage"}),
		noCandidate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "no_candidate_total",
			Help:      "Complaints skipped because no inspector was left after exclusion.",
		}, []string{"region"}),
	}
	reg.MustRegister(p.runs, p.runDuration, p.assignments, p.lookupFailures, p.noCandidate)
	return p
}

func (p *Prometheus) ObserveRun(duration time.Duration, ok bool) {
	p.runs.WithLabelValues(result(ok)).Inc()
	p.runDuration.Observe(duration.Seconds())
}

func (p *Prometheus) IncAssignment(region string, reassignment, ok bool) {
	p.assignments.WithLabelValues(region, strconv.FormatBool(reassignment), result(ok)).Inc()
}

func (p *Prometheus) IncLookupFailure(region, stage string) {
	p.lookupFailures.WithLabelValues(region, stage).Inc()
}

func (p *Prometheus) IncNoCandidate(region string) {
	p.noCandidate.WithLabelValues(region).Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
