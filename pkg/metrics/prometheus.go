package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runsEvaluated *prometheus.CounterVec
	rowsEnriched  *prometheus.CounterVec
	rowsBlocked   *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		runsEvaluated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aiw_runs_evaluated_total",
				Help: "Total number of control runs evaluated",
			},
			[]string{"env", "mode"},
		),
		rowsEnriched: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aiw_rows_enriched_total",
				Help: "Total number of candidate rows enriched",
			},
			[]string{"env"},
		),
		rowsBlocked: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aiw_rows_blocked_total",
				Help: "Total number of rows blocked by risk policy",
			},
			[]string{"env"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aiw_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aiw_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRunEvaluated records one evaluated run by env and derived mode.
func (r *Recorder) RecordRunEvaluated(env, mode string) {
	r.runsEvaluated.WithLabelValues(env, mode).Inc()
}

// RecordRowsEnriched records the number of rows enriched in one run.
func (r *Recorder) RecordRowsEnriched(env string, n int) {
	r.rowsEnriched.WithLabelValues(env).Add(float64(n))
}

// RecordBlocked records the number of rows blocked by risk in one run.
func (r *Recorder) RecordBlocked(env string, n int) {
	r.rowsBlocked.WithLabelValues(env).Add(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
