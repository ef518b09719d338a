package metrics

import (
	"time"

	"bubu-hq/verifier/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RunMetrics tracks whole-batch verification runs.
type RunMetrics struct {
	runsTotal         *prometheus.CounterVec
	runDuration       prometheus.Histogram
	lastRunTimestamp  prometheus.Gauge
	lastRunFailedDocs prometheus.Gauge
	inputErrorsTotal  *prometheus.CounterVec
}

// NewRunMetrics creates and registers run metrics with the provided registry.
func NewRunMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RunMetrics {
	rm := &RunMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Total number of batch verification runs",
			},
			[]string{"result"},
		),

		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "run_duration_seconds",
				Help:      "Duration of batch verification runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8), // 1ms to ~16s
			},
		),

		lastRunTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last verification run completed",
			},
		),

		lastRunFailedDocs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "last_run_failed_documents",
				Help:      "Number of experiments that failed in the last run",
			},
		),

		inputErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "input_errors_total",
				Help:      "Total number of batches rejected before validation",
			},
			[]string{"op"},
		),
	}

	registry.MustRegister(
		rm.runsTotal,
		rm.runDuration,
		rm.lastRunTimestamp,
		rm.lastRunFailedDocs,
		rm.inputErrorsTotal,
	)

	return rm
}

// RecordRun records a completed run.
func (rm *RunMetrics) RecordRun(result string, duration time.Duration, failedDocuments int) {
	rm.runsTotal.WithLabelValues(result).Inc()
	rm.runDuration.Observe(duration.Seconds())
	rm.lastRunTimestamp.SetToCurrentTime()
	rm.lastRunFailedDocs.Set(float64(failedDocuments))
}

// RecordInputError records a batch rejected by the loader.
func (rm *RunMetrics) RecordInputError(op string) {
	rm.inputErrorsTotal.WithLabelValues(op).Inc()
	rm.runsTotal.WithLabelValues(ResultError).Inc()
}
