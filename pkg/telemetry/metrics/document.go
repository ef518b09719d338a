package metrics

import (
	"time"

	"bubu-hq/verifier/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// DocumentMetrics tracks per-experiment validation.
type DocumentMetrics struct {
	documentsTotal   *prometheus.CounterVec
	documentDuration prometheus.Histogram
	violationsTotal  *prometheus.CounterVec
}

// NewDocumentMetrics creates and registers document metrics with the provided registry.
func NewDocumentMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *DocumentMetrics {
	dm := &DocumentMetrics{
		documentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "documents_total",
				Help:      "Total number of experiment configurations verified",
			},
			[]string{"result"},
		),

		documentDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "document_duration_seconds",
				Help:      "Time spent validating one experiment configuration",
				// Dominated by filesystem probes
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8), // 10µs to ~160ms
			},
		),

		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "violations_total",
				Help:      "Total number of schema violations found",
			},
			[]string{"section", "kind"},
		),
	}

	registry.MustRegister(
		dm.documentsTotal,
		dm.documentDuration,
		dm.violationsTotal,
	)

	return dm
}

// RecordDocument records one validated experiment.
func (dm *DocumentMetrics) RecordDocument(result string, duration time.Duration) {
	dm.documentsTotal.WithLabelValues(result).Inc()
	dm.documentDuration.Observe(duration.Seconds())
}

// RecordViolation records one violation.
func (dm *DocumentMetrics) RecordViolation(section, kind string) {
	dm.violationsTotal.WithLabelValues(section, kind).Inc()
}
