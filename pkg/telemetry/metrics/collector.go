package metrics

import (
	"fmt"
	"sync"
	"time"

	"bubu-hq/verifier/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Run results.
const (
	ResultPassed = "passed"
	ResultFailed = "failed"
	ResultError  = "error"
)

// otherSection replaces section labels past the cardinality limit.
const otherSection = "other"

// Collector owns the verifier's Prometheus registry and metric families.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	runMetrics      *RunMetrics
	documentMetrics *DocumentMetrics

	// Section labels come from document paths; cap them.
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector registering into registry. If registry is
// nil a fresh one is created, so collectors never share the process default.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		runMetrics:         NewRunMetrics(cfg, registry),
		documentMetrics:    NewDocumentMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(64),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordRun records a completed batch run. result is one of ResultPassed,
// ResultFailed or ResultError.
func (c *Collector) RecordRun(result string, duration time.Duration, failedDocuments int) {
	if !c.enabled() {
		return
	}
	c.runMetrics.RecordRun(result, duration, failedDocuments)
}

// RecordDocument records one verified experiment.
func (c *Collector) RecordDocument(passed bool, duration time.Duration) {
	if !c.enabled() {
		return
	}
	result := ResultPassed
	if !passed {
		result = ResultFailed
	}
	c.documentMetrics.RecordDocument(result, duration)
}

// RecordViolation counts one violation in section of the given kind.
func (c *Collector) RecordViolation(section, kind string) {
	if !c.enabled() {
		return
	}
	if !c.cardinalityLimiter.Allow(section) {
		section = otherSection
	}
	c.documentMetrics.RecordViolation(section, kind)
}

// RecordInputError counts a batch that could not be loaded.
func (c *Collector) RecordInputError(op string) {
	if !c.enabled() {
		return
	}
	c.runMetrics.RecordInputError(op)
}

// WriteTextfile atomically writes the registry in the Prometheus text format
// for the node_exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if !c.enabled() || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %q: %w", path, err)
	}
	return nil
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether labelSet is already tracked or still fits under the
// limit, tracking it in the latter case.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
