package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bubu-hq/verifier/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Helper function to create test config
func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:   true,
		Namespace: "test",
		Subsystem: "verifier",
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector == nil {
		t.Fatal("Expected non-nil collector")
	}
	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
}

func TestCollector_DefaultNames(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	NewCollector(cfg, nil)

	if cfg.Namespace != "bubu" || cfg.Subsystem != "verifier" {
		t.Errorf("expected bubu/verifier, got %s/%s", cfg.Namespace, cfg.Subsystem)
	}
}

func TestCollector_RecordDocument(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordDocument(true, time.Millisecond)
	collector.RecordDocument(false, time.Millisecond)
	collector.RecordDocument(false, 2*time.Millisecond)

	docs := collector.documentMetrics.documentsTotal
	if got := testutil.ToFloat64(docs.WithLabelValues(ResultPassed)); got != 1 {
		t.Errorf("passed documents = %v, want 1", got)
	}
	if got := testutil.ToFloat64(docs.WithLabelValues(ResultFailed)); got != 2 {
		t.Errorf("failed documents = %v, want 2", got)
	}
}

func TestCollector_RecordViolation(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordViolation("input_data", "not_found")
	collector.RecordViolation("input_data", "not_found")
	collector.RecordViolation("settings", "type")

	violations := collector.documentMetrics.violationsTotal
	if got := testutil.ToFloat64(violations.WithLabelValues("input_data", "not_found")); got != 2 {
		t.Errorf("input_data/not_found = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(violations); got != 2 {
		t.Errorf("violation series = %d, want 2", got)
	}
}

func TestCollector_ViolationSectionCardinality(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.cardinalityLimiter = NewCardinalityLimiter(2)

	collector.RecordViolation("a", "type")
	collector.RecordViolation("b", "type")
	collector.RecordViolation("c", "type")
	collector.RecordViolation("d", "type")

	violations := collector.documentMetrics.violationsTotal
	if got := testutil.ToFloat64(violations.WithLabelValues(otherSection, "type")); got != 2 {
		t.Errorf("other = %v, want 2", got)
	}
}

func TestCollector_RecordRun(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordRun(ResultFailed, time.Second, 3)

	rm := collector.runMetrics
	if got := testutil.ToFloat64(rm.runsTotal.WithLabelValues(ResultFailed)); got != 1 {
		t.Errorf("failed runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rm.lastRunFailedDocs); got != 3 {
		t.Errorf("last run failed documents = %v, want 3", got)
	}
	if got := testutil.ToFloat64(rm.lastRunTimestamp); got <= 0 {
		t.Errorf("last run timestamp = %v, want > 0", got)
	}
}

func TestCollector_RecordInputError(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordInputError("parse")

	rm := collector.runMetrics
	if got := testutil.ToFloat64(rm.inputErrorsTotal.WithLabelValues("parse")); got != 1 {
		t.Errorf("parse errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rm.runsTotal.WithLabelValues(ResultError)); got != 1 {
		t.Errorf("error runs = %v, want 1", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, nil)

	collector.RecordDocument(true, time.Millisecond)
	collector.RecordViolation("settings", "type")
	collector.RecordRun(ResultPassed, time.Second, 0)

	if got := testutil.CollectAndCount(collector.documentMetrics.documentsTotal); got != 0 {
		t.Errorf("disabled collector recorded %d document series", got)
	}
	if err := collector.WriteTextfile(filepath.Join(t.TempDir(), "m.prom")); err != nil {
		t.Errorf("WriteTextfile on disabled collector = %v", err)
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var collector *Collector

	collector.RecordDocument(true, time.Millisecond)
	collector.RecordViolation("settings", "type")
	collector.RecordRun(ResultPassed, time.Second, 0)
	collector.RecordInputError("read")
	if err := collector.WriteTextfile("ignored"); err != nil {
		t.Errorf("WriteTextfile on nil collector = %v", err)
	}
}

func TestCollector_WriteTextfile(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.RecordRun(ResultPassed, 10*time.Millisecond, 0)

	path := filepath.Join(t.TempDir(), "bubu.prom")
	if err := collector.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read textfile: %v", err)
	}
	if !strings.Contains(string(data), `test_verifier_runs_total{result="passed"} 1`) {
		t.Errorf("textfile missing runs_total:\n%s", data)
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.RecordViolation("quality_control", "missing_section")

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test_verifier_violations_total") {
		t.Errorf("body missing violations_total:\n%s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "promhttp_metric_handler_requests_total") {
		t.Errorf("body missing scrape counter:\n%s", rec.Body.String())
	}
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)

	if !cl.Allow("a") || !cl.Allow("b") {
		t.Fatal("expected first two label sets to be allowed")
	}
	if cl.Allow("c") {
		t.Error("expected third label set to be rejected")
	}
	if !cl.Allow("a") {
		t.Error("expected known label set to stay allowed")
	}
	if cl.Count() != 2 {
		t.Errorf("Count() = %d, want 2", cl.Count())
	}
}
