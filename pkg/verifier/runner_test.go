package verifier

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bubu-hq/verifier/pkg/config"
	"bubu-hq/verifier/pkg/document"
	"bubu-hq/verifier/pkg/history"
	"bubu-hq/verifier/pkg/schema"
	"bubu-hq/verifier/pkg/telemetry/metrics"
	"bubu-hq/verifier/pkg/telemetry/tracing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const validExperiment = `{
    "settings": {
      "run_experiment": true, "name": "run_01", "fancy_name": "Run 01",
      "output_directory": "./results", "random_seed": 42,
      "multi_thread": true, "verbose_output": false, "notes": "",
      "pipeline": {"quality_control": true, "dada": true}
    },
    "input_data": {
      "input_miseq_directory": "/data/miseq",
      "output_filtered_fastq_directory": "./filtered",
      "normalize_pids": false, "custom_samples_pid": ["P01"],
      "sample_input": false, "sample_frequency": 0.5
    },
    "quality_control": {
      "quality_profile_plot": true, "rarefaction_curve": false,
      "multiqc": {"separate_direction_reports": true, "delete_intermediate_files": true, "interactive_plots": false}
    },
    "filter_and_trim": {
      "remove_phix_genome": true, "min_read_length": 50,
      "truncate": {"forward": 240, "reverse": 160},
      "trim_left": {"forward": 0, "reverse": 0}
    },
    "asv_inference": {"error_model": {"randomize": true, "iterations": 10}, "dada_pool_samples": false},
    "taxonomy_assignment": [{
      "active": true, "reference_name": "silva", "train_set_path": "/refs/train.fa.gz",
      "assign_species": true, "allow_multiple_species": false,
      "species_train_set_path": "/refs/species.fa.gz", "reverse_match_taxa": false
    }]
  }`

// invalidExperiment has a wrongly typed seed and an out-of-range frequency.
var invalidExperiment = strings.NewReplacer(
	`"random_seed": 42`, `"random_seed": "42"`,
	`"sample_frequency": 0.5`, `"sample_frequency": 1.5`,
).Replace(validExperiment)

func allPathsExist() *schema.Validator {
	return schema.New(schema.WithProber(schema.ProberFunc(func(string) bool { return true })))
}

func writeBatch(t *testing.T, docs ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.json")
	content := "[\n  " + strings.Join(docs, ",\n  ") + "\n]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write batch: %v", err)
	}
	return path
}

func TestRunFile_AllValid(t *testing.T) {
	runner := NewRunner(allPathsExist(), Options{})

	report, err := runner.RunFile(context.Background(), writeBatch(t, validExperiment, validExperiment))
	if err != nil {
		t.Fatalf("RunFile() error = %v", err)
	}
	if report.Total() != 2 {
		t.Fatalf("Total() = %d, want 2", report.Total())
	}
	if report.Failed() {
		t.Errorf("expected all documents to pass, got %v", report.Results)
	}
	if report.RunID == "" {
		t.Error("expected a run ID")
	}
	if report.Results[0].Line != 2 {
		t.Errorf("first document line = %d, want 2", report.Results[0].Line)
	}
}

func TestRunFile_FailureDoesNotStopBatch(t *testing.T) {
	runner := NewRunner(allPathsExist(), Options{})

	report, err := runner.RunFile(context.Background(),
		writeBatch(t, invalidExperiment, validExperiment, invalidExperiment))
	if err != nil {
		t.Fatalf("RunFile() error = %v", err)
	}
	if report.FailedCount() != 2 {
		t.Errorf("FailedCount() = %d, want 2", report.FailedCount())
	}
	if report.ViolationCount() != 4 {
		t.Errorf("ViolationCount() = %d, want 4", report.ViolationCount())
	}
	if !report.Results[1].Passed() {
		t.Errorf("second document should pass: %v", report.Results[1].Violations.Messages())
	}

	want := []string{
		`"settings.random_seed" must be an integer.`,
		`"input_data.sample_frequency" must be between 0.0 and 1.0 inclusive.`,
	}
	got := report.Results[0].Violations.Messages()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("messages = %q, want %q", got, want)
	}
}

func TestRunFile_EmptyBatch(t *testing.T) {
	runner := NewRunner(allPathsExist(), Options{})

	report, err := runner.RunFile(context.Background(), writeBatch(t))
	if err != nil {
		t.Fatalf("RunFile() error = %v", err)
	}
	if report.Total() != 0 || report.Failed() {
		t.Errorf("empty batch should pass with no results: %+v", report)
	}
}

func TestRunFile_InputError(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	collector := metrics.NewCollector(cfg, nil)
	runner := NewRunner(allPathsExist(), Options{Metrics: collector})

	path := filepath.Join(t.TempDir(), "batch.json")
	if err := os.WriteFile(path, []byte(`{"settings": {}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := runner.RunFile(context.Background(), path)
	if report != nil {
		t.Error("expected no report for a rejected batch")
	}
	if !errors.Is(err, document.ErrNotSequence) {
		t.Fatalf("error = %v, want ErrNotSequence", err)
	}

	want := `
# HELP bubu_verifier_input_errors_total Total number of batches rejected before validation
# TYPE bubu_verifier_input_errors_total counter
bubu_verifier_input_errors_total{op="shape"} 1
`
	if err := testutil.GatherAndCompare(collector.Registry(), strings.NewReader(want), "bubu_verifier_input_errors_total"); err != nil {
		t.Error(err)
	}
}

func TestRun_ParallelPreservesOrder(t *testing.T) {
	var docs []document.Document
	for i := 0; i < 40; i++ {
		doc := map[string]any{}
		if i%3 == 0 {
			doc["settings"] = map[string]any{}
		}
		docs = append(docs, document.Document{Index: i, Line: i + 2, Value: doc})
	}
	batch := &document.Batch{Source: "mem", Format: document.FormatJSON, Documents: docs}

	sequential, err := NewRunner(allPathsExist(), Options{}).Run(context.Background(), batch)
	if err != nil {
		t.Fatalf("sequential Run() error = %v", err)
	}
	parallel, err := NewRunner(allPathsExist(), Options{Parallel: 8}).Run(context.Background(), batch)
	if err != nil {
		t.Fatalf("parallel Run() error = %v", err)
	}

	for i := range docs {
		s, p := sequential.Results[i], parallel.Results[i]
		if p.Index != i || p.Line != i+2 {
			t.Fatalf("result %d out of order: index %d line %d", i, p.Index, p.Line)
		}
		if strings.Join(s.Violations.Messages(), "|") != strings.Join(p.Violations.Messages(), "|") {
			t.Errorf("result %d differs between sequential and parallel runs", i)
		}
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := &document.Batch{Documents: []document.Document{{Value: map[string]any{}}}}
	for _, parallel := range []int{1, 4} {
		t.Run(fmt.Sprintf("parallel=%d", parallel), func(t *testing.T) {
			_, err := NewRunner(allPathsExist(), Options{Parallel: parallel}).Run(ctx, batch)
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Run() error = %v, want context.Canceled", err)
			}
		})
	}
}

func TestRun_RecordsMetrics(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true, Namespace: "t", Subsystem: "v"}
	collector := metrics.NewCollector(cfg, nil)
	runner := NewRunner(allPathsExist(), Options{Metrics: collector})

	if _, err := runner.RunFile(context.Background(), writeBatch(t, validExperiment, invalidExperiment)); err != nil {
		t.Fatalf("RunFile() error = %v", err)
	}

	want := `
# HELP t_v_documents_total Total number of experiment configurations verified
# TYPE t_v_documents_total counter
t_v_documents_total{result="failed"} 1
t_v_documents_total{result="passed"} 1
# HELP t_v_violations_total Total number of schema violations found
# TYPE t_v_violations_total counter
t_v_violations_total{kind="range",section="input_data"} 1
t_v_violations_total{kind="type",section="settings"} 1
# HELP t_v_runs_total Total number of batch verification runs
# TYPE t_v_runs_total counter
t_v_runs_total{result="failed"} 1
`
	if err := testutil.GatherAndCompare(collector.Registry(), strings.NewReader(want),
		"t_v_documents_total", "t_v_violations_total", "t_v_runs_total"); err != nil {
		t.Error(err)
	}
}

func TestRun_SavesHistory(t *testing.T) {
	store := history.NewMemoryStore()
	runner := NewRunner(allPathsExist(), Options{History: store})
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	runner.now = func() time.Time { return start }
	runner.newID = func() string { return "run-fixed" }

	path := writeBatch(t, validExperiment, invalidExperiment)
	if _, err := runner.RunFile(context.Background(), path); err != nil {
		t.Fatalf("RunFile() error = %v", err)
	}

	rec, err := store.Get(context.Background(), "run-fixed")
	if err != nil {
		t.Fatalf("history Get() error = %v", err)
	}
	if rec.Source != path || rec.Documents != 2 || rec.Failed != 1 || rec.Violations != 2 {
		t.Errorf("unexpected record: %+v", rec)
	}
	if !rec.StartedAt.Equal(start) {
		t.Errorf("StartedAt = %v, want %v", rec.StartedAt, start)
	}
	if len(rec.Failures) != 1 || rec.Failures[0].Index != 1 || len(rec.Failures[0].Messages) != 2 {
		t.Errorf("unexpected failures: %+v", rec.Failures)
	}
}

type failingStore struct{ history.MemoryStore }

func (*failingStore) Save(context.Context, *history.Record) error {
	return history.NewStorageError("memory", "save", errors.New("boom"))
}

func TestRun_HistoryFailureIsNotFatal(t *testing.T) {
	runner := NewRunner(allPathsExist(), Options{History: &failingStore{}})

	report, err := runner.RunFile(context.Background(), writeBatch(t, validExperiment))
	if err != nil {
		t.Fatalf("RunFile() error = %v", err)
	}
	if report.Failed() {
		t.Error("history failure changed the verdict")
	}
}

func TestNewRunner_Defaults(t *testing.T) {
	runner := NewRunner(nil, Options{Parallel: -3})
	if runner.parallel != 1 {
		t.Errorf("parallel = %d, want 1", runner.parallel)
	}
	if runner.validator == nil || runner.logger == nil || runner.tracer == nil {
		t.Error("expected default validator, logger and tracer")
	}
}

func newRecordingTracer(t *testing.T) (*tracing.Tracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := tracing.NewWithExporter(&config.TracingConfig{Sampler: tracing.SamplerAlways}, exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}
	return tracer, exporter
}

func spanAttr(attrs []attribute.KeyValue, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range attrs {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestRunFile_RecordsSpans(t *testing.T) {
	tracer, exporter := newRecordingTracer(t)
	runner := NewRunner(allPathsExist(), Options{Tracer: tracer})

	ctx := context.Background()
	if _, err := runner.RunFile(ctx, writeBatch(t, validExperiment, invalidExperiment)); err != nil {
		t.Fatalf("RunFile() error = %v", err)
	}
	if err := tracer.ForceFlush(ctx); err != nil {
		t.Fatal(err)
	}

	byName := map[string][]tracetest.SpanStub{}
	for _, s := range exporter.GetSpans() {
		byName[s.Name] = append(byName[s.Name], s)
	}
	if len(byName["verifier.load"]) != 1 || len(byName["verifier.run"]) != 1 || len(byName["verifier.experiment"]) != 2 {
		t.Fatalf("unexpected spans: %v", byName)
	}

	run := byName["verifier.run"][0]
	if v, _ := spanAttr(run.Attributes, tracing.AttrFailed); v.AsInt64() != 1 {
		t.Errorf("run failed_documents = %v, want 1", v.AsInt64())
	}
	for _, exp := range byName["verifier.experiment"] {
		if exp.Parent.SpanID() != run.SpanContext.SpanID() {
			t.Error("experiment span not parented to the run span")
		}
		number, _ := spanAttr(exp.Attributes, tracing.AttrExperiment)
		passed, _ := spanAttr(exp.Attributes, tracing.AttrPassed)
		if passed.AsBool() != (number.AsInt64() == 1) {
			t.Errorf("experiment %d passed = %v", number.AsInt64(), passed.AsBool())
		}
	}
}

func TestRunFile_InputErrorSpan(t *testing.T) {
	tracer, exporter := newRecordingTracer(t)
	runner := NewRunner(allPathsExist(), Options{Tracer: tracer})

	ctx := context.Background()
	missing := filepath.Join(t.TempDir(), "missing.json")
	if _, err := runner.RunFile(ctx, missing); err == nil {
		t.Fatal("RunFile() error = nil for missing file")
	}
	if err := tracer.ForceFlush(ctx); err != nil {
		t.Fatal(err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Name != "verifier.load" {
		t.Fatalf("spans = %v, want a single load span", spans)
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("load span status = %v, want Error", spans[0].Status.Code)
	}
	if op, _ := spanAttr(spans[0].Attributes, tracing.AttrInputOp); op.AsString() != document.OpOpen {
		t.Errorf("input_op = %q, want %q", op.AsString(), document.OpOpen)
	}
}

func TestFailedSections(t *testing.T) {
	got := failedSections(schema.Violations{
		{Path: "settings.random_seed", Kind: schema.KindType},
		{Path: "input_data.sample_frequency", Kind: schema.KindRange},
		{Path: "settings.name", Kind: schema.KindMissingField},
		{Path: "taxonomy_assignment[0].active", Kind: schema.KindType},
	})
	want := []string{"settings", "input_data", "taxonomy_assignment"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("failedSections() = %v, want %v", got, want)
	}
}
