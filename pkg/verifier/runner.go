package verifier

import (
	"context"
	"errors"
	"time"

	"bubu-hq/verifier/pkg/document"
	"bubu-hq/verifier/pkg/history"
	"bubu-hq/verifier/pkg/schema"
	"bubu-hq/verifier/pkg/telemetry/logging"
	"bubu-hq/verifier/pkg/telemetry/metrics"
	"bubu-hq/verifier/pkg/telemetry/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Options configures a Runner. Zero values are usable.
type Options struct {
	// Parallel bounds how many documents are validated at once.
	// Values below 2 validate sequentially.
	Parallel int

	// Logger receives diagnostics. Defaults to a discarding logger.
	Logger *logging.Logger

	// Metrics, when set, records run, document and violation metrics.
	Metrics *metrics.Collector

	// History, when set, receives a summary of every completed run.
	History history.Store

	// Tracer, when set, records a span per run and per experiment.
	Tracer *tracing.Tracer
}

// Runner validates batches with a fixed engine and options.
// A Runner is safe for concurrent use.
type Runner struct {
	validator *schema.Validator
	parallel  int
	logger    *logging.Logger
	metrics   *metrics.Collector
	history   history.Store
	tracer    *tracing.Tracer

	now   func() time.Time
	newID func() string
}

// NewRunner creates a runner around v. A nil v uses the default pipeline
// schema with filesystem probes.
func NewRunner(v *schema.Validator, opts Options) *Runner {
	if v == nil {
		v = schema.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = tracing.Noop()
	}
	parallel := opts.Parallel
	if parallel < 1 {
		parallel = 1
	}
	return &Runner{
		validator: v,
		parallel:  parallel,
		logger:    logger.WithComponent("verifier"),
		metrics:   opts.Metrics,
		history:   opts.History,
		tracer:    tracer,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// RunFile loads the batch at path and runs it. Input errors are returned as
// *document.InputError and no document is validated.
func (r *Runner) RunFile(ctx context.Context, path string) (*Report, error) {
	ctx = logging.WithSource(ctx, path)

	loadCtx, span := r.tracer.Start(ctx, "verifier.load",
		trace.WithAttributes(tracing.AttrSource.String(path)))
	batch, err := document.LoadFile(path)
	if err != nil {
		var inputErr *document.InputError
		op := "unknown"
		if errors.As(err, &inputErr) {
			op = inputErr.Op
		}
		span.SetAttributes(tracing.AttrInputOp.String(op))
		tracing.SetError(span, err)
		span.End()

		r.metrics.RecordInputError(op)
		r.logger.ErrorContext(loadCtx, "batch rejected", "op", op, "error", err)
		return nil, err
	}
	span.SetAttributes(tracing.AttrDocuments.Int(batch.Len()))
	span.End()

	return r.Run(ctx, batch)
}

// Run validates every document of batch. The only error it returns is the
// context's, when cancelled before all documents were checked.
func (r *Runner) Run(ctx context.Context, batch *document.Batch) (*Report, error) {
	report := &Report{
		RunID:     r.newID(),
		Source:    batch.Source,
		StartedAt: r.now(),
		Results:   make([]Result, batch.Len()),
	}

	ctx = logging.WithRunID(logging.WithSource(ctx, batch.Source), report.RunID)
	ctx, span := r.tracer.Start(ctx, "verifier.run",
		trace.WithAttributes(tracing.RunAttributes(report.RunID, batch.Source, string(batch.Format), batch.Len())...))
	defer span.End()

	r.logger.InfoContext(ctx, "verification started",
		"documents", batch.Len(),
		"format", string(batch.Format),
		"parallel", r.parallel,
	)

	if err := r.validateAll(ctx, batch, report.Results); err != nil {
		r.logger.WarnContext(ctx, "verification interrupted", "error", err)
		tracing.SetError(span, err)
		return nil, err
	}

	report.Duration = r.now().Sub(report.StartedAt)
	span.SetAttributes(tracing.RunResultAttributes(report.FailedCount(), report.ViolationCount())...)
	r.finish(ctx, report)
	return report, nil
}

func (r *Runner) validateAll(ctx context.Context, batch *document.Batch, results []Result) error {
	if r.parallel == 1 || batch.Len() < 2 {
		for i, doc := range batch.Documents {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = r.validate(ctx, doc)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)
	for i, doc := range batch.Documents {
		i, doc := i, doc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Each goroutine owns one slot, so batch order survives.
			results[i] = r.validate(gctx, doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (r *Runner) validate(ctx context.Context, doc document.Document) Result {
	ctx, span := r.tracer.Start(ctx, "verifier.experiment",
		trace.WithAttributes(tracing.ExperimentAttributes(doc.Index+1, doc.Line)...))
	defer span.End()

	start := time.Now()
	violations := r.validator.Validate(doc.Value)
	res := Result{
		Index:      doc.Index,
		Line:       doc.Line,
		Violations: violations,
		Duration:   time.Since(start),
	}
	span.SetAttributes(tracing.ExperimentResultAttributes(len(violations), failedSections(violations))...)

	r.metrics.RecordDocument(res.Passed(), res.Duration)
	for _, v := range violations {
		r.metrics.RecordViolation(v.Section(), string(v.Kind))
	}

	if !res.Passed() {
		r.logger.DebugContext(logging.WithDocument(ctx, res.Number()), "experiment failed",
			"line", res.Line,
			"violations", len(violations),
		)
	}
	return res
}

func (r *Runner) finish(ctx context.Context, report *Report) {
	result := metrics.ResultPassed
	if report.Failed() {
		result = metrics.ResultFailed
	}
	r.metrics.RecordRun(result, report.Duration, report.FailedCount())

	r.logger.InfoContext(ctx, "verification finished",
		"result", result,
		"failed", report.FailedCount(),
		"violations", report.ViolationCount(),
		"duration", report.Duration,
	)

	if r.history == nil {
		return
	}
	// A broken history store must not change the verdict.
	if err := r.history.Save(ctx, report.Record()); err != nil {
		r.logger.WarnContext(ctx, "failed to record run history", "error", err)
	}
}

// failedSections lists the distinct top-level sections with violations.
func failedSections(violations schema.Violations) []string {
	var sections []string
	seen := make(map[string]bool)
	for _, v := range violations {
		if s := v.Section(); !seen[s] {
			seen[s] = true
			sections = append(sections, s)
		}
	}
	return sections
}
