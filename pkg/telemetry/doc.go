// Package telemetry groups the observability packages used by bubu-verify.
//
// # Components
//
//   - logging: slog-based structured logging on stderr with run, source and
//     experiment context fields
//   - metrics: Prometheus counters and histograms for runs, experiments and
//     violations, exported over HTTP or to a node_exporter textfile
//   - tracing: OpenTelemetry spans for batch loading, runs and experiments,
//     exported over OTLP/gRPC when enabled
//   - health: liveness and readiness probes plus per-batch verdicts for the
//     watch command
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(cfg.Logging, os.Stderr))
//	collector := metrics.NewCollector(&cfg.Metrics, nil)
//	tracer, err := tracing.New(&cfg.Tracing)
//	defer tracer.Shutdown(context.Background())
//
//	runner := verifier.NewRunner(schema.New(), verifier.Options{
//	    Logger:  logger,
//	    Metrics: collector,
//	    Tracer:  tracer,
//	})
//
// Each subpackage is usable on its own; nothing here is global except the
// OpenTelemetry tracer provider installed by tracing.New.
package telemetry
