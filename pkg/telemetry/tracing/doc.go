// Package tracing exports OpenTelemetry spans for verification runs.
//
// Each run is one trace. The root span "verifier.run" carries the batch
// source, run ID and verdict; a child span "verifier.experiment" is created
// for every experiment with its number, source line and violation count.
// Loading the batch file is traced as "verifier.load".
//
// Spans are exported over OTLP gRPC:
//
//	tracing:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  insecure: true
//	  sampler: ratio
//	  sample_ratio: 0.5
//
// When tracing is disabled, Noop spans cost next to nothing and the runner
// code path is unchanged.
package tracing
