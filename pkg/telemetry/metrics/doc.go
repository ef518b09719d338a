// Package metrics provides Prometheus metrics for bubu-verify.
//
// # Metrics
//
//   - bubu_verifier_runs_total{result}: batch runs by outcome (passed, failed, error)
//   - bubu_verifier_run_duration_seconds: batch run duration
//   - bubu_verifier_last_run_timestamp_seconds: completion time of the last run
//   - bubu_verifier_last_run_failed_documents: failed experiments in the last run
//   - bubu_verifier_documents_total{result}: experiments verified (passed, failed)
//   - bubu_verifier_document_duration_seconds: per-experiment validation time
//   - bubu_verifier_violations_total{section,kind}: violations by top-level section
//   - bubu_verifier_input_errors_total{op}: fatal batch input errors
//
// One-shot runs publish through WriteTextfile for the node_exporter textfile
// collector. The watch command serves Handler over HTTP.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Metrics, nil)
//	collector.RecordDocument(false, 3*time.Millisecond)
//	collector.RecordViolation("input_data", "not_found")
//	collector.RecordRun("failed", time.Second, 1)
//	_ = collector.WriteTextfile("/var/lib/node_exporter/bubu.prom")
//
// All Record methods are no-ops on a nil Collector or when metrics are
// disabled.
package metrics
