// Package health provides the probe endpoints served by bubu-verify watch.
//
// # Endpoints
//
//   - /health: liveness, 200 while the process runs
//   - /ready: readiness, 503 when a registered check fails
//   - /status: the latest verdict of every watched batch file
//   - /version: build information
//
// # Usage
//
//	checker := health.New(2 * time.Second)
//	tracker := health.NewTracker()
//	checker.RegisterCheck("batches", tracker.Check)
//
//	mux := http.NewServeMux()
//	health.Register(mux, checker, tracker, health.VersionInfo{Version: "0.3.0"})
//
// A failing batch makes /ready answer 503, so an orchestrator can gate a
// pipeline launch on every experiment configuration being valid.
package health
