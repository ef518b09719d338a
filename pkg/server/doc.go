// Package server serves Prometheus metrics and health probes while
// bubu-verify runs in watch mode.
//
// Routes:
//   - /metrics (configurable): the collector's registry
//   - /health: liveness
//   - /ready: readiness; 503 while any watched batch is failing
//   - /status: latest verdict per watched batch
//   - /version: build information
//
// # Usage
//
//	checker := health.New(0)
//	tracker := health.NewTracker()
//	checker.RegisterCheck("batches", tracker.Check)
//
//	srv := server.New(server.Config{Address: ":9464"}, collector, checker, tracker, logger)
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start blocks until ctx is cancelled, then shuts down within
// Config.ShutdownTimeout.
package server
