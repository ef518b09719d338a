// Package logging provides structured logging for bubu-verify.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON, text, and console formats
//   - Context-aware logging carrying run IDs, batch source and experiment number
//   - Configurable log levels (debug, info, warn, error)
//
// Logs are diagnostics and go to stderr. Verification reports are written to
// stdout by package cli and never pass through this package.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	ctx = logging.WithRunID(ctx, runID)
//	ctx = logging.WithSource(ctx, "batch.json")
//	logger.InfoContext(ctx, "verification started", "documents", 3)
//	// {"level":"INFO","msg":"verification started","run_id":"...","source":"batch.json","documents":3}
package logging
