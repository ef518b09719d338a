package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for verification run IDs.
	RunIDKey contextKey = "run_id"

	// SourceKey is the context key for the batch file being verified.
	SourceKey contextKey = "source"

	// DocumentKey is the context key for the 1-based experiment number.
	DocumentKey contextKey = "experiment"

	// CommandKey is the context key for the CLI command name.
	CommandKey contextKey = "command"
)

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithSource adds the batch source path to the context.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, SourceKey, source)
}

// GetSource retrieves the batch source path from the context.
func GetSource(ctx context.Context) string {
	if source, ok := ctx.Value(SourceKey).(string); ok {
		return source
	}
	return ""
}

// WithDocument adds the 1-based experiment number to the context.
func WithDocument(ctx context.Context, number int) context.Context {
	return context.WithValue(ctx, DocumentKey, number)
}

// GetDocument retrieves the experiment number from the context, or 0.
func GetDocument(ctx context.Context) int {
	if n, ok := ctx.Value(DocumentKey).(int); ok {
		return n
	}
	return 0
}

// WithCommand adds the CLI command name to the context.
func WithCommand(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, CommandKey, command)
}

// GetCommand retrieves the CLI command name from the context.
func GetCommand(ctx context.Context) string {
	if command, ok := ctx.Value(CommandKey).(string); ok {
		return command
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if command := GetCommand(ctx); command != "" {
		fields = append(fields, "command", command)
	}
	if runID := GetRunID(ctx); runID != "" {
		fields = append(fields, "run_id", runID)
	}
	if source := GetSource(ctx); source != "" {
		fields = append(fields, "source", source)
	}
	if n := GetDocument(ctx); n > 0 {
		fields = append(fields, "experiment", n)
	}

	return fields
}
