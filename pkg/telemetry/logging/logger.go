package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"bubu-hq/verifier/pkg/config"
)

// LogFormat represents the output format for logs.
type LogFormat string

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON LogFormat = "json"
	// FormatText outputs logs in logfmt-style key=value format.
	FormatText LogFormat = "text"
	// FormatConsole outputs compact text without timestamps, for terminals.
	FormatConsole LogFormat = "console"
)

// Logger provides structured logging on top of log/slog.
type Logger struct {
	// slog is the underlying structured logger
	slog *slog.Logger

	// level is the minimum log level
	level slog.Level

	// format is the output format
	format LogFormat
}

// Config contains configuration for the Logger.
type Config struct {
	// Level is the minimum log level ("debug", "info", "warn", "error")
	Level string

	// Format is the output format ("json", "text", "console")
	Format string

	// AddSource includes file and line number in logs
	AddSource bool

	// Writer is the output writer (defaults to os.Stderr so reports on
	// stdout stay machine readable)
	Writer io.Writer
}

// FromConfig builds a logger Config from the logging section of the
// application configuration.
func FromConfig(cfg config.LoggingConfig, w io.Writer) Config {
	return Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		AddSource: cfg.AddSource,
		Writer:    w,
	}
}

// New creates a new Logger with the given configuration.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	format, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid log format: %w", err)
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(writer, opts)
	case FormatConsole:
		opts.ReplaceAttr = dropTime
		handler = slog.NewTextHandler(writer, opts)
	default:
		handler = slog.NewTextHandler(writer, opts)
	}

	return &Logger{
		slog:   slog.New(handler),
		level:  level,
		format: format,
	}, nil
}

// Discard returns a logger that drops everything. Used as the default when
// callers do not supply one.
func Discard() *Logger {
	return &Logger{
		slog:   slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1})),
		level:  slog.LevelError + 1,
		format: FormatText,
	}
}

func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}

// Level returns the minimum level this logger emits.
func (l *Logger) Level() slog.Level {
	return l.level
}

// Slog exposes the underlying *slog.Logger for libraries that take one.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Enabled reports whether records at level would be emitted.
func (l *Logger) Enabled(level slog.Level) bool {
	return l.slog.Enabled(context.Background(), level)
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.log(context.Background(), slog.LevelError, msg, args...)
}

// DebugContext logs a debug message with context fields.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelDebug, msg, append(extractContextFields(ctx), args...)...)
}

// InfoContext logs an info message with context fields.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelInfo, msg, append(extractContextFields(ctx), args...)...)
}

// WarnContext logs a warning message with context fields.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelWarn, msg, append(extractContextFields(ctx), args...)...)
}

// ErrorContext logs an error message with context fields.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelError, msg, append(extractContextFields(ctx), args...)...)
}

func (l *Logger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if !l.slog.Enabled(ctx, level) {
		return
	}
	l.slog.Log(ctx, level, msg, args...)
}

// With creates a new logger with additional fields.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slog:   l.slog.With(args...),
		level:  l.level,
		format: l.format,
	}
}

// WithComponent tags every record with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.With("component", name)
}

// WithContext creates a new logger carrying the context's run fields.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	args := extractContextFields(ctx)
	if len(args) == 0 {
		return l
	}
	return l.With(args...)
}

// parseLevel parses a log level string into slog.Level.
func parseLevel(levelStr string) (slog.Level, error) {
	switch levelStr {
	case "debug", "DEBUG":
		return slog.LevelDebug, nil
	case "info", "INFO", "":
		return slog.LevelInfo, nil
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn, nil
	case "error", "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", levelStr)
	}
}

// parseFormat parses a log format string into LogFormat.
func parseFormat(formatStr string) (LogFormat, error) {
	switch formatStr {
	case "json", "JSON":
		return FormatJSON, nil
	case "text", "TEXT", "":
		return FormatText, nil
	case "console", "CONSOLE":
		return FormatConsole, nil
	default:
		return FormatText, fmt.Errorf("unknown log format: %s", formatStr)
	}
}
