package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "output.format").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateOutput(&cfg.Output)...)
	errs = append(errs, validateValidation(&cfg.Validation)...)
	errs = append(errs, validateMetrics(&cfg.Metrics)...)
	errs = append(errs, validateHistory(&cfg.History)...)
	errs = append(errs, validateWatch(&cfg.Watch)...)
	errs = append(errs, validateTracing(&cfg.Tracing)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Level == "" {
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Level] {
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if cfg.Format == "" {
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Format] {
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Format),
		})
	}

	return errs
}

func validateOutput(cfg *OutputConfig) []FieldError {
	var errs []FieldError

	validFormats := map[string]bool{"text": true, "json": true, "junit": true}
	if !validFormats[cfg.Format] {
		errs = append(errs, FieldError{
			Field:   "output.format",
			Message: fmt.Sprintf("invalid output format %q: must be 'text', 'json', or 'junit'", cfg.Format),
		})
	}

	validColors := map[string]bool{"auto": true, "always": true, "never": true}
	if !validColors[cfg.Color] {
		errs = append(errs, FieldError{
			Field:   "output.color",
			Message: fmt.Sprintf("invalid color mode %q: must be 'auto', 'always', or 'never'", cfg.Color),
		})
	}

	return errs
}

func validateValidation(cfg *ValidationConfig) []FieldError {
	var errs []FieldError

	if cfg.Parallel < 1 {
		errs = append(errs, FieldError{
			Field:   "validation.parallel",
			Message: "parallel must be at least 1",
		})
	}

	return errs
}

func validateMetrics(cfg *MetricsConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	if cfg.Namespace == "" {
		errs = append(errs, FieldError{
			Field:   "metrics.namespace",
			Message: "namespace is required when metrics are enabled",
		})
	}
	if cfg.Path == "" || cfg.Path[0] != '/' {
		errs = append(errs, FieldError{
			Field:   "metrics.path",
			Message: "metrics path must start with /",
		})
	}
	if cfg.ListenAddress != "" {
		if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
			errs = append(errs, FieldError{
				Field:   "metrics.listen_address",
				Message: fmt.Sprintf("invalid listen address %q: %v", cfg.ListenAddress, err),
			})
		}
	}

	return errs
}

func validateHistory(cfg *HistoryConfig) []FieldError {
	var errs []FieldError

	validDrivers := map[string]bool{"sqlite": true, "sqlite3": true, "memory": true}
	if !validDrivers[cfg.Driver] {
		errs = append(errs, FieldError{
			Field:   "history.driver",
			Message: fmt.Sprintf("invalid history driver %q: must be 'sqlite', 'sqlite3', or 'memory'", cfg.Driver),
		})
	}

	if cfg.Enabled && cfg.Driver != "memory" && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "history.path",
			Message: "database path is required when history is enabled",
		})
	}
	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "history.busy_timeout",
			Message: "busy timeout must be non-negative",
		})
	}
	if cfg.MaxOpenConns < 1 {
		errs = append(errs, FieldError{
			Field:   "history.max_open_conns",
			Message: "max open connections must be at least 1",
		})
	}

	return errs
}

func validateWatch(cfg *WatchConfig) []FieldError {
	var errs []FieldError

	if cfg.Debounce < 0 {
		errs = append(errs, FieldError{
			Field:   "watch.debounce",
			Message: "debounce must be non-negative",
		})
	}

	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "watch.schedule",
				Message: fmt.Sprintf("invalid cron schedule %q: %v", cfg.Schedule, err),
			})
		}
	}

	for i, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("watch.extensions[%d]", i),
				Message: fmt.Sprintf("extension %q must start with '.'", ext),
			})
		}
	}

	return errs
}

func validateTracing(cfg *TracingConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	switch cfg.Sampler {
	case "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Sampler),
		})
	}
	if cfg.Sampler == "ratio" && (cfg.SampleRatio < 0 || cfg.SampleRatio > 1) {
		errs = append(errs, FieldError{
			Field:   "tracing.sample_ratio",
			Message: fmt.Sprintf("sample ratio must be between 0.0 and 1.0, got %g", cfg.SampleRatio),
		})
	}
	if cfg.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "tracing.endpoint",
			Message: "endpoint is required when tracing is enabled",
		})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "tracing.timeout",
			Message: "timeout must be non-negative",
		})
	}

	return errs
}
