package config

import "time"

// Default values for configuration fields.
const (
	// DefaultConfigPath is looked up when --config is not given.
	DefaultConfigPath = "bubu-verify.yaml"

	// Logging defaults
	DefaultLoggingLevel  = "warn"
	DefaultLoggingFormat = "text"

	// Output defaults
	DefaultOutputFormat = "text"
	DefaultOutputColor  = "auto"

	// Validation defaults
	DefaultParallel = 1

	// Metrics defaults
	DefaultMetricsNamespace = "bubu"
	DefaultMetricsSubsystem = "verifier"
	DefaultMetricsPath      = "/metrics"

	// History defaults
	DefaultHistoryDriver       = "sqlite"
	DefaultHistoryPath         = "bubu-verify-history.db"
	DefaultHistoryBusyTimeout  = 5 * time.Second
	DefaultHistoryMaxOpenConns = 4

	// Watch defaults
	DefaultWatchDebounce = 100 * time.Millisecond

	// Tracing defaults
	DefaultTracingSampler     = "always"
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingServiceName = "bubu-verify"
	DefaultTracingTimeout     = 10 * time.Second
)

// DefaultWatchExtensions are the batch file extensions the watcher reacts to.
var DefaultWatchExtensions = []string{".json", ".yaml", ".yml"}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
// Boolean switches default to off and are left alone.
func ApplyDefaults(cfg *Config) {
	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}

	// Output defaults
	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultOutputFormat
	}
	if cfg.Output.Color == "" {
		cfg.Output.Color = DefaultOutputColor
	}

	if cfg.Validation.Parallel == 0 {
		cfg.Validation.Parallel = DefaultParallel
	}

	// Metrics defaults
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// History defaults
	if cfg.History.Driver == "" {
		cfg.History.Driver = DefaultHistoryDriver
	}
	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}
	if cfg.History.BusyTimeout == 0 {
		cfg.History.BusyTimeout = DefaultHistoryBusyTimeout
	}
	if cfg.History.MaxOpenConns == 0 {
		cfg.History.MaxOpenConns = DefaultHistoryMaxOpenConns
	}

	// Watch defaults
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
	if len(cfg.Watch.Extensions) == 0 {
		cfg.Watch.Extensions = append([]string(nil), DefaultWatchExtensions...)
	}

	// Tracing defaults
	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.Endpoint == "" {
		cfg.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Tracing.Timeout == 0 {
		cfg.Tracing.Timeout = DefaultTracingTimeout
	}
}
