package config

import "time"

// Config is the root configuration structure for bubu-verify.
// It holds the settings that shape how batches are verified and reported,
// not the experiment configurations being verified.
type Config struct {
	// Logging controls the diagnostic log written to stderr.
	Logging LoggingConfig `yaml:"logging"`

	// Output controls how verification reports are rendered on stdout.
	Output OutputConfig `yaml:"output"`

	// Validation contains engine execution settings.
	Validation ValidationConfig `yaml:"validation"`

	// Metrics contains Prometheus metrics settings.
	Metrics MetricsConfig `yaml:"metrics"`

	// History contains settings for the persistent run history.
	History HistoryConfig `yaml:"history"`

	// Watch contains settings for the watch command.
	Watch WatchConfig `yaml:"watch"`

	// Tracing contains OpenTelemetry tracing settings.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "warn"
	Level string `yaml:"level"`

	// Format is the log output format: "json", "text" or "console".
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource adds source file and line to each log record.
	AddSource bool `yaml:"add_source"`
}

// OutputConfig contains report rendering configuration.
type OutputConfig struct {
	// Format is the report format: "text", "json" or "junit".
	// Default: "text"
	Format string `yaml:"format"`

	// Color controls ANSI colouring of text reports: "auto", "always", "never".
	// Default: "auto"
	Color string `yaml:"color"`
}

// ValidationConfig contains engine execution settings.
type ValidationConfig struct {
	// Parallel is the maximum number of documents validated concurrently.
	// Results are always reported in batch order.
	// Default: 1
	Parallel int `yaml:"parallel"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled turns on metric collection.
	Enabled bool `yaml:"enabled"`

	// Namespace is the Prometheus metric namespace.
	// Default: "bubu"
	Namespace string `yaml:"namespace"`

	// Subsystem is the Prometheus metric subsystem.
	// Default: "verifier"
	Subsystem string `yaml:"subsystem"`

	// Textfile, when set, is a path the metrics are written to after each
	// run in the node_exporter textfile format.
	Textfile string `yaml:"textfile"`

	// ListenAddress is where the watch command serves metrics.
	// Empty disables the endpoint.
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// HistoryConfig contains run history configuration.
type HistoryConfig struct {
	// Enabled records every run in the history store.
	Enabled bool `yaml:"enabled"`

	// Driver is the database/sql driver: "sqlite" (pure Go) or "sqlite3" (cgo).
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the database file path.
	// Default: "bubu-verify-history.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long a writer waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// MaxOpenConns limits open database connections.
	// Default: 4
	MaxOpenConns int `yaml:"max_open_conns"`
}

// WatchConfig contains watch command configuration.
type WatchConfig struct {
	// Debounce is the quiet period after a file change before re-validating.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`

	// Schedule is an optional cron expression for periodic re-validation.
	// Referenced directories and files can change without the batch file
	// changing, so a schedule catches drift. Empty disables it.
	Schedule string `yaml:"schedule"`

	// Extensions lists the file extensions that trigger re-validation.
	// Default: [".json", ".yaml", ".yml"]
	Extensions []string `yaml:"extensions"`
}

// TracingConfig contains OpenTelemetry tracing configuration. Each run is
// one trace with a span per experiment.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy: "always", "never", "ratio".
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of runs to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "bubu-verify"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the collector connection.
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
