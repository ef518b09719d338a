package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "BUBU_VERIFY_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// Environment variables are not consulted; use LoadConfigWithEnvOverrides
// for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention BUBU_VERIFY_SECTION_FIELD (e.g., BUBU_VERIFY_OUTPUT_FORMAT) and
// always take precedence over the file.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// Resolve loads the configuration the CLI should run with. An explicit path
// must exist. When path is empty the default path is tried and, if absent,
// built-in defaults are used. Environment overrides apply in both cases.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return LoadConfigWithEnvOverrides(path)
	}

	if _, err := os.Stat(DefaultConfigPath); err == nil {
		return LoadConfigWithEnvOverrides(DefaultConfigPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", DefaultConfigPath, err)
	}

	cfg := Default()
	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Logging overrides
	if val := getenv("LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := getenv("LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
	if val := getenv("LOGGING_ADD_SOURCE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Logging.AddSource = b
		}
	}

	// Output overrides
	if val := getenv("OUTPUT_FORMAT"); val != "" {
		cfg.Output.Format = val
	}
	if val := getenv("OUTPUT_COLOR"); val != "" {
		cfg.Output.Color = val
	}

	if val := getenv("VALIDATION_PARALLEL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Validation.Parallel = i
		}
	}

	// Metrics overrides
	if val := getenv("METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := getenv("METRICS_NAMESPACE"); val != "" {
		cfg.Metrics.Namespace = val
	}
	if val := getenv("METRICS_SUBSYSTEM"); val != "" {
		cfg.Metrics.Subsystem = val
	}
	if val := getenv("METRICS_TEXTFILE"); val != "" {
		cfg.Metrics.Textfile = val
	}
	if val := getenv("METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Metrics.ListenAddress = val
	}
	if val := getenv("METRICS_PATH"); val != "" {
		cfg.Metrics.Path = val
	}

	// History overrides
	if val := getenv("HISTORY_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.History.Enabled = b
		}
	}
	if val := getenv("HISTORY_DRIVER"); val != "" {
		cfg.History.Driver = val
	}
	if val := getenv("HISTORY_PATH"); val != "" {
		cfg.History.Path = val
	}
	if val := getenv("HISTORY_BUSY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.History.BusyTimeout = d
		}
	}
	if val := getenv("HISTORY_MAX_OPEN_CONNS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.History.MaxOpenConns = i
		}
	}

	// Watch overrides
	if val := getenv("WATCH_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Watch.Debounce = d
		}
	}
	if val := getenv("WATCH_SCHEDULE"); val != "" {
		cfg.Watch.Schedule = val
	}
	if val := getenv("WATCH_EXTENSIONS"); val != "" {
		var exts []string
		for _, ext := range strings.Split(val, ",") {
			if ext = strings.TrimSpace(ext); ext != "" {
				exts = append(exts, ext)
			}
		}
		cfg.Watch.Extensions = exts
	}

	// Tracing overrides
	if val := getenv("TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Tracing.Enabled = b
		}
	}
	if val := getenv("TRACING_SAMPLER"); val != "" {
		cfg.Tracing.Sampler = val
	}
	if val := getenv("TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Tracing.SampleRatio = f
		}
	}
	if val := getenv("TRACING_ENDPOINT"); val != "" {
		cfg.Tracing.Endpoint = val
	}
	if val := getenv("TRACING_SERVICE_NAME"); val != "" {
		cfg.Tracing.ServiceName = val
	}
	if val := getenv("TRACING_INSECURE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Tracing.Insecure = b
		}
	}
	if val := getenv("TRACING_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Tracing.Timeout = d
		}
	}
}

func getenv(key string) string {
	return os.Getenv(EnvPrefix + key)
}
