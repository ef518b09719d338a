// Package config provides configuration management for bubu-verify.
//
// The configuration shapes how batches are verified and reported: log level,
// report format, parallelism, metrics, run history and the watch loop. It is
// unrelated to the experiment configurations being verified.
//
// # Configuration Loading
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("bubu-verify.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("bubu-verify.yaml")
//
//  3. The way the CLI does it, tolerating a missing default file:
//     cfg, err := config.Resolve(flagPath)
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention BUBU_VERIFY_SECTION_FIELD:
//
//   - BUBU_VERIFY_OUTPUT_FORMAT overrides output.format
//   - BUBU_VERIFY_HISTORY_ENABLED overrides history.enabled
//   - BUBU_VERIFY_WATCH_EXTENSIONS overrides watch.extensions (comma separated)
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Command-line flags (applied by the commands)
//
// Validation runs after step 3 and collects every problem:
//
//	configuration validation failed with 2 errors:
//	  - output.format: invalid output format "xml": must be 'text', 'json', or 'junit'
//	  - watch.schedule: invalid cron schedule "every day": ...
//
// # Example Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
//	output:
//	  format: "junit"
//	  color: "never"
//
//	validation:
//	  parallel: 4
//
//	history:
//	  enabled: true
//	  driver: "sqlite"
//	  path: "/var/lib/bubu/verify.db"
//
//	watch:
//	  debounce: "250ms"
//	  schedule: "*/15 * * * *"
//
//	tracing:
//	  enabled: true
//	  endpoint: "otel-collector:4317"
//	  sampler: "ratio"
//	  sample_ratio: 0.1
package config
