package main

import (
	"context"
	"fmt"
	"io"

	"bubu-hq/verifier/pkg/cli"
	"bubu-hq/verifier/pkg/config"
	"bubu-hq/verifier/pkg/history"
	"bubu-hq/verifier/pkg/schema"
	"bubu-hq/verifier/pkg/telemetry/logging"
	"bubu-hq/verifier/pkg/telemetry/metrics"
	"bubu-hq/verifier/pkg/telemetry/tracing"
	"bubu-hq/verifier/pkg/verifier"
)

// outputFlags are shared by commands that render reports.
type outputFlags struct {
	format   string
	color    string
	parallel int
}

// apply overrides the config file with flags the user set.
func (f *outputFlags) apply(cfg *config.Config) {
	if f.format != "" {
		cfg.Output.Format = f.format
	}
	if f.color != "" {
		cfg.Output.Color = f.color
	}
	if f.parallel > 0 {
		cfg.Validation.Parallel = f.parallel
	}
}

// loadConfig resolves the settings file and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Resolve(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// newFormatter builds the report formatter for w from the output settings.
func newFormatter(cfg *config.Config, w io.Writer) (cli.Formatter, cli.Palette, error) {
	format, err := cli.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, cli.Palette{}, cli.NewConfigError("output.format", err.Error())
	}
	mode, err := cli.ParseColorMode(cfg.Output.Color)
	if err != nil {
		return nil, cli.Palette{}, cli.NewConfigError("output.color", err.Error())
	}

	palette := cli.NewPalette(w, mode)
	formatter, err := cli.NewFormatter(format, palette)
	if err != nil {
		return nil, cli.Palette{}, cli.NewConfigError("output.format", err.Error())
	}
	return formatter, palette, nil
}

// app holds the collaborators a verification command runs with.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	metrics *metrics.Collector
	history history.Store
	tracer  *tracing.Tracer
}

func newApp(cfg *config.Config, stderr io.Writer) (*app, error) {
	logger, err := logging.New(logging.FromConfig(cfg.Logging, stderr))
	if err != nil {
		return nil, cli.NewConfigError("logging", err.Error())
	}

	tracer, err := tracing.New(&cfg.Tracing)
	if err != nil {
		return nil, cli.NewConfigError("tracing", err.Error())
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.NewCollector(&cfg.Metrics, nil),
		tracer:  tracer,
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History)
		if err != nil {
			a.Close()
			return nil, cli.NewCommandError("history", err)
		}
		a.history = store
	}

	logger.Debug("configuration loaded",
		"config", cfgFile,
		"parallel", cfg.Validation.Parallel,
		"history", cfg.History.Enabled,
		"tracing", tracer.Enabled(),
	)
	return a, nil
}

func (a *app) runner() *verifier.Runner {
	return verifier.NewRunner(schema.New(), verifier.Options{
		Parallel: a.cfg.Validation.Parallel,
		Logger:   a.logger,
		Metrics:  a.metrics,
		History:  a.history,
		Tracer:   a.tracer,
	})
}

// writeTextfile exports metrics when a textfile path is configured. Export
// failures never change the verdict.
func (a *app) writeTextfile() {
	if a.cfg.Metrics.Textfile == "" {
		return
	}
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		a.logger.Warn("failed to write metrics textfile", "path", a.cfg.Metrics.Textfile, "error", err)
	}
}

// Close flushes traces and closes the history store.
func (a *app) Close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Warn("failed to close history store", "error", err)
		}
	}

	timeout := a.cfg.Tracing.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTracingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("failed to flush traces", "error", fmt.Errorf("tracing shutdown: %w", err))
	}
}
