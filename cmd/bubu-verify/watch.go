package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"bubu-hq/verifier/pkg/cli"
	"bubu-hq/verifier/pkg/history"
	"bubu-hq/verifier/pkg/server"
	"bubu-hq/verifier/pkg/telemetry/health"
	"bubu-hq/verifier/pkg/verifier"
	"bubu-hq/verifier/pkg/watch"
)

var watchFlags struct {
	outputFlags
	schedule string
	debounce time.Duration
	listen   string
}

var watchCmd = &cobra.Command{
	Use:   "watch <batch-file|directory>",
	Short: "Re-verify batches when they change",
	Long: `Verify a batch file, or every batch file in a directory, then keep
verifying on every change and, optionally, on a cron schedule. A schedule
catches input paths that appear or disappear without the batch changing.

With --listen (or metrics.listen_address) the command serves:
  /metrics   Prometheus metrics
  /health    liveness
  /ready     503 while any batch is failing
  /status    latest verdict per batch
  /version   build information

Examples:
  # Watch one batch
  bubu-verify watch experiments.yaml

  # Watch a directory and re-check every night at 2 AM
  bubu-verify watch configs/ --schedule "0 2 * * *"

  # Serve probes and metrics
  bubu-verify watch configs/ --listen :9464`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.format, "format", "f", "", "report format: text, json, junit")
	watchCmd.Flags().StringVar(&watchFlags.color, "color", "", "colour text reports: auto, always, never")
	watchCmd.Flags().IntVarP(&watchFlags.parallel, "parallel", "p", 0, "experiments validated concurrently")
	watchCmd.Flags().StringVar(&watchFlags.schedule, "schedule", "", `cron schedule for periodic re-verification, e.g. "@every 1h"`)
	watchCmd.Flags().DurationVar(&watchFlags.debounce, "debounce", 0, "quiet period before a change is verified")
	watchCmd.Flags().StringVarP(&watchFlags.listen, "listen", "l", "", "serve metrics and health probes on this address")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	watchFlags.apply(cfg)
	if watchFlags.schedule != "" {
		cfg.Watch.Schedule = watchFlags.schedule
	}
	if watchFlags.debounce > 0 {
		cfg.Watch.Debounce = watchFlags.debounce
	}
	if watchFlags.listen != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.ListenAddress = watchFlags.listen
	}

	out := cmd.OutOrStdout()
	formatter, palette, err := newFormatter(cfg, out)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	tracker := health.NewTracker()
	checker := health.New(0)
	checker.RegisterCheck("batches", tracker.Check)
	if a.history != nil {
		checker.RegisterCheck("history", func(ctx context.Context) error {
			_, err := a.history.List(ctx, history.Query{Limit: 1})
			return err
		})
	}

	var mu sync.Mutex
	onReport := func(path string, report *verifier.Report, err error) {
		mu.Lock()
		defer mu.Unlock()

		if _, text := formatter.(*cli.TextFormatter); text {
			fmt.Fprintln(out, palette.Dim("==> "+path))
		}

		var ferr error
		switch {
		case err != nil:
			tracker.Errored(path, err)
			ferr = formatter.FormatError(out, path, err)
		case report.Failed():
			tracker.Failed(path, report.RunID, report.FailedCount(), report.ViolationCount())
			ferr = formatter.FormatTo(out, report)
		default:
			tracker.Passed(path, report.RunID)
			ferr = formatter.FormatTo(out, report)
		}
		if ferr != nil {
			a.logger.Warn("failed to write report", "path", path, "error", ferr)
		}
		a.writeTextfile()
	}

	session, err := watch.NewSession(watch.SessionConfig{
		Path:     args[0],
		Runner:   a.runner(),
		Settings: cfg.Watch,
		Logger:   a.logger,
		OnReport: onReport,
	})
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Metrics.ListenAddress != "" {
		collector := a.metrics
		if !cfg.Metrics.Enabled {
			collector = nil
		}
		srv := server.New(server.Config{
			Address:     cfg.Metrics.ListenAddress,
			MetricsPath: cfg.Metrics.Path,
			Version: health.VersionInfo{
				Version:   Version,
				Commit:    GitCommit,
				BuildTime: BuildDate,
			},
		}, collector, checker, tracker, a.logger)
		g.Go(func() error {
			return srv.Start(gctx)
		})
	}
	g.Go(func() error {
		return session.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return cli.NewCommandError("watch", err)
	}
	return nil
}
