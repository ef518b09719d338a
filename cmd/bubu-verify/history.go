package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bubu-hq/verifier/pkg/cli"
	"bubu-hq/verifier/pkg/history"
)

var historyFlags struct {
	source    string
	since     time.Duration
	limit     int
	format    string
	olderThan time.Duration
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded verification runs",
	Long: `Inspect and maintain the run history written by validate --history
and by watch when history is enabled.

Subcommands:
  list   - List recent runs
  show   - Show one run with its failure messages
  prune  - Delete old runs`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Long: `List recent runs, newest first.

Examples:
  # Last 20 runs
  bubu-verify history list

  # Runs of one batch during the last day
  bubu-verify history list --source experiments.json --since 24h`,
	Args: cobra.NoArgs,
	RunE: listHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run",
	Args:  cobra.ExactArgs(1),
	RunE:  showHistory,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old runs",
	Long: `Delete runs that started before now minus --older-than.

Examples:
  # Keep one week of history
  bubu-verify history prune --older-than 168h`,
	Args: cobra.NoArgs,
	RunE: pruneHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyPruneCmd)

	historyListCmd.Flags().StringVar(&historyFlags.source, "source", "", "only runs of this batch file")
	historyListCmd.Flags().DurationVar(&historyFlags.since, "since", 0, "only runs started within this duration")
	historyListCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "max results")
	historyListCmd.Flags().StringVar(&historyFlags.format, "format", "text", "output format: text, json")

	historyShowCmd.Flags().StringVar(&historyFlags.format, "format", "text", "output format: text, json")

	historyPruneCmd.Flags().DurationVar(&historyFlags.olderThan, "older-than", 0, "delete runs older than this duration (required)")
}

func openHistory() (history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, cli.NewConfigError("history.enabled", "history is disabled; set history.enabled: true")
	}
	if cfg.History.Driver == "memory" {
		return nil, cli.NewConfigError("history.driver", "the memory driver keeps no runs between invocations")
	}

	store, err := history.Open(cfg.History)
	if err != nil {
		return nil, cli.NewCommandError("history", err)
	}
	return store, nil
}

func listHistory(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(historyFlags.format)
	if err != nil {
		return cli.NewConfigError("format", err.Error())
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	q := history.Query{
		Source: historyFlags.source,
		Limit:  historyFlags.limit,
	}
	if historyFlags.since > 0 {
		q.Since = time.Now().Add(-historyFlags.since)
	}

	records, err := store.List(cmd.Context(), q)
	if err != nil {
		return cli.NewCommandError("history list", err)
	}
	return cli.FormatHistory(cmd.OutOrStdout(), records, format)
}

func showHistory(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(historyFlags.format)
	if err != nil {
		return cli.NewConfigError("format", err.Error())
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	record, err := store.Get(cmd.Context(), args[0])
	if errors.Is(err, history.ErrNotFound) {
		return cli.NewCommandError("history show", fmt.Errorf("run %q not found", args[0]))
	}
	if err != nil {
		return cli.NewCommandError("history show", err)
	}
	return cli.FormatRecord(cmd.OutOrStdout(), record, format)
}

func pruneHistory(cmd *cobra.Command, args []string) error {
	if historyFlags.olderThan <= 0 {
		return cli.NewConfigError("older-than", "--older-than must be a positive duration")
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	cutoff := time.Now().Add(-historyFlags.olderThan)
	deleted, err := store.Prune(cmd.Context(), cutoff)
	if err != nil {
		return cli.NewCommandError("history prune", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d run(s) started before %s\n", deleted, cutoff.Format(time.RFC3339))
	return nil
}
