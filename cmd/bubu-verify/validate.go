package main

import (
	"github.com/spf13/cobra"

	"bubu-hq/verifier/pkg/cli"
)

var validateFlags struct {
	outputFlags
	history  bool
	textfile string
}

var validateCmd = &cobra.Command{
	Use:   "validate <batch-file>",
	Short: "Verify a batch of experiment configurations",
	Long: `Verify every experiment configuration in a batch file.

The batch is a JSON or YAML file whose root is an array of experiments.
Files ending in .json are parsed as JSON, .yaml and .yml as YAML; other
files are sniffed.

Examples:
  # Verify a batch
  bubu-verify validate experiments.json

  # JSON report for scripts
  bubu-verify validate experiments.yaml --format json

  # JUnit report for CI, four experiments at a time
  bubu-verify validate experiments.yaml --format junit --parallel 4

  # Record the run in the history database
  bubu-verify validate experiments.json --history`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.format, "format", "f", "", "report format: text, json, junit (default from config: text)")
	validateCmd.Flags().StringVar(&validateFlags.color, "color", "", "colour text reports: auto, always, never")
	validateCmd.Flags().IntVarP(&validateFlags.parallel, "parallel", "p", 0, "experiments validated concurrently")
	validateCmd.Flags().BoolVar(&validateFlags.history, "history", false, "record the run in the history store")
	validateCmd.Flags().StringVar(&validateFlags.textfile, "metrics-textfile", "", "write Prometheus metrics to this file after the run")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	validateFlags.apply(cfg)
	if validateFlags.history {
		cfg.History.Enabled = true
	}
	if validateFlags.textfile != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Textfile = validateFlags.textfile
	}

	out := cmd.OutOrStdout()
	formatter, _, err := newFormatter(cfg, out)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	source := args[0]
	report, err := a.runner().RunFile(ctx, source)
	defer a.writeTextfile()
	if err != nil {
		if ferr := formatter.FormatError(out, source, err); ferr != nil {
			return ferr
		}
		return cli.Reported(err)
	}

	if err := formatter.FormatTo(out, report); err != nil {
		return err
	}
	if report.Failed() {
		return cli.ErrViolations
	}
	return nil
}
