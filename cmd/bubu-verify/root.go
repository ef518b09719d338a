package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bubu-hq/verifier/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "bubu-verify",
	Short: "Verify bubu pipeline experiment configurations",
	Long: `bubu-verify checks batches of bubu pipeline experiment configurations
before they are handed to the pipeline.

Each experiment in a batch is checked for:
  - Required sections and fields, gated by the pipeline stage flags
  - Field types and numeric ranges
  - Unix path syntax and the existence of input paths

Exit status: 0 all experiments valid, 1 violations found, 2 error.`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command and returns the process exit status.
func Execute() int {
	err := rootCmd.Execute()
	if err != nil && !cli.Silent(err) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return cli.ExitCode(err)
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: ./bubu-verify.yaml when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
}
