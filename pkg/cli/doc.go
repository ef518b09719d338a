/*
Package cli provides command-line helpers for bubu-verify.

It maps errors to exit codes, renders verification reports and run history,
and wires shutdown signals into a context.

Exit Codes:

	0  every experiment passed (an empty batch passes)
	1  at least one experiment has violations
	2  usage, configuration or input error; nothing was verified

Report Formatting:

Reports render as text (the classic banner and per-experiment progress),
JSON or JUnit XML:

	formatter, err := cli.NewFormatter(cli.FormatText, cli.NewPalette(os.Stdout, cli.ColorAuto))
	if err != nil {
		return err
	}
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
