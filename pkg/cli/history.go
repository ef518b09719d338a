package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"bubu-hq/verifier/pkg/history"
)

const historyTimeLayout = "2 Jan 2006 15:04:05"

// FormatHistory writes a list of run records as a table or JSON.
func FormatHistory(w io.Writer, records []*history.Record, format OutputFormat) error {
	if format == FormatJSON {
		if records == nil {
			records = []*history.Record{}
		}
		return encodeJSON(w, records)
	}
	if format != FormatText && format != "" {
		return fmt.Errorf("unsupported history format %q (expected text|json)", format)
	}

	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tSTARTED\tSTATUS\tEXPERIMENTS\tFAILED\tVIOLATIONS\tDURATION\tSOURCE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.RunID,
			r.StartedAt.Local().Format(historyTimeLayout),
			status(r),
			r.Documents,
			r.Failed,
			r.Violations,
			r.Duration.Round(time.Millisecond),
			r.Source,
		)
	}
	return tw.Flush()
}

// FormatRecord writes one run record with its failure messages.
func FormatRecord(w io.Writer, r *history.Record, format OutputFormat) error {
	if format == FormatJSON {
		return encodeJSON(w, r)
	}
	if format != FormatText && format != "" {
		return fmt.Errorf("unsupported history format %q (expected text|json)", format)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "Run ID:\t%s\n", r.RunID)
	fmt.Fprintf(tw, "Source:\t%s\n", r.Source)
	fmt.Fprintf(tw, "Started:\t%s\n", r.StartedAt.Local().Format(historyTimeLayout))
	fmt.Fprintf(tw, "Duration:\t%s\n", r.Duration.Round(time.Millisecond))
	fmt.Fprintf(tw, "Status:\t%s\n", status(r))
	fmt.Fprintf(tw, "Experiments:\t%d (%d failed, %d violations)\n", r.Documents, r.Failed, r.Violations)
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, f := range r.Failures {
		header := fmt.Sprintf("\nExperiment %d", f.Index+1)
		if f.Line > 0 {
			header += fmt.Sprintf(" (line %d)", f.Line)
		}
		if _, err := fmt.Fprintln(w, header+":"); err != nil {
			return err
		}
		for _, msg := range f.Messages {
			if _, err := fmt.Fprintf(w, "- %s\n", msg); err != nil {
				return err
			}
		}
	}
	return nil
}

func status(r *history.Record) string {
	if r.Passed() {
		return "passed"
	}
	return "failed"
}

func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
