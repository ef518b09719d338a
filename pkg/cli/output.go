package cli

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"bubu-hq/verifier/pkg/schema"
	"bubu-hq/verifier/pkg/verifier"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatJUnit is JUnit XML output for CI test reporters.
	FormatJUnit OutputFormat = "junit"
)

// ParseFormat validates a --format value. Empty means text.
func ParseFormat(s string) (OutputFormat, error) {
	switch format := OutputFormat(strings.ToLower(strings.TrimSpace(s))); format {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatJUnit:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (expected text|json|junit)", s)
	}
}

// Formatter renders verification outcomes.
type Formatter interface {
	// FormatTo writes a completed report.
	FormatTo(w io.Writer, report *verifier.Report) error

	// FormatError writes an input error that prevented source from being
	// verified.
	FormatError(w io.Writer, source string, err error) error
}

// NewFormatter creates a new formatter for the specified format. The
// palette only affects text output.
func NewFormatter(format OutputFormat, palette Palette) (Formatter, error) {
	switch format {
	case FormatText, "":
		return &TextFormatter{Palette: palette}, nil
	case FormatJSON:
		return &JSONFormatter{Indent: true}, nil
	case FormatJUnit:
		return &JUnitFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// TextFormatter writes the human readable banner, progress and verdicts.
type TextFormatter struct {
	Palette Palette
}

// FormatTo writes report in text format.
func (f *TextFormatter) FormatTo(w io.Writer, report *verifier.Report) error {
	progress := NewProgress(w, f.Palette)
	progress.Start(report.Total())
	for _, res := range report.Results {
		progress.Update(res.Number())
		if res.Passed() {
			progress.Passed()
		} else {
			progress.Failed(res.Violations.Messages())
		}
	}
	return progress.Err()
}

// FormatError writes the error message on its own line.
func (f *TextFormatter) FormatError(w io.Writer, source string, err error) error {
	progress := NewProgress(w, f.Palette)
	progress.Error(err)
	return progress.Err()
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

type jsonReport struct {
	RunID       string           `json:"run_id,omitempty"`
	Source      string           `json:"source"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	DurationMS  float64          `json:"duration_ms"`
	Passed      bool             `json:"passed"`
	Total       int              `json:"total"`
	Failed      int              `json:"failed"`
	Experiments []jsonExperiment `json:"experiments"`
	Error       string           `json:"error,omitempty"`
}

type jsonExperiment struct {
	Number     int             `json:"number"`
	Line       int             `json:"line,omitempty"`
	Passed     bool            `json:"passed"`
	Violations []jsonViolation `json:"violations"`
}

type jsonViolation struct {
	schema.Violation
	Message string `json:"message"`
}

// FormatTo writes report in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, report *verifier.Report) error {
	started := report.StartedAt
	out := jsonReport{
		RunID:       report.RunID,
		Source:      report.Source,
		StartedAt:   &started,
		DurationMS:  milliseconds(report.Duration),
		Passed:      !report.Failed(),
		Total:       report.Total(),
		Failed:      report.FailedCount(),
		Experiments: make([]jsonExperiment, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		exp := jsonExperiment{
			Number:     res.Number(),
			Line:       res.Line,
			Passed:     res.Passed(),
			Violations: make([]jsonViolation, 0, len(res.Violations)),
		}
		for _, v := range res.Violations {
			exp.Violations = append(exp.Violations, jsonViolation{Violation: v, Message: v.Message()})
		}
		out.Experiments = append(out.Experiments, exp)
	}
	return f.encode(w, out)
}

// FormatError writes a failed, empty report carrying the error.
func (f *JSONFormatter) FormatError(w io.Writer, source string, err error) error {
	return f.encode(w, jsonReport{
		Source:      source,
		Experiments: []jsonExperiment{},
		Error:       err.Error(),
	})
}

func (f *JSONFormatter) encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

// JUnitFormatter writes one test suite per batch and one test case per
// experiment.
type JUnitFormatter struct{}

type junitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Errors   int              `xml:"errors,attr"`
	Time     string           `xml:"time,attr"`
	Suites   []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Time      string          `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr,omitempty"`
	Cases     []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitProblem `xml:"failure,omitempty"`
	Error     *junitProblem `xml:"error,omitempty"`
}

type junitProblem struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Text    string `xml:",chardata"`
}

// FormatTo writes report as JUnit XML.
func (f *JUnitFormatter) FormatTo(w io.Writer, report *verifier.Report) error {
	suite := junitTestSuite{
		Name:     report.Source,
		Tests:    report.Total(),
		Failures: report.FailedCount(),
		Time:     seconds(report.Duration),
		Cases:    make([]junitTestCase, 0, len(report.Results)),
	}
	if !report.StartedAt.IsZero() {
		suite.Timestamp = report.StartedAt.UTC().Format(time.RFC3339)
	}

	for _, res := range report.Results {
		tc := junitTestCase{
			Name:      caseName(res),
			Classname: report.Source,
			Time:      seconds(res.Duration),
		}
		if !res.Passed() {
			tc.Failure = &junitProblem{
				Message: fmt.Sprintf("%d violation(s)", len(res.Violations)),
				Type:    "validation",
				Text:    strings.Join(res.Violations.Messages(), "\n"),
			}
		}
		suite.Cases = append(suite.Cases, tc)
	}

	return f.encode(w, suite)
}

// FormatError writes a suite with a single errored case.
func (f *JUnitFormatter) FormatError(w io.Writer, source string, err error) error {
	return f.encode(w, junitTestSuite{
		Name:   source,
		Tests:  1,
		Errors: 1,
		Time:   seconds(0),
		Cases: []junitTestCase{{
			Name:      "load",
			Classname: source,
			Time:      seconds(0),
			Error:     &junitProblem{Message: err.Error(), Type: "input"},
		}},
	})
}

func (f *JUnitFormatter) encode(w io.Writer, suite junitTestSuite) error {
	doc := junitTestSuites{
		Tests:    suite.Tests,
		Failures: suite.Failures,
		Errors:   suite.Errors,
		Time:     suite.Time,
		Suites:   []junitTestSuite{suite},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func caseName(res verifier.Result) string {
	if res.Line > 0 {
		return fmt.Sprintf("experiment %d (line %d)", res.Number(), res.Line)
	}
	return fmt.Sprintf("experiment %d", res.Number())
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
