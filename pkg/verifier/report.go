package verifier

import (
	"time"

	"bubu-hq/verifier/pkg/history"
	"bubu-hq/verifier/pkg/schema"
)

// Result is the outcome of validating one experiment configuration.
type Result struct {
	// Index is the zero-based position in the batch.
	Index int `json:"index"`

	// Line is where the document starts in the batch file, or 0.
	Line int `json:"line,omitempty"`

	Violations schema.Violations `json:"violations"`
	Duration   time.Duration     `json:"duration_ns"`
}

// Number is the 1-based experiment number used in progress output.
func (r Result) Number() int {
	return r.Index + 1
}

// Passed reports whether the document had no violations.
func (r Result) Passed() bool {
	return r.Violations.Valid()
}

// Report is the outcome of one batch run.
type Report struct {
	RunID     string        `json:"run_id"`
	Source    string        `json:"source"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Results   []Result      `json:"results"`
}

// Total returns the number of documents verified.
func (r *Report) Total() int {
	return len(r.Results)
}

// Failed reports whether any document has a violation.
func (r *Report) Failed() bool {
	return r.FailedCount() > 0
}

// FailedCount returns the number of documents with violations.
func (r *Report) FailedCount() int {
	n := 0
	for _, res := range r.Results {
		if !res.Passed() {
			n++
		}
	}
	return n
}

// ViolationCount returns the number of violations across all documents.
func (r *Report) ViolationCount() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Violations)
	}
	return n
}

// Record summarizes the report for the run history.
func (r *Report) Record() *history.Record {
	rec := &history.Record{
		RunID:      r.RunID,
		Source:     r.Source,
		StartedAt:  r.StartedAt,
		Duration:   r.Duration,
		Documents:  r.Total(),
		Failed:     r.FailedCount(),
		Violations: r.ViolationCount(),
	}
	for _, res := range r.Results {
		if res.Passed() {
			continue
		}
		rec.Failures = append(rec.Failures, history.Failure{
			Index:    res.Index,
			Line:     res.Line,
			Messages: res.Violations.Messages(),
		})
	}
	return rec
}
