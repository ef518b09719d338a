package cli

import (
	"fmt"
	"io"
)

// Progress writes the batch banner and per-experiment progress lines.
// Write errors are sticky: after the first failure nothing more is written
// and Err returns it.
type Progress struct {
	writer  io.Writer
	palette Palette
	total   int
	err     error
}

// NewProgress creates a progress writer for w.
func NewProgress(w io.Writer, palette Palette) *Progress {
	return &Progress{writer: w, palette: palette}
}

// Start announces a batch of total experiments.
func (p *Progress) Start(total int) {
	p.total = total
	p.println(fmt.Sprintf("Found %d experiments. Running verifier...", total))
}

// Update announces that experiment current (1-based) is being verified.
func (p *Progress) Update(current int) {
	p.println(p.palette.Dim(fmt.Sprintf("Verifying experiment %d/%d", current, p.total)))
}

// Passed reports a valid experiment.
func (p *Progress) Passed() {
	p.println(p.palette.Pass("Experiment configuration validation passed successfully."))
}

// Failed reports an invalid experiment with its messages.
func (p *Progress) Failed(messages []string) {
	p.println(p.palette.Fail("Experiment configuration validation failed with the following errors:"))
	for _, msg := range messages {
		p.println(p.palette.Detail("- " + msg))
	}
}

// Error reports an error that stopped the batch.
func (p *Progress) Error(err error) {
	p.println(p.palette.Fail(err.Error()))
}

// Err returns the first write error.
func (p *Progress) Err() error {
	return p.err
}

func (p *Progress) println(line string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.writer, line)
}
