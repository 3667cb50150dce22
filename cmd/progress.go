package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// progressReporter shows a spinner with a running star count.
// The spinner only draws when w is a terminal.
type progressReporter struct {
	s *spinner.Spinner
}

func newProgressReporter(w io.Writer, label string) *progressReporter {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + label

	return &progressReporter{s: s}
}

func (p *progressReporter) Start() {
	p.s.Start()
}

// Update replaces the suffix with the cumulative count
func (p *progressReporter) Update(total int) {
	p.s.Lock()
	p.s.Suffix = fmt.Sprintf(" Fetched %d starred repositories...", total)
	p.s.Unlock()
}

func (p *progressReporter) Stop() {
	p.s.Stop()
}
