package output

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
)

const spinnerInterval = 200 * time.Millisecond

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// Spinner animates a single-phase progress indicator on stderr while the
// API call is in flight. On a non-TTY stderr it prints the label once and
// stays silent.
type Spinner struct {
	isTTY bool
	label string
}

// NewSpinner creates a spinner with the given label.
func NewSpinner(label string) *Spinner {
	return &Spinner{
		isTTY: term.IsTerminal(int(os.Stderr.Fd())),
		label: label,
	}
}

// Run animates until the context is cancelled, then clears the line.
func (s *Spinner) Run(ctx context.Context) {
	if !s.isTTY {
		fmt.Fprintln(os.Stderr, s.label)
		<-ctx.Done()
		return
	}

	idx := 0
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(os.Stderr, "\r%*s\r", len(s.label)+2, "")
			return
		case <-ticker.C:
			frame := string(spinnerFrames[idx%len(spinnerFrames)])
			fmt.Fprintf(os.Stderr, "\r%s %s", frame, s.label)
			idx++
		}
	}
}
