package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/reviewer-cli/reviewer/internal/review"
)

const (
	reviewStartBanner = "----- AI REVIEW START -----"
	reviewEndBanner   = "----- AI REVIEW END -----"
)

var (
	bannerColor  = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	failColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.Faint)
)

// DisableColors turns off all colored output (for --no-color, NO_COLOR, or
// non-TTY streams).
func DisableColors() {
	color.NoColor = true
}

// PrintResult writes the review feedback to w between the review banners,
// followed by a one-line completion note on stderr.
func PrintResult(w io.Writer, res *review.Result) error {
	ew := &errWriter{w: w}

	ew.println("")
	ew.println(bannerColor.Sprint(reviewStartBanner))
	ew.println(res.Feedback)
	ew.println(bannerColor.Sprint(reviewEndBanner))
	ew.println("")
	if ew.err != nil {
		return ew.err
	}

	dimColor.Fprintf(os.Stderr, "%s/%s completed in %dms (%d tokens)\n",
		res.Provider, res.Model, res.LLMMs, res.TokensUsed)
	return nil
}

// PrintVerdict reports the approval verdict. In pre-commit mode the wording
// tells the user whether the commit will proceed.
func PrintVerdict(w io.Writer, res *review.Result, preCommit bool) {
	switch {
	case res.Approved && preCommit:
		successColor.Fprintln(w, "AI review result: APPROVED. Proceeding with the commit.")
	case res.Approved:
		successColor.Fprintln(w, "AI review result: APPROVED.")
	case preCommit:
		failColor.Fprintln(w, "AI review result: Not approved. Aborting the commit.")
	default:
		failColor.Fprintln(w, "AI review result: Not approved.")
	}
}

// Statusf prints a progress message to stderr.
func Statusf(format string, args ...interface{}) {
	dimColor.Fprintf(os.Stderr, format+"\n", args...)
}

// Errorf prints an error message to stderr.
func Errorf(format string, args ...interface{}) {
	errorColor.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
