package review

import (
	"strings"

	"github.com/reviewer-cli/reviewer/internal/gitctx"
)

const systemPrompt = "You are an AI code reviewer. You will receive a Git diff " +
	"and should provide feedback on potential issues, typos, improvements, " +
	"keep it short by focusing on potential errors that could cause production issues. " +
	"If nothing major is preventing the diff from being committed, then just reply " +
	"with only one word: 'APPROVED'."

// SystemPrompt returns the fixed reviewer instructions.
func SystemPrompt() string {
	return systemPrompt
}

// BuildUserPrompt assembles the review request from the filtered hunks.
// Each hunk body carries its own "diff --git" path header, so files stay
// tagged in the prompt. Deterministic: the same hunks always produce the
// same string, and an empty hunk list still yields a well-formed request.
func BuildUserPrompt(hunks []gitctx.Hunk, contextLabel string) string {
	var b strings.Builder
	b.WriteString("Context: ")
	b.WriteString(contextLabel)
	b.WriteString("\nHere is the diff:\n\n")
	for _, h := range hunks {
		b.WriteString(h.Body)
	}
	b.WriteString("\n\nPlease provide your review with suggestions.")
	return b.String()
}
