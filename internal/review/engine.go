package review

import (
	"context"
	"fmt"
	"time"

	"github.com/reviewer-cli/reviewer/internal/config"
	"github.com/reviewer-cli/reviewer/internal/gitctx"
	"github.com/reviewer-cli/reviewer/internal/providers"
	"github.com/reviewer-cli/reviewer/internal/redact"
)

// Run sends the filtered hunks to the provider and returns the result.
// Exactly one completion call is made; any failure is terminal.
func Run(ctx context.Context, provider providers.Reviewer, hunks []gitctx.Hunk, contextLabel string, diff gitctx.DiffResult, cfg config.Config) (*Result, error) {
	if cfg.RedactSecrets {
		hunks = redactHunks(hunks)
	}

	req := providers.ReviewRequest{
		SystemPrompt: SystemPrompt(),
		UserPrompt:   BuildUserPrompt(hunks, contextLabel),
		MaxTokens:    cfg.MaxTokens,
		Temperature:  cfg.Temperature,
	}

	start := time.Now()
	resp, err := provider.Review(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("provider review: %w", err)
	}

	return &Result{
		Feedback:   resp.Content,
		Approved:   IsApproved(resp.Content),
		Provider:   provider.Name(),
		Model:      cfg.Model,
		TokensUsed: resp.TokensUsed,
		LLMMs:      time.Since(start).Milliseconds(),
		Mode:       diff.Mode,
		Files:      hunkPaths(hunks),
	}, nil
}

func redactHunks(hunks []gitctx.Hunk) []gitctx.Hunk {
	out := make([]gitctx.Hunk, len(hunks))
	for i, h := range hunks {
		h.Body = redact.Secrets(h.Body)
		out[i] = h
	}
	return out
}

func hunkPaths(hunks []gitctx.Hunk) []string {
	seen := make(map[string]bool)
	var files []string
	for _, h := range hunks {
		if h.Path == "" || seen[h.Path] {
			continue
		}
		seen[h.Path] = true
		files = append(files, h.Path)
	}
	return files
}
