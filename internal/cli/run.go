package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/reviewer-cli/reviewer/internal/config"
	"github.com/reviewer-cli/reviewer/internal/gitctx"
	"github.com/reviewer-cli/reviewer/internal/github"
	"github.com/reviewer-cli/reviewer/internal/output"
	"github.com/reviewer-cli/reviewer/internal/providers"
	"github.com/reviewer-cli/reviewer/internal/review"
)

// runPipeline drives one review: load config, construct the provider,
// collect and filter the diff, call the provider once, print the result.
// Failures set exitCode; the provider is constructed before any diff
// collection so missing credentials fail before network or git I/O.
func runPipeline(mode runMode) {
	cfg := config.Load(buildOverrides())
	if cfg.NoColor {
		output.DisableColors()
	}

	provider, err := providers.New(cfg.Provider, cfg.Model)
	if err != nil {
		output.Errorf("%v", err)
		if providers.IsAuthError(err) {
			exitCode = ExitAuthError
		} else {
			exitCode = ExitUsageError
		}
		return
	}

	diff, err := collectDiff(mode)
	if err != nil {
		output.Errorf("cannot collect diff: %v", err)
		exitCode = ExitSourceError
		return
	}

	hunks := gitctx.FilterExcluded(diff.Hunks, cfg.ExcludeExts)
	if len(hunks) == 0 {
		fmt.Fprintln(os.Stdout, "No diff found (after filtering). Exiting.")
		return
	}
	diff.Hunks = hunks

	if !cfg.RedactSecrets {
		output.Statusf("WARNING: secret redaction is disabled")
	}

	spinCtx, stopSpinner := context.WithCancel(context.Background())
	spinnerDone := make(chan struct{})
	sp := output.NewSpinner(fmt.Sprintf("Analyzing with %s, please wait...", provider.Name()))
	go func() {
		sp.Run(spinCtx)
		close(spinnerDone)
	}()

	res, err := review.Run(context.Background(), provider, hunks, mode.contextLabel(), diff, cfg)
	stopSpinner()
	<-spinnerDone

	if err != nil {
		output.Errorf("%v", err)
		if providers.IsAuthError(err) {
			exitCode = ExitAuthError
		} else {
			exitCode = ExitUpstreamError
		}
		return
	}

	if err := output.PrintResult(os.Stdout, res); err != nil {
		output.Errorf("writing output: %v", err)
		exitCode = ExitRuntimeError
		return
	}
	output.PrintVerdict(os.Stdout, res, mode.kind == modeStaged)

	if mode.kind == modeStaged && !res.Approved {
		exitCode = ExitBlocked
	}
}

func collectDiff(mode runMode) (gitctx.DiffResult, error) {
	switch mode.kind {
	case modePullRequest:
		ref, err := github.ParsePullURL(mode.url)
		if err != nil {
			return gitctx.DiffResult{}, err
		}
		text, err := github.NewClient().FetchDiff(context.Background(), ref)
		if err != nil {
			return gitctx.DiffResult{}, err
		}
		return gitctx.FromText(text, "pull-request"), nil
	case modeStaged:
		return gitctx.Staged()
	default:
		return gitctx.Unstaged()
	}
}
