package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

// Exit codes. Anything non-zero tells a pre-commit hook to block the commit.
const (
	ExitSuccess       = 0
	ExitBlocked       = 1
	ExitUsageError    = 2
	ExitAuthError     = 3
	ExitSourceError   = 4
	ExitUpstreamError = 5
	ExitRuntimeError  = 6
)

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var (
	flagPreCommit bool
	flagURL       string
	flagProvider  string
	flagModel     string
	flagExclude   string
	flagMaxTokens int
	flagNoRedact  bool
	flagNoColor   bool
)

var rootCmd = &cobra.Command{
	Use:   "reviewer",
	Short: "AI review of code diffs",
	Long: "Reviewer sends a code diff to an LLM provider and prints review feedback.\n" +
		"With no arguments it reviews unstaged changes; --pre-commit reviews staged\n" +
		"changes for a git hook; --url reviews a GitHub pull request.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagPreCommit && flagURL != "" {
			return fmt.Errorf("--pre-commit and --url are mutually exclusive")
		}
		runPipeline(selectMode())
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print reviewer version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "reviewer version %s\n", version)
	},
}

func init() {
	rootCmd.Flags().BoolVar(&flagPreCommit, "pre-commit", false, "Review staged changes (for a git pre-commit hook)")
	rootCmd.Flags().StringVar(&flagURL, "url", "", "GitHub pull request URL (e.g. https://github.com/org/repo/pull/123)")
	rootCmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (openai, anthropic, gemini, ollama)")
	rootCmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	rootCmd.Flags().StringVar(&flagExclude, "exclude", "", "Additional excluded file extensions (comma-separated)")
	rootCmd.Flags().IntVar(&flagMaxTokens, "max-tokens", 0, "Maximum response tokens")
	rootCmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	rootCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitUsageError
	}

	return exitCode
}

// modeKind enumerates the three invocation modes.
type modeKind int

const (
	modeUnstaged modeKind = iota
	modeStaged
	modePullRequest
)

// runMode is the invocation mode plus its mode-specific argument.
type runMode struct {
	kind modeKind
	url  string
}

func selectMode() runMode {
	switch {
	case flagURL != "":
		return runMode{kind: modePullRequest, url: flagURL}
	case flagPreCommit:
		return runMode{kind: modeStaged}
	default:
		return runMode{kind: modeUnstaged}
	}
}

// contextLabel is the descriptor included in the prompt.
func (m runMode) contextLabel() string {
	switch m.kind {
	case modePullRequest:
		return "GitHub PR URL: " + m.url
	case modeStaged:
		return "Staged changes (pre-commit)"
	default:
		return "Unstaged changes (local working directory)"
	}
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagExclude != "" {
		m["exclude"] = flagExclude
	}
	if flagMaxTokens > 0 {
		m["maxTokens"] = fmt.Sprintf("%d", flagMaxTokens)
	}
	if flagNoRedact {
		m["noRedact"] = "true"
	}
	if flagNoColor {
		m["noColor"] = "true"
	}
	return m
}
