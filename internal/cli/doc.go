// Package cli wires together the Cobra command tree for the reviewer binary.
//
// It defines the root command and its subcommands (hook, version), binds
// flags, reads configuration, selects the invocation mode (unstaged, staged,
// or pull request), runs the review pipeline, and returns deterministic exit
// codes for pre-commit gating.
package cli
