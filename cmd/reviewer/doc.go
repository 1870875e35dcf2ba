// Reviewer sends code diffs to an LLM provider and prints review feedback.
//
// It reviews unstaged working-tree changes, staged changes (for use as a git
// pre-commit hook), or a GitHub pull request identified by URL.
//
// Usage:
//
//	reviewer                                          # review unstaged changes
//	reviewer --pre-commit                             # review staged changes
//	reviewer --url https://github.com/org/repo/pull/12  # review a pull request
//	reviewer hook install                             # install the pre-commit hook
//
// In pre-commit mode the exit status tells the calling hook whether the
// commit may proceed: zero when the review ends with APPROVED, non-zero
// otherwise.
package main
