// Package gitctx collects unified diffs from the local git repository and
// models them as per-file hunks for filtering and prompt assembly.
package gitctx
