package gitctx

import (
	"fmt"
	"os/exec"
	"strings"
)

// Hunk is the diff section for one changed file: the paths from the
// "diff --git" header and the full section text including that header.
type Hunk struct {
	Path    string // new-side path (b/)
	OldPath string // old-side path (a/)
	Body    string
}

// DiffResult holds the collected diff and metadata.
type DiffResult struct {
	Diff  string
	Hunks []Hunk
	Files []string
	Mode  string
	Repo  RepoMeta
}

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// GetRepoMeta collects repository metadata from git.
func GetRepoMeta() (RepoMeta, error) {
	root, err := gitOutput("rev-parse", "--show-toplevel")
	if err != nil {
		return RepoMeta{}, fmt.Errorf("not a git repository: %w", err)
	}
	head, err := gitOutput("rev-parse", "HEAD")
	if err != nil {
		head = "" // new repo with no commits
	}
	branch, err := gitOutput("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = ""
	}
	return RepoMeta{
		Root:   strings.TrimSpace(root),
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}, nil
}

// Unstaged returns the diff of working tree vs index.
func Unstaged() (DiffResult, error) {
	diff, err := gitOutput("diff")
	if err != nil {
		return DiffResult{}, fmt.Errorf("git diff: %w", err)
	}
	return buildResult(diff, "unstaged"), nil
}

// Staged returns the diff of index vs HEAD.
func Staged() (DiffResult, error) {
	diff, err := gitOutput("diff", "--staged")
	if err != nil {
		return DiffResult{}, fmt.Errorf("git diff --staged: %w", err)
	}
	return buildResult(diff, "staged"), nil
}

// FromText wraps an externally obtained unified diff (e.g. a fetched PR diff)
// in a DiffResult so it flows through the same filter and prompt stages.
func FromText(diff, mode string) DiffResult {
	hunks := ParseHunks(diff)
	return DiffResult{
		Diff:  diff,
		Hunks: hunks,
		Files: hunkFiles(hunks),
		Mode:  mode,
	}
}

func buildResult(diff, mode string) DiffResult {
	meta, err := GetRepoMeta()
	if err != nil {
		meta = RepoMeta{}
	}
	hunks := ParseHunks(diff)
	return DiffResult{
		Diff:  diff,
		Hunks: hunks,
		Files: hunkFiles(hunks),
		Mode:  mode,
		Repo:  meta,
	}
}

const diffHeaderPrefix = "diff --git "

// ParseHunks splits a unified diff into per-file sections. Paths come from
// the header's a/ and b/ fields, so deleted files keep a usable path.
func ParseHunks(diff string) []Hunk {
	if strings.TrimSpace(diff) == "" {
		return nil
	}

	var hunks []Hunk
	var current strings.Builder
	var oldPath, newPath string
	seenHeader := false

	flush := func() {
		if !seenHeader || current.Len() == 0 {
			return
		}
		hunks = append(hunks, Hunk{
			Path:    newPath,
			OldPath: oldPath,
			Body:    current.String(),
		})
	}

	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, diffHeaderPrefix) {
			flush()
			current.Reset()
			oldPath, newPath = headerPaths(line)
			seenHeader = true
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	flush()
	return hunks
}

// headerPaths extracts the a/ and b/ paths from a "diff --git a/x b/y" line.
func headerPaths(line string) (oldPath, newPath string) {
	parts := strings.Fields(line)
	if len(parts) < 4 {
		return "", ""
	}
	oldPath = strings.TrimPrefix(parts[2], "a/")
	newPath = strings.TrimPrefix(parts[3], "b/")
	return oldPath, newPath
}

// FilterExcluded returns the hunks whose paths do not end with any excluded
// extension, preserving order. A hunk is dropped when either side of the
// header matches, so deletions of excluded files are skipped too.
func FilterExcluded(hunks []Hunk, exts []string) []Hunk {
	if len(exts) == 0 {
		return hunks
	}
	var kept []Hunk
	for _, h := range hunks {
		if !excluded(h, exts) {
			kept = append(kept, h)
		}
	}
	return kept
}

func excluded(h Hunk, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(h.Path, ext) || strings.HasSuffix(h.OldPath, ext) {
			return true
		}
	}
	return false
}

// JoinHunks reassembles filtered hunks into a single diff text.
func JoinHunks(hunks []Hunk) string {
	var b strings.Builder
	for _, h := range hunks {
		b.WriteString(h.Body)
	}
	return b.String()
}

func hunkFiles(hunks []Hunk) []string {
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

func gitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
