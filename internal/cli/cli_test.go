package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

// resetState resets package-level flag variables and the exit code.
func resetState() {
	flagPreCommit = false
	flagURL = ""
	flagProvider = ""
	flagModel = ""
	flagExclude = ""
	flagMaxTokens = 0
	flagNoRedact = false
	flagNoColor = false
	exitCode = ExitSuccess
}

// setupRepo creates a git repository in a temp dir with one committed file.
func setupRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	run("init")
	run("checkout", "-b", "main")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# demo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", ".")
	run("commit", "-m", "initial")
	return dir
}

// inDir changes into dir for the duration of the test.
func inDir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

// gitIn runs a git command in dir, failing the test on error.
func gitIn(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

// captureStdout redirects os.Stdout while fn runs and returns what was written.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	_ = w.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// chatRequest mirrors the OpenAI-style request body for assertions.
type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// newChatServer returns a server that answers every chat completion with
// the given content and records the number of calls and the last request.
func newChatServer(t *testing.T, content string, calls *atomic.Int32, lastReq *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		if lastReq != nil {
			_ = json.Unmarshal(body, lastReq)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": ` + mustJSON(content) + `}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// --- mode selection ---

func TestSelectMode(t *testing.T) {
	tests := []struct {
		name      string
		preCommit bool
		url       string
		wantKind  modeKind
	}{
		{"default is unstaged", false, "", modeUnstaged},
		{"pre-commit flag selects staged", true, "", modeStaged},
		{"url selects pull request", false, "https://github.com/o/r/pull/1", modePullRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetState()
			flagPreCommit = tt.preCommit
			flagURL = tt.url
			got := selectMode()
			if got.kind != tt.wantKind {
				t.Errorf("selectMode().kind = %d, want %d", got.kind, tt.wantKind)
			}
			if got.url != tt.url {
				t.Errorf("selectMode().url = %q, want %q", got.url, tt.url)
			}
		})
	}
}

func TestRunModeContextLabel(t *testing.T) {
	tests := []struct {
		name string
		mode runMode
		want string
	}{
		{"unstaged", runMode{kind: modeUnstaged}, "Unstaged changes (local working directory)"},
		{"staged", runMode{kind: modeStaged}, "Staged changes (pre-commit)"},
		{"pull request", runMode{kind: modePullRequest, url: "https://github.com/o/r/pull/7"},
			"GitHub PR URL: https://github.com/o/r/pull/7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.contextLabel(); got != tt.want {
				t.Errorf("contextLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

// --- buildOverrides ---

func TestBuildOverrides_NoFlags(t *testing.T) {
	resetState()
	m := buildOverrides()
	if len(m) != 0 {
		t.Errorf("buildOverrides() with no flags = %v, want empty map", m)
	}
}

func TestBuildOverrides_AllFlags(t *testing.T) {
	resetState()
	flagProvider = "anthropic"
	flagModel = "claude-sonnet-4-5"
	flagExclude = ".lock,.sum"
	flagMaxTokens = 4000
	flagNoRedact = true
	flagNoColor = true

	m := buildOverrides()
	want := map[string]string{
		"provider":  "anthropic",
		"model":     "claude-sonnet-4-5",
		"exclude":   ".lock,.sum",
		"maxTokens": "4000",
		"noRedact":  "true",
		"noColor":   "true",
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("buildOverrides()[%q] = %q, want %q", k, m[k], v)
		}
	}
	if len(m) != len(want) {
		t.Errorf("buildOverrides() has %d entries, want %d", len(m), len(want))
	}
}

// --- pipeline ---

func TestRunPipeline_StagedExcludesBinaryAssets(t *testing.T) {
	resetState()
	var calls atomic.Int32
	var lastReq chatRequest
	srv := newChatServer(t, "APPROVED", &calls, &lastReq)
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("REVIEWER_OPENAI_BASE_URL", srv.URL)

	dir := setupRepo(t)
	if err := os.WriteFile(filepath.Join(dir, "app.py"), []byte("print('hello')\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "logo.png"), []byte("\x89PNG fake image data"), 0o644); err != nil {
		t.Fatal(err)
	}
	gitIn(t, dir, "add", ".")
	inDir(t, dir)

	out := captureStdout(t, func() {
		runPipeline(runMode{kind: modeStaged})
	})

	if got := calls.Load(); got != 1 {
		t.Fatalf("provider called %d times, want 1", got)
	}
	if exitCode != ExitSuccess {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitSuccess)
	}
	if len(lastReq.Messages) != 2 {
		t.Fatalf("request has %d messages, want 2", len(lastReq.Messages))
	}
	userPrompt := lastReq.Messages[1].Content
	if !strings.Contains(userPrompt, "app.py") {
		t.Error("prompt should include the app.py diff")
	}
	if strings.Contains(userPrompt, "logo.png") {
		t.Error("prompt should not include the excluded logo.png diff")
	}
	if !strings.Contains(userPrompt, "Staged changes (pre-commit)") {
		t.Error("prompt should carry the staged context label")
	}
	if !strings.Contains(out, "----- AI REVIEW START -----") {
		t.Error("output missing review start banner")
	}
	if !strings.Contains(out, "APPROVED") {
		t.Error("output missing feedback text")
	}
}

func TestRunPipeline_NotApprovedBlocksCommit(t *testing.T) {
	resetState()
	var calls atomic.Int32
	srv := newChatServer(t, "The error handling in app.py needs work.", &calls, nil)
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("REVIEWER_OPENAI_BASE_URL", srv.URL)

	dir := setupRepo(t)
	if err := os.WriteFile(filepath.Join(dir, "app.py"), []byte("print('hi')\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	gitIn(t, dir, "add", ".")
	inDir(t, dir)

	_ = captureStdout(t, func() {
		runPipeline(runMode{kind: modeStaged})
	})

	if exitCode != ExitBlocked {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitBlocked)
	}
}

func TestRunPipeline_NotApprovedUnstagedStillSucceeds(t *testing.T) {
	resetState()
	var calls atomic.Int32
	srv := newChatServer(t, "Consider adding tests.", &calls, nil)
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("REVIEWER_OPENAI_BASE_URL", srv.URL)

	dir := setupRepo(t)
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# demo\nmore\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	inDir(t, dir)

	_ = captureStdout(t, func() {
		runPipeline(runMode{kind: modeUnstaged})
	})

	if exitCode != ExitSuccess {
		t.Errorf("exitCode = %d, want %d (approval gate applies to pre-commit only)", exitCode, ExitSuccess)
	}
}

func TestRunPipeline_MissingCredentialFailsBeforeNetwork(t *testing.T) {
	resetState()
	var calls atomic.Int32
	srv := newChatServer(t, "APPROVED", &calls, nil)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("REVIEWER_OPENAI_BASE_URL", srv.URL)

	dir := setupRepo(t)
	inDir(t, dir)

	_ = captureStdout(t, func() {
		runPipeline(runMode{kind: modeUnstaged})
	})

	if exitCode != ExitAuthError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitAuthError)
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("provider called %d times, want 0", got)
	}
}

func TestRunPipeline_EmptyDiffExitsCleanly(t *testing.T) {
	resetState()
	var calls atomic.Int32
	srv := newChatServer(t, "APPROVED", &calls, nil)
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("REVIEWER_OPENAI_BASE_URL", srv.URL)

	dir := setupRepo(t)
	inDir(t, dir)

	out := captureStdout(t, func() {
		runPipeline(runMode{kind: modeStaged})
	})

	if exitCode != ExitSuccess {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitSuccess)
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("provider called %d times, want 0", got)
	}
	if !strings.Contains(out, "No diff found (after filtering). Exiting.") {
		t.Errorf("output = %q, want empty-diff message", out)
	}
}

func TestRunPipeline_OnlyExcludedFilesExitsCleanly(t *testing.T) {
	resetState()
	var calls atomic.Int32
	srv := newChatServer(t, "APPROVED", &calls, nil)
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("REVIEWER_OPENAI_BASE_URL", srv.URL)

	dir := setupRepo(t)
	if err := os.WriteFile(filepath.Join(dir, "icon.svg"), []byte("<svg/>\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	gitIn(t, dir, "add", ".")
	inDir(t, dir)

	out := captureStdout(t, func() {
		runPipeline(runMode{kind: modeStaged})
	})

	if exitCode != ExitSuccess {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitSuccess)
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("provider called %d times, want 0", got)
	}
	if !strings.Contains(out, "No diff found (after filtering). Exiting.") {
		t.Errorf("output = %q, want empty-diff message", out)
	}
}

func TestRunPipeline_NotARepo(t *testing.T) {
	resetState()
	t.Setenv("OPENAI_API_KEY", "test-key")
	inDir(t, t.TempDir())

	_ = captureStdout(t, func() {
		runPipeline(runMode{kind: modeUnstaged})
	})

	if exitCode != ExitSourceError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitSourceError)
	}
}

func TestRunPipeline_PullRequest(t *testing.T) {
	resetState()
	var calls atomic.Int32
	var lastReq chatRequest
	chat := newChatServer(t, "APPROVED", &calls, &lastReq)

	const prDiff = "diff --git a/main.go b/main.go\n" +
		"--- a/main.go\n+++ b/main.go\n@@ -1 +1 @@\n-old\n+new\n"
	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octo/demo/pulls/42" {
			t.Errorf("unexpected GitHub path %q", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.github.v3.diff" {
			t.Errorf("Accept header = %q, want diff media type", got)
		}
		_, _ = w.Write([]byte(prDiff))
	}))
	t.Cleanup(gh.Close)

	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("REVIEWER_OPENAI_BASE_URL", chat.URL)
	t.Setenv("GITHUB_API_URL", gh.URL)
	t.Setenv("GITHUB_TOKEN", "")

	out := captureStdout(t, func() {
		runPipeline(runMode{kind: modePullRequest, url: "https://github.com/octo/demo/pull/42"})
	})

	if exitCode != ExitSuccess {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitSuccess)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("provider called %d times, want 1", got)
	}
	userPrompt := lastReq.Messages[1].Content
	if !strings.Contains(userPrompt, "GitHub PR URL: https://github.com/octo/demo/pull/42") {
		t.Error("prompt should carry the PR context label")
	}
	if !strings.Contains(userPrompt, "main.go") {
		t.Error("prompt should include the PR diff")
	}
	if !strings.Contains(out, "----- AI REVIEW END -----") {
		t.Error("output missing review end banner")
	}
}

func TestRunPipeline_MalformedURL(t *testing.T) {
	resetState()
	t.Setenv("OPENAI_API_KEY", "test-key")

	_ = captureStdout(t, func() {
		runPipeline(runMode{kind: modePullRequest, url: "https://github.com/octo/demo/issues/42"})
	})

	if exitCode != ExitSourceError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitSourceError)
	}
}

func TestRunPipeline_UpstreamError(t *testing.T) {
	resetState()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error": "overloaded"}`, http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("REVIEWER_OPENAI_BASE_URL", srv.URL)

	dir := setupRepo(t)
	if err := os.WriteFile(filepath.Join(dir, "app.py"), []byte("print('hi')\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	gitIn(t, dir, "add", ".")
	inDir(t, dir)

	_ = captureStdout(t, func() {
		runPipeline(runMode{kind: modeStaged})
	})

	if exitCode != ExitUpstreamError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitUpstreamError)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("provider called %d times, want 1 (no retries)", got)
	}
}
