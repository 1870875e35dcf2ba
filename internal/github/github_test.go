package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParsePullURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want PullRef
	}{
		{"https", "https://github.com/MyOrg/my-repo/pull/12", PullRef{"MyOrg", "my-repo", 12}},
		{"http", "http://github.com/org/repo/pull/1", PullRef{"org", "repo", 1}},
		{"trailing path", "https://github.com/org/repo/pull/345/files", PullRef{"org", "repo", 345}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePullURL(tt.url)
			if err != nil {
				t.Fatalf("ParsePullURL(%q) error: %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("ParsePullURL(%q) = %+v, want %+v", tt.url, got, tt.want)
			}
		})
	}
}

func TestParsePullURL_Invalid(t *testing.T) {
	urls := []string{
		"",
		"https://github.com/org/repo",
		"https://github.com/org/repo/issues/12",
		"https://github.com/org/repo/pull/",
		"https://github.com/org/repo/pull/abc",
		"https://gitlab.com/org/repo/pull/12",
	}
	for _, url := range urls {
		if _, err := ParsePullURL(url); err == nil {
			t.Errorf("ParsePullURL(%q) should fail", url)
		}
	}
}

func TestFetchDiff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Authorization = %q, want %q", r.Header.Get("Authorization"), "Bearer test-token")
		}
		if r.Header.Get("Accept") != "application/vnd.github.v3.diff" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		if r.URL.Path != "/repos/owner/repo/pulls/42" {
			t.Errorf("Path = %q", r.URL.Path)
		}
		w.Write([]byte("diff --git a/file.go b/file.go\n"))
	}))
	defer server.Close()

	c := &Client{
		token:   "test-token",
		apiURL:  server.URL,
		httpCli: server.Client(),
	}

	diff, err := c.FetchDiff(context.Background(), PullRef{"owner", "repo", 42})
	if err != nil {
		t.Fatalf("FetchDiff error: %v", err)
	}
	if diff != "diff --git a/file.go b/file.go\n" {
		t.Errorf("diff = %q", diff)
	}
}

func TestFetchDiff_NoToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization should be absent without a token, got %q", got)
		}
		w.Write([]byte("diff --git a/f b/f\n"))
	}))
	defer server.Close()

	c := &Client{apiURL: server.URL, httpCli: server.Client()}
	if _, err := c.FetchDiff(context.Background(), PullRef{"o", "r", 1}); err != nil {
		t.Fatalf("FetchDiff error: %v", err)
	}
}

func TestFetchDiff_404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer server.Close()

	c := &Client{apiURL: server.URL, httpCli: server.Client()}
	_, err := c.FetchDiff(context.Background(), PullRef{"owner", "repo", 99})
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if got := err.Error(); got != "pull request owner/repo#99 not found" {
		t.Errorf("error = %q", got)
	}
}

func TestFetchDiff_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	c := &Client{apiURL: server.URL, httpCli: server.Client()}
	if _, err := c.FetchDiff(context.Background(), PullRef{"o", "r", 1}); err == nil {
		t.Fatal("expected error for 500")
	}
}

func TestNewClient_EnvAPIURL(t *testing.T) {
	t.Setenv("GITHUB_API_URL", "https://ghe.example.com/api/v3/")
	t.Setenv("GITHUB_TOKEN", "tok")
	c := NewClient()
	if c.apiURL != "https://ghe.example.com/api/v3" {
		t.Errorf("apiURL = %q, want trailing slash trimmed", c.apiURL)
	}
	if c.token != "tok" {
		t.Errorf("token = %q", c.token)
	}
}
