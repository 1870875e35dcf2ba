package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const defaultAPIURL = "https://api.github.com"

// pullURLRe matches https://github.com/<owner>/<repo>/pull/<number>.
var pullURLRe = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/pull/(\d+)`)

// PullRef identifies a pull request by owner, repository, and number.
type PullRef struct {
	Owner  string
	Repo   string
	Number int
}

func (p PullRef) String() string {
	return fmt.Sprintf("%s/%s#%d", p.Owner, p.Repo, p.Number)
}

// ParsePullURL extracts the owner, repository, and PR number from a GitHub
// pull request URL. A URL that does not match the expected shape fails
// without any network access.
func ParsePullURL(url string) (PullRef, error) {
	m := pullURLRe.FindStringSubmatch(url)
	if m == nil {
		return PullRef{}, fmt.Errorf("invalid pull request URL: %s", url)
	}
	n, err := strconv.Atoi(m[3])
	if err != nil {
		return PullRef{}, fmt.Errorf("invalid pull request number in URL: %s", url)
	}
	return PullRef{Owner: m[1], Repo: m[2], Number: n}, nil
}

// Client provides access to the GitHub REST API.
type Client struct {
	token   string
	apiURL  string
	httpCli *http.Client
}

// NewClient creates a GitHub client. GITHUB_TOKEN is optional; when set it
// raises rate limits and grants access to private repositories.
func NewClient() *Client {
	apiURL := os.Getenv("GITHUB_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	apiURL = strings.TrimRight(apiURL, "/")

	return &Client{
		token:   os.Getenv("GITHUB_TOKEN"),
		apiURL:  apiURL,
		httpCli: &http.Client{Timeout: 60 * time.Second},
	}
}

// FetchDiff fetches the unified diff for a pull request.
func (c *Client) FetchDiff(ctx context.Context, ref PullRef) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.apiURL, ref.Owner, ref.Repo, ref.Number)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3.diff")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching PR diff: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == 404 {
		return "", fmt.Errorf("pull request %s not found", ref)
	}
	if resp.StatusCode == 401 || resp.StatusCode == 403 {
		return "", fmt.Errorf("GitHub authentication failed for %s: %s", ref, string(body))
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("GitHub API error (status %d): %s", resp.StatusCode, string(body))
	}

	return string(body), nil
}
