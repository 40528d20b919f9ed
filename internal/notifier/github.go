package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"
)

// DefaultAPIURL is the public GitHub REST endpoint
const DefaultAPIURL = "https://api.github.com"

// maxCommentLength is GitHub's limit on issue comment bodies
const maxCommentLength = 65536

// ErrMissingToken is returned when no API token is configured
var ErrMissingToken = errors.New("missing GitHub token")

// GitHubConfig names the issue a report is posted to
type GitHubConfig struct {
	APIURL     string
	Repo       string // owner/name
	Issue      int
	Token      string
	MaxRetries int
}

// GitHubNotifier posts reports as issue comments
type GitHubNotifier struct {
	client     *http.Client
	endpoint   string
	maxRetries int
}

// NewGitHubNotifier validates cfg and creates a notifier with a token
// authenticated client
func NewGitHubNotifier(ctx context.Context, cfg GitHubConfig) (*GitHubNotifier, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}
	owner, name, ok := strings.Cut(cfg.Repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("invalid repository %q, want owner/name", cfg.Repo)
	}
	if cfg.Issue <= 0 {
		return nil, fmt.Errorf("invalid issue number %d", cfg.Issue)
	}

	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	client := oauth2.NewClient(ctx, ts)
	client.Timeout = 30 * time.Second

	return &GitHubNotifier{
		client:     client,
		endpoint:   fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments", apiURL, owner, name, cfg.Issue),
		maxRetries: cfg.MaxRetries,
	}, nil
}

// Target returns the comments endpoint reports are posted to
func (n *GitHubNotifier) Target() string {
	return n.endpoint
}

// Notify posts report as a new issue comment. Server errors and rate
// limiting are retried with exponential backoff.
func (n *GitHubNotifier) Notify(ctx context.Context, report string) error {
	if strings.TrimSpace(report) == "" {
		return fmt.Errorf("empty report")
	}
	if len(report) > maxCommentLength {
		report = truncate(report, maxCommentLength)
	}

	body, err := json.Marshal(map[string]string{"body": report})
	if err != nil {
		return fmt.Errorf("encoding comment: %w", err)
	}

	op := func() error {
		return n.post(ctx, body)
	}
	var policy backoff.BackOff = backoff.NewExponentialBackOff()
	if n.maxRetries > 0 {
		policy = backoff.WithMaxRetries(policy, uint64(n.maxRetries))
	} else {
		policy = &backoff.StopBackOff{}
	}
	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		return fmt.Errorf("posting comment: %w", err)
	}
	return nil
}

func (n *GitHubNotifier) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK {
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	statusErr := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return statusErr
	}
	return backoff.Permanent(statusErr)
}

// truncate clips s to at most n bytes on a rune boundary and marks the cut
func truncate(s string, n int) string {
	const marker = "\n\n…(truncated)"
	limit := n - len(marker)
	for limit > 0 && !utf8RuneStart(s[limit]) {
		limit--
	}
	return s[:limit] + marker
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
