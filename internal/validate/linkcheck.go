package validate

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultLinkTimeout bounds a single HEAD request
const DefaultLinkTimeout = 5 * time.Second

// LinkChecker reports the HTTP status of a link
type LinkChecker interface {
	Check(ctx context.Context, link string) (int, error)
}

type linkStatus struct {
	status int
	err    error
}

// HTTPLinkChecker issues HEAD requests and caches the outcome per link
type HTTPLinkChecker struct {
	client  *http.Client
	timeout time.Duration
	cache   *cache.Cache
}

// NewHTTPLinkChecker creates a checker whose requests time out after timeout.
// Redirects are followed.
func NewHTTPLinkChecker(timeout time.Duration) *HTTPLinkChecker {
	if timeout <= 0 {
		timeout = DefaultLinkTimeout
	}
	return &HTTPLinkChecker{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		cache:   cache.New(10*time.Minute, 20*time.Minute),
	}
}

// Check returns the final status code for link
func (c *HTTPLinkChecker) Check(ctx context.Context, link string) (int, error) {
	if v, ok := c.cache.Get(link); ok {
		ls := v.(linkStatus)
		return ls.status, ls.err
	}

	status, err := c.head(ctx, link)
	// a cancelled caller says nothing about the link
	if ctx.Err() == nil {
		c.cache.Set(link, linkStatus{status: status, err: err}, cache.DefaultExpiration)
	}
	return status, err
}

func (c *HTTPLinkChecker) head(ctx context.Context, link string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, link, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "activity-intake/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}
