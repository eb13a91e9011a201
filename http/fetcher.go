// Package http provides the HTML fetcher and the JSON API server.
// Fetching is plain HTTP: pages that need JavaScript to render are not
// supported.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/feedgen"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent identifies the fetcher to the sites it reads.
const DefaultUserAgent = "feedgen/1.0 (+https://github.com/fwojciec/feedgen)"

// Ensure Fetcher implements feedgen.Fetcher at compile time.
var _ feedgen.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using HTTP GET requests.
// A single client is shared across goroutines.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithClient sets the underlying HTTP client. Its own Timeout is replaced
// by the fetcher's timeout.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{}
	}
	f.client.Timeout = f.timeout

	return f
}

// Fetch retrieves the body of url as text.
// Every failure is reported as ETRANSPORT; there are no retries.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", feedgen.Errorf(feedgen.ETRANSPORT, "invalid request for %s: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", feedgen.Errorf(feedgen.ETRANSPORT, "fetch %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", feedgen.Errorf(feedgen.ETRANSPORT, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", feedgen.Errorf(feedgen.ETRANSPORT, "read body of %s: %v", url, err)
	}

	return string(body), nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
