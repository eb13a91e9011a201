package feedgen

import "context"

// Fetcher retrieves raw HTML from URLs.
type Fetcher interface {
	// Fetch issues a GET request and returns the full response body as text.
	// Connection failures, non-2xx statuses and body read failures are
	// reported uniformly as ETRANSPORT. Implementations do not retry.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}

// DomainLimiter provides per-domain rate limiting for outbound fetches.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
