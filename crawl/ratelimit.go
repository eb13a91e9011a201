package crawl

import (
	"context"
	"net/url"
	"sync"

	"github.com/fwojciec/feedgen"
	"golang.org/x/time/rate"
)

var _ feedgen.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter provides per-domain rate limiting using token buckets.
// Post fetches during a sync and page fetches during a walk share one
// limiter, so a single site is never hit faster than the configured rate.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
}

// NewDomainLimiter creates a new DomainLimiter with the specified requests per second limit.
// Each domain gets its own limiter with a burst of 1. A non-positive rps disables limiting.
func NewDomainLimiter(rps float64) *DomainLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
	}
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(d.limit, 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// waitForURL waits on limiter for the host of rawURL. A nil limiter never waits.
func waitForURL(ctx context.Context, limiter feedgen.DomainLimiter, rawURL string) error {
	if limiter == nil {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return feedgen.Errorf(feedgen.ETRANSPORT, "invalid URL %q: %v", rawURL, err)
	}
	if err := limiter.Wait(ctx, u.Host); err != nil {
		return feedgen.Errorf(feedgen.ETRANSPORT, "rate limit wait for %s: %v", u.Host, err)
	}
	return nil
}
