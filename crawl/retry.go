package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/feedgen"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (string, error)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// FetchWithRetryDelays fetches url, retrying transport failures once per
// entry in delays and waiting that long before each retry. An empty delays
// slice means a single attempt.
//
// Only ETRANSPORT errors are retried; any other code is returned at once.
// Cancellation while waiting is reported as ETRANSPORT.
func FetchWithRetryDelays(ctx context.Context, url string, fetch FetchFunc, logger LogFunc, delays []time.Duration) (string, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		html, err := fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if feedgen.ErrorCode(err) != feedgen.ETRANSPORT || attempt >= maxAttempts-1 {
			break
		}

		if logger != nil {
			logger("retry %s (attempt %d): %s", url, attempt+2, feedgen.ErrorMessage(err))
		}

		select {
		case <-ctx.Done():
			return "", feedgen.Errorf(feedgen.ETRANSPORT, "fetch %s: %v", url, ctx.Err())
		case <-time.After(delays[attempt]):
		}
	}

	return "", lastErr
}
