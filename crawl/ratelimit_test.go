package crawl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/feedgen"
	"github.com/fwojciec/feedgen/crawl"
	"github.com/fwojciec/feedgen/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainLimiter(t *testing.T) {
	t.Parallel()

	t.Run("first request to a host is immediate", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(10)

		start := time.Now()
		require.NoError(t, limiter.Wait(context.Background(), "blog.example.com"))

		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("spaces requests to the same host", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(10)
		require.NoError(t, limiter.Wait(context.Background(), "blog.example.com"))

		start := time.Now()
		require.NoError(t, limiter.Wait(context.Background(), "blog.example.com"))

		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("hosts are limited independently", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(10)
		require.NoError(t, limiter.Wait(context.Background(), "blog.example.com"))

		start := time.Now()
		require.NoError(t, limiter.Wait(context.Background(), "news.example.org"))

		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("gives up when the context ends", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(1)
		require.NoError(t, limiter.Wait(context.Background(), "blog.example.com"))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		assert.Error(t, limiter.Wait(ctx, "blog.example.com"))
	})

	t.Run("non-positive rate disables limiting", func(t *testing.T) {
		t.Parallel()

		limiter := crawl.NewDomainLimiter(0)

		start := time.Now()
		for range 20 {
			require.NoError(t, limiter.Wait(context.Background(), "blog.example.com"))
		}

		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})
}

func TestWalker_RateLimiter(t *testing.T) {
	t.Parallel()

	rule := &feedgen.FeedStructureRule{PostListLocator: "a.post", PostLinkAttribute: "href"}
	fetcher := &mock.Fetcher{
		FetchFn: func(context.Context, string) (string, error) { return "<html></html>", nil },
	}
	engine := &mock.LocatorEngine{
		ParseFn: func(string) (feedgen.Document, error) {
			return &mock.Document{
				ResolveListFn: func(string) ([]feedgen.Element, error) { return nil, nil },
			}, nil
		},
	}

	t.Run("waits on the page host before fetching", func(t *testing.T) {
		t.Parallel()

		var hosts []string
		walker := &crawl.Walker{
			Fetcher: fetcher,
			Engine:  engine,
			RateLimiter: &mock.DomainLimiter{
				WaitFn: func(_ context.Context, domain string) error {
					hosts = append(hosts, domain)
					return nil
				},
			},
		}

		_, err := walker.Walk(context.Background(), "https://blog.example.com:8443/archive", rule)

		require.NoError(t, err)
		assert.Equal(t, []string{"blog.example.com:8443"}, hosts)
	})

	t.Run("reports a failed wait as a transport error", func(t *testing.T) {
		t.Parallel()

		walker := &crawl.Walker{
			Fetcher: fetcher,
			Engine:  engine,
			RateLimiter: &mock.DomainLimiter{
				WaitFn: func(context.Context, string) error { return errors.New("context canceled") },
			},
		}

		_, err := walker.Walk(context.Background(), "https://blog.example.com/", rule)

		assert.Equal(t, feedgen.ETRANSPORT, feedgen.ErrorCode(err))
	})
}
