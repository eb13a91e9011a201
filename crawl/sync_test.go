package crawl_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/feedgen"
	"github.com/fwojciec/feedgen/crawl"
	"github.com/fwojciec/feedgen/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postStore records upserted posts.
type postStore struct {
	mu    sync.Mutex
	posts []*feedgen.Post
}

func (s *postStore) mock() *mock.PostService {
	return &mock.PostService{
		UpsertPostFn: func(_ context.Context, post *feedgen.Post) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.posts = append(s.posts, post)
			return nil
		},
	}
}

func passthroughConverter() *mock.Converter {
	return &mock.Converter{
		ConvertFn: func(html string, _ string) (string, error) {
			return "md:" + html, nil
		},
	}
}

func newSyncer(site *siteFetcher, inferrer feedgen.Inferrer, feeds feedgen.FeedService, posts feedgen.PostService) *crawl.Syncer {
	return &crawl.Syncer{
		Fetcher:     site.mock(),
		Inferrer:    inferrer,
		Converter:   passthroughConverter(),
		Feeds:       feeds,
		Posts:       posts,
		Concurrency: 2,
		RetryDelays: []time.Duration{},
	}
}

var testFeed = &feedgen.Feed{ID: "feed-1", Title: "Blog", Link: "https://example.com/"}

func TestSyncer_Sync(t *testing.T) {
	t.Parallel()

	t.Run("applies stored post rule and upserts posts in link order", func(t *testing.T) {
		t.Parallel()

		site := newSiteFetcher(map[string]string{
			"https://example.com/a": "<h1>A</h1>",
			"https://example.com/b": "<h1>B</h1>",
		})
		storedRule := &feedgen.PostStructureRule{TitleLocator: "h1", ContentLocator: "article"}
		feeds := &mock.FeedService{
			FindFeedRuleFn: func(_ context.Context, feedID string) (*feedgen.FeedRule, error) {
				assert.Equal(t, "feed-1", feedID)
				return &feedgen.FeedRule{FeedID: feedID, Feed: listRule, Post: storedRule}, nil
			},
		}
		inferrer := &mock.Inferrer{
			ApplyPostRuleFn: func(html string, rule *feedgen.PostStructureRule) (*feedgen.PostStructure, error) {
				assert.Equal(t, storedRule, rule)
				return &feedgen.PostStructure{Title: " " + html[4:5] + " ", ContentHTML: "<p>" + html[4:5] + "</p>"}, nil
			},
		}
		store := &postStore{}

		result, err := newSyncer(site, inferrer, feeds, store.mock()).Sync(context.Background(), testFeed,
			[]string{"https://example.com/a", "https://example.com/b", "https://example.com/a"}, nil)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Saved)
		assert.Equal(t, 0, result.Failed)
		assert.Equal(t, 0, result.Fallbacks)
		require.Len(t, store.posts, 2)
		assert.Equal(t, "https://example.com/a", store.posts[0].Link)
		assert.Equal(t, "A", store.posts[0].Title)
		assert.Equal(t, "md:<p>A</p>", store.posts[0].Content)
		assert.Equal(t, "feed-1", store.posts[0].FeedID)
		assert.Equal(t, crawl.ComputeHash("md:<p>A</p>"), store.posts[0].ContentHash)
		assert.Equal(t, "https://example.com/b", store.posts[1].Link)
		assert.Len(t, site.Fetched(), 2)
	})

	t.Run("infers post rule once and saves it with the feed rule", func(t *testing.T) {
		t.Parallel()

		site := newSiteFetcher(map[string]string{
			"https://example.com/1": "<h1>1</h1>",
			"https://example.com/2": "<h1>2</h1>",
			"https://example.com/3": "<h1>3</h1>",
		})
		var mu sync.Mutex
		var saved *feedgen.FeedRule
		feeds := &mock.FeedService{
			FindFeedRuleFn: func(_ context.Context, feedID string) (*feedgen.FeedRule, error) {
				return &feedgen.FeedRule{FeedID: feedID, Feed: listRule}, nil
			},
			SaveFeedRuleFn: func(_ context.Context, rule *feedgen.FeedRule) error {
				mu.Lock()
				defer mu.Unlock()
				saved = rule
				return nil
			},
		}
		inferred := &feedgen.PostStructureRule{TitleLocator: "h1", ContentLocator: "body"}
		var inferCalls int
		inferrer := &mock.Inferrer{
			InferPostRuleFn: func(context.Context, string) (*feedgen.PostStructureRule, error) {
				inferCalls++
				return inferred, nil
			},
			ApplyPostRuleFn: func(html string, _ *feedgen.PostStructureRule) (*feedgen.PostStructure, error) {
				return &feedgen.PostStructure{Title: "t", ContentHTML: html}, nil
			},
		}
		store := &postStore{}

		result, err := newSyncer(site, inferrer, feeds, store.mock()).Sync(context.Background(), testFeed,
			[]string{"https://example.com/1", "https://example.com/2", "https://example.com/3"}, nil)

		require.NoError(t, err)
		assert.Equal(t, 3, result.Saved)
		assert.Equal(t, 1, inferCalls)
		require.NotNil(t, saved)
		assert.Equal(t, "feed-1", saved.FeedID)
		assert.Equal(t, listRule, saved.Feed)
		assert.Equal(t, inferred, saved.Post)
	})

	t.Run("returns the error when the inferred post rule cannot be saved", func(t *testing.T) {
		t.Parallel()

		site := newSiteFetcher(map[string]string{
			"https://example.com/1": "<h1>1</h1>",
			"https://example.com/2": "<h1>2</h1>",
		})
		feeds := &mock.FeedService{
			FindFeedRuleFn: func(_ context.Context, feedID string) (*feedgen.FeedRule, error) {
				return &feedgen.FeedRule{FeedID: feedID, Feed: listRule}, nil
			},
			SaveFeedRuleFn: func(context.Context, *feedgen.FeedRule) error {
				return feedgen.Errorf(feedgen.EINTERNAL, "disk full")
			},
		}
		inferrer := &mock.Inferrer{
			InferPostRuleFn: func(context.Context, string) (*feedgen.PostStructureRule, error) {
				return &feedgen.PostStructureRule{TitleLocator: "h1", ContentLocator: "body"}, nil
			},
			ApplyPostRuleFn: func(html string, _ *feedgen.PostStructureRule) (*feedgen.PostStructure, error) {
				return &feedgen.PostStructure{Title: "t", ContentHTML: html}, nil
			},
		}
		store := &postStore{}

		result, err := newSyncer(site, inferrer, feeds, store.mock()).Sync(context.Background(), testFeed,
			[]string{"https://example.com/1", "https://example.com/2"}, nil)

		require.Error(t, err)
		assert.Equal(t, feedgen.EINTERNAL, feedgen.ErrorCode(err))
		assert.Equal(t, "disk full", feedgen.ErrorMessage(err))
		require.NotNil(t, result)
		assert.Equal(t, 2, result.Saved)
		assert.Len(t, store.posts, 2)
	})

	t.Run("fails with transport error when canceled mid-sync", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				cancel()
				return "", feedgen.Errorf(feedgen.ETRANSPORT, "fetch %s: %v", url, context.Canceled)
			},
		}
		feeds := &mock.FeedService{
			FindFeedRuleFn: func(_ context.Context, feedID string) (*feedgen.FeedRule, error) {
				return &feedgen.FeedRule{FeedID: feedID, Feed: listRule, Post: &feedgen.PostStructureRule{TitleLocator: "h1", ContentLocator: "body"}}, nil
			},
		}
		store := &postStore{}
		s := newSyncer(newSiteFetcher(nil), &mock.Inferrer{}, feeds, store.mock())
		s.Fetcher = fetcher

		result, err := s.Sync(ctx, testFeed, []string{"https://example.com/1", "https://example.com/2"}, nil)

		assert.Nil(t, result)
		assert.Equal(t, feedgen.ETRANSPORT, feedgen.ErrorCode(err))
		assert.Contains(t, feedgen.ErrorMessage(err), "canceled")
		assert.Empty(t, store.posts)
	})

	t.Run("falls back to extractor when rule locators miss", func(t *testing.T) {
		t.Parallel()

		site := newSiteFetcher(map[string]string{"https://example.com/x": "<main>x</main>"})
		feeds := &mock.FeedService{
			FindFeedRuleFn: func(_ context.Context, feedID string) (*feedgen.FeedRule, error) {
				return &feedgen.FeedRule{FeedID: feedID, Feed: listRule, Post: &feedgen.PostStructureRule{TitleLocator: "h1", ContentLocator: "article"}}, nil
			},
		}
		inferrer := &mock.Inferrer{
			ApplyPostRuleFn: func(string, *feedgen.PostStructureRule) (*feedgen.PostStructure, error) {
				return nil, feedgen.WithStage(feedgen.StageLocate, feedgen.Errorf(feedgen.ENOTFOUND, "locator %q matched nothing", "article"))
			},
		}
		store := &postStore{}
		s := newSyncer(site, inferrer, feeds, store.mock())
		s.Extractor = &mock.Extractor{
			ExtractFn: func(html, pageURL string) (*feedgen.ExtractResult, error) {
				assert.Equal(t, "https://example.com/x", pageURL)
				return &feedgen.ExtractResult{Title: "Fallback", ContentHTML: "<p>x</p>"}, nil
			},
		}

		result, err := s.Sync(context.Background(), testFeed, []string{"https://example.com/x"}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
		assert.Equal(t, 1, result.Fallbacks)
		require.Len(t, store.posts, 1)
		assert.Equal(t, "Fallback", store.posts[0].Title)
		assert.Equal(t, "md:<p>x</p>", store.posts[0].Content)
	})

	t.Run("uses extractor when post rule cannot be inferred", func(t *testing.T) {
		t.Parallel()

		site := newSiteFetcher(map[string]string{"https://example.com/x": "<main>x</main>"})
		feeds := &mock.FeedService{
			FindFeedRuleFn: func(context.Context, string) (*feedgen.FeedRule, error) {
				return nil, feedgen.Errorf(feedgen.ENOTFOUND, "no rule")
			},
		}
		inferrer := &mock.Inferrer{
			InferPostRuleFn: func(context.Context, string) (*feedgen.PostStructureRule, error) {
				return nil, feedgen.Errorf(feedgen.ESCHEMA, "post rule content required")
			},
		}
		store := &postStore{}
		s := newSyncer(site, inferrer, feeds, store.mock())
		s.Extractor = &mock.Extractor{
			ExtractFn: func(string, string) (*feedgen.ExtractResult, error) {
				return &feedgen.ExtractResult{Title: "T", ContentHTML: "<p>x</p>"}, nil
			},
		}

		result, err := s.Sync(context.Background(), testFeed, []string{"https://example.com/x"}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
		assert.Equal(t, 1, result.Fallbacks)
	})

	t.Run("counts failed links without aborting others", func(t *testing.T) {
		t.Parallel()

		site := newSiteFetcher(map[string]string{"https://example.com/ok": "<h1>ok</h1>"})
		feeds := &mock.FeedService{
			FindFeedRuleFn: func(_ context.Context, feedID string) (*feedgen.FeedRule, error) {
				return &feedgen.FeedRule{FeedID: feedID, Feed: listRule, Post: &feedgen.PostStructureRule{TitleLocator: "h1", ContentLocator: "h1"}}, nil
			},
		}
		inferrer := &mock.Inferrer{
			ApplyPostRuleFn: func(html string, _ *feedgen.PostStructureRule) (*feedgen.PostStructure, error) {
				return &feedgen.PostStructure{Title: "ok", ContentHTML: html}, nil
			},
		}
		store := &postStore{}
		var mu sync.Mutex
		var events []crawl.ProgressEvent
		progress := func(e crawl.ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, e)
		}

		result, err := newSyncer(site, inferrer, feeds, store.mock()).Sync(context.Background(), testFeed,
			[]string{"https://example.com/missing", "https://example.com/ok"}, progress)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, events, 4)
		assert.Equal(t, crawl.ProgressStarted, events[0].Type)
		assert.Equal(t, 2, events[0].Total)
		assert.Equal(t, crawl.ProgressFinished, events[3].Type)

		var failed []crawl.ProgressEvent
		for _, e := range events {
			if e.Type == crawl.ProgressFailed {
				failed = append(failed, e)
			}
		}
		require.Len(t, failed, 1)
		assert.Equal(t, "https://example.com/missing", failed[0].URL)
		assert.Equal(t, feedgen.ETRANSPORT, feedgen.ErrorCode(failed[0].Error))
	})

	t.Run("fails a link when locators miss and no extractor is set", func(t *testing.T) {
		t.Parallel()

		site := newSiteFetcher(map[string]string{"https://example.com/x": "<p>x</p>"})
		feeds := &mock.FeedService{
			FindFeedRuleFn: func(_ context.Context, feedID string) (*feedgen.FeedRule, error) {
				return &feedgen.FeedRule{FeedID: feedID, Feed: listRule, Post: &feedgen.PostStructureRule{TitleLocator: "h1", ContentLocator: "article"}}, nil
			},
		}
		inferrer := &mock.Inferrer{
			ApplyPostRuleFn: func(string, *feedgen.PostStructureRule) (*feedgen.PostStructure, error) {
				return nil, feedgen.Errorf(feedgen.ENOTFOUND, "no match")
			},
		}

		result, err := newSyncer(site, inferrer, feeds, (&postStore{}).mock()).Sync(context.Background(), testFeed, []string{"https://example.com/x"}, nil)

		require.NoError(t, err)
		assert.Equal(t, 0, result.Saved)
		assert.Equal(t, 1, result.Failed)
	})

	t.Run("waits on rate limiter per post host", func(t *testing.T) {
		t.Parallel()

		site := newSiteFetcher(map[string]string{
			"https://a.example.com/1": "<h1>1</h1>",
			"https://b.example.com/2": "<h1>2</h1>",
		})
		feeds := &mock.FeedService{
			FindFeedRuleFn: func(_ context.Context, feedID string) (*feedgen.FeedRule, error) {
				return &feedgen.FeedRule{FeedID: feedID, Feed: listRule, Post: &feedgen.PostStructureRule{TitleLocator: "h1", ContentLocator: "h1"}}, nil
			},
		}
		inferrer := &mock.Inferrer{
			ApplyPostRuleFn: func(html string, _ *feedgen.PostStructureRule) (*feedgen.PostStructure, error) {
				return &feedgen.PostStructure{Title: "t", ContentHTML: html}, nil
			},
		}
		var mu sync.Mutex
		domains := map[string]int{}
		s := newSyncer(site, inferrer, feeds, (&postStore{}).mock())
		s.RateLimiter = &mock.DomainLimiter{
			WaitFn: func(_ context.Context, domain string) error {
				mu.Lock()
				defer mu.Unlock()
				domains[domain]++
				return nil
			},
		}

		_, err := s.Sync(context.Background(), testFeed, []string{"https://a.example.com/1", "https://b.example.com/2"}, nil)

		require.NoError(t, err)
		assert.Equal(t, map[string]int{"a.example.com": 1, "b.example.com": 1}, domains)
	})

	t.Run("returns storage errors other than not found", func(t *testing.T) {
		t.Parallel()

		feeds := &mock.FeedService{
			FindFeedRuleFn: func(context.Context, string) (*feedgen.FeedRule, error) {
				return nil, feedgen.Errorf(feedgen.EINTERNAL, "database is locked")
			},
		}

		_, err := newSyncer(newSiteFetcher(nil), &mock.Inferrer{}, feeds, &mock.PostService{}).Sync(context.Background(), testFeed, nil, nil)

		assert.Equal(t, feedgen.EINTERNAL, feedgen.ErrorCode(err))
	})

	t.Run("requires a stored feed", func(t *testing.T) {
		t.Parallel()

		_, err := newSyncer(newSiteFetcher(nil), &mock.Inferrer{}, &mock.FeedService{}, &mock.PostService{}).Sync(context.Background(), &feedgen.Feed{}, nil, nil)

		assert.Equal(t, feedgen.EINVALID, feedgen.ErrorCode(err))
	})
}

func TestComputeHash(t *testing.T) {
	t.Parallel()

	assert.Equal(t, crawl.ComputeHash("same"), crawl.ComputeHash("same"))
	assert.NotEqual(t, crawl.ComputeHash("one"), crawl.ComputeHash("two"))
	assert.Len(t, crawl.ComputeHash(""), 16)
}
