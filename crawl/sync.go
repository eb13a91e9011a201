package crawl

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/feedgen"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of posts fetched in parallel during a sync.
const DefaultConcurrency = 4

// Syncer scrapes a feed's posts and stores them.
//
// The feed's stored post rule is used when present. Otherwise one is
// inferred from the first fetched post and saved with the feed's rules, so
// a sync makes at most one oracle call. Posts the rule cannot locate fall
// back to the Extractor.
type Syncer struct {
	Fetcher   feedgen.Fetcher
	Inferrer  feedgen.Inferrer
	Extractor feedgen.Extractor
	Converter feedgen.Converter
	Feeds     feedgen.FeedService
	Posts     feedgen.PostService

	// RateLimiter, if set, is waited on before every post fetch.
	RateLimiter feedgen.DomainLimiter

	// Concurrency defaults to DefaultConcurrency when zero.
	Concurrency int

	// RetryDelays defaults to DefaultRetryDelays when nil.
	RetryDelays []time.Duration

	// Log, if set, receives retry messages.
	Log LogFunc
}

// ProgressEvent reports progress during a sync.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting sync progress.
type ProgressFunc func(event ProgressEvent)

// postResult holds the outcome of processing a single post link.
type postResult struct {
	position int
	url      string
	title    string
	markdown string
	fallback bool
	err      error
}

// Sync scrapes every link of feed and upserts the resulting posts.
// Duplicate links are processed once. Failures of individual links are
// counted and reported through progress; they do not stop the sync.
//
// A canceled ctx fails the whole sync with ETRANSPORT and stores nothing.
// If an inferred post rule cannot be saved, the posts are still stored and
// the save error is returned together with the result.
func (s *Syncer) Sync(ctx context.Context, feed *feedgen.Feed, links []string, progress ProgressFunc) (*feedgen.SyncResult, error) {
	if feed == nil || feed.ID == "" {
		return nil, feedgen.Errorf(feedgen.EINVALID, "feed required")
	}

	stored, err := s.Feeds.FindFeedRule(ctx, feed.ID)
	if err != nil && feedgen.ErrorCode(err) != feedgen.ENOTFOUND {
		return nil, err
	}
	rules := &postRules{stored: stored}
	if stored != nil {
		rules.rule = stored.Post
	}

	links = uniqueLinks(links)
	total := len(links)

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	resultCh := make(chan postResult, total)
	var completed atomic.Int64

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, link := range links {
			g.Go(func() error {
				resultCh <- s.processPost(gctx, rules, i, link)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	results := make([]postResult, total)
	for result := range resultCh {
		n := int(completed.Add(1))
		results[result.position] = result
		if progress == nil {
			continue
		}
		if result.err != nil {
			progress(ProgressEvent{Type: ProgressFailed, Completed: n, Total: total, URL: result.url, Error: result.err})
		} else {
			progress(ProgressEvent{Type: ProgressCompleted, Completed: n, Total: total, URL: result.url})
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, feedgen.Errorf(feedgen.ETRANSPORT, "sync of feed %s canceled: %v", feed.ID, err)
	}

	out := feedgen.SyncResult{Links: total}
	for _, result := range results {
		if result.err != nil {
			out.Failed++
			continue
		}

		post := &feedgen.Post{
			FeedID:      feed.ID,
			Title:       result.title,
			Link:        result.url,
			Content:     result.markdown,
			ContentHash: ComputeHash(result.markdown),
		}
		if err := s.Posts.UpsertPost(ctx, post); err != nil {
			out.Failed++
			if progress != nil {
				progress(ProgressEvent{Type: ProgressFailed, Completed: total, Total: total, URL: result.url, Error: err})
			}
			continue
		}

		out.Saved++
		out.Bytes += len(result.markdown)
		if result.fallback {
			out.Fallbacks++
		}
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}

	if rules.saveErr != nil {
		return &out, rules.saveErr
	}
	return &out, nil
}

// processPost fetches one post and converts it into Markdown.
func (s *Syncer) processPost(ctx context.Context, rules *postRules, position int, link string) postResult {
	result := postResult{position: position, url: link}

	if err := waitForURL(ctx, s.RateLimiter, link); err != nil {
		result.err = err
		return result
	}

	delays := s.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err := FetchWithRetryDelays(ctx, link, s.Fetcher.Fetch, s.Log, delays)
	if err != nil {
		result.err = err
		return result
	}

	var title, contentHTML string
	rule, ruleErr := s.postRule(ctx, rules, html)
	if rule != nil {
		post, err := s.Inferrer.ApplyPostRule(html, rule)
		switch {
		case err == nil:
			title, contentHTML = post.Title, post.ContentHTML
		case feedgen.ErrorCode(err) != feedgen.ENOTFOUND || s.Extractor == nil:
			result.err = err
			return result
		}
	} else if s.Extractor == nil {
		result.err = ruleErr
		return result
	}

	if contentHTML == "" && s.Extractor != nil {
		extracted, err := s.Extractor.Extract(html, link)
		if err != nil {
			result.err = err
			return result
		}
		title, contentHTML = extracted.Title, extracted.ContentHTML
		result.fallback = true
	}

	markdown, err := s.Converter.Convert(contentHTML, link)
	if err != nil {
		result.err = err
		return result
	}

	result.title = strings.TrimSpace(title)
	result.markdown = markdown
	return result
}

// postRules guards lazy inference of a feed's post rule.
type postRules struct {
	mu     sync.Mutex
	stored *feedgen.FeedRule
	rule   *feedgen.PostStructureRule
	tried  bool
	err    error

	// saveErr is the failure to persist an inferred rule. The rule is still
	// used for the rest of the sync.
	saveErr error
}

// postRule returns the post rule for the sync, inferring it from html on
// first use. Inference is attempted once; later callers get its outcome.
func (s *Syncer) postRule(ctx context.Context, rules *postRules, html string) (*feedgen.PostStructureRule, error) {
	rules.mu.Lock()
	defer rules.mu.Unlock()

	if rules.rule != nil || rules.tried {
		return rules.rule, rules.err
	}
	rules.tried = true

	rule, err := s.Inferrer.InferPostRule(ctx, html)
	if err != nil {
		rules.err = err
		return nil, err
	}
	rules.rule = rule

	if rules.stored != nil {
		updated := *rules.stored
		updated.Post = rule
		if err := s.Feeds.SaveFeedRule(ctx, &updated); err != nil {
			rules.saveErr = err
		}
	}
	return rule, nil
}

func uniqueLinks(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, len(links))
	for _, link := range links {
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		out = append(out, link)
	}
	return out
}
