package crawl

import (
	"context"
	"net/url"
	"time"

	"github.com/fwojciec/feedgen"
)

// DefaultMaxPages caps how many pages a single walk may fetch.
const DefaultMaxPages = 100

// Walker follows a feed's pagination chain and collects post links.
//
// Every walk tracks the pages it has visited and how many it may still
// fetch, so a next-page locator that points back to an earlier page fails
// with ECYCLE and an endless chain fails with ELIMIT instead of looping.
type Walker struct {
	Fetcher feedgen.Fetcher
	Engine  feedgen.LocatorEngine

	// RateLimiter, if set, is waited on before every page fetch.
	RateLimiter feedgen.DomainLimiter

	// MaxPages defaults to DefaultMaxPages when zero.
	MaxPages int

	// RetryDelays are backoff delays for transport failures.
	// Nil means each page is fetched once.
	RetryDelays []time.Duration

	// Timeout bounds a whole walk. Zero means no walk-level deadline.
	Timeout time.Duration

	// Log, if set, receives retry messages.
	Log LogFunc
}

// Walk fetches startURL and every following page, returning all post links
// in document order across pages. Duplicates are preserved.
// No partial result is returned on failure.
func (w *Walker) Walk(ctx context.Context, startURL string, rule *feedgen.FeedStructureRule) ([]string, error) {
	return w.walk(ctx, startURL, nil, rule)
}

// WalkFrom is Walk for a start page whose HTML has already been fetched.
func (w *Walker) WalkFrom(ctx context.Context, startURL, firstHTML string, rule *feedgen.FeedStructureRule) ([]string, error) {
	return w.walk(ctx, startURL, &firstHTML, rule)
}

func (w *Walker) walk(ctx context.Context, startURL string, firstHTML *string, rule *feedgen.FeedStructureRule) ([]string, error) {
	if startURL == "" {
		return nil, feedgen.Errorf(feedgen.EINVALID, "start URL required")
	}
	if rule == nil {
		return nil, feedgen.Errorf(feedgen.EINVALID, "feed rule required")
	}

	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}

	maxPages := w.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	visited := make(map[string]struct{})
	links := []string{}
	pageURL := startURL

	for remaining := maxPages; ; remaining-- {
		key := pageKey(pageURL)
		if _, ok := visited[key]; ok {
			return nil, feedgen.Errorf(feedgen.ECYCLE, "pagination revisited %s after %d pages", pageURL, len(visited))
		}
		if remaining == 0 {
			return nil, feedgen.Errorf(feedgen.ELIMIT, "pagination exceeded %d pages", maxPages)
		}
		visited[key] = struct{}{}

		var html string
		if firstHTML != nil {
			html, firstHTML = *firstHTML, nil
		} else {
			var err error
			if html, err = w.fetch(ctx, pageURL); err != nil {
				return nil, err
			}
		}

		page, err := ExtractPage(w.Engine, html, pageURL, rule)
		if err != nil {
			return nil, err
		}
		links = append(links, page.Links...)

		if page.NextPageURL == "" {
			return links, nil
		}
		pageURL = page.NextPageURL
	}
}

func (w *Walker) fetch(ctx context.Context, pageURL string) (string, error) {
	if err := waitForURL(ctx, w.RateLimiter, pageURL); err != nil {
		return "", err
	}
	return FetchWithRetryDelays(ctx, pageURL, w.Fetcher.Fetch, w.Log, w.RetryDelays)
}

// ExtractPage applies rule to one page's HTML.
//
// Post links are the rule's link attribute of every post-list match, in
// document order, resolved against pageURL; matches without the attribute
// are skipped. NextPageURL is empty when the rule has no next-page locator
// or it matches nothing. A matched next-page element without a usable
// href is ESCHEMA.
func ExtractPage(engine feedgen.LocatorEngine, html, pageURL string, rule *feedgen.FeedStructureRule) (*feedgen.PageResult, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, feedgen.Errorf(feedgen.EINVALID, "invalid page URL %q: %v", pageURL, err)
	}

	doc, err := engine.Parse(html)
	if err != nil {
		return nil, err
	}

	elements, err := doc.ResolveList(rule.PostListLocator)
	if err != nil {
		return nil, err
	}

	result := &feedgen.PageResult{Links: make([]string, 0, len(elements))}
	for _, el := range elements {
		value, ok := el.Attr(rule.PostLinkAttribute)
		if !ok {
			continue
		}
		if link, ok := resolveURL(base, value); ok {
			result.Links = append(result.Links, link)
		}
	}

	if rule.NextPageLocator == nil {
		return result, nil
	}

	next, err := doc.ResolveList(*rule.NextPageLocator)
	if err != nil {
		return nil, err
	}
	if len(next) == 0 {
		return result, nil
	}

	href, ok := next[0].Attr("href")
	if !ok {
		return nil, feedgen.Errorf(feedgen.ESCHEMA, "next page element %q on %s has no href", *rule.NextPageLocator, pageURL)
	}
	nextURL, ok := resolveURL(base, href)
	if !ok {
		return nil, feedgen.Errorf(feedgen.ESCHEMA, "next page element %q on %s has unusable href %q", *rule.NextPageLocator, pageURL, href)
	}
	if u, err := url.Parse(nextURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, feedgen.Errorf(feedgen.ESCHEMA, "next page link %q on %s is not a web page", href, pageURL)
	}
	result.NextPageURL = nextURL
	return result, nil
}
