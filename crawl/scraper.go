package crawl

import (
	"context"

	"github.com/fwojciec/feedgen"
)

// Ensure Scraper implements feedgen.Scraper.
var _ feedgen.Scraper = (*Scraper)(nil)

// Scraper registers feeds and refreshes their posts using stored rules.
type Scraper struct {
	Inferrer feedgen.Inferrer
	Walker   *Walker
	Syncer   *Syncer
	Feeds    feedgen.FeedService

	// Progress, if set, receives sync progress for every SyncFeed call.
	Progress ProgressFunc
}

// AddFeed infers the feed at url and stores it with its rule. Re-adding a
// known feed refreshes its metadata and feed rule but keeps its post rule.
func (s *Scraper) AddFeed(ctx context.Context, url string) (*feedgen.Feed, error) {
	structure, rule, err := s.Inferrer.InferFeedRule(ctx, url)
	if err != nil {
		return nil, err
	}
	return s.storeFeed(ctx, url, structure, rule)
}

// SyncFeed walks the stored feed with its saved rule and syncs every post.
// A feed without a saved rule is inferred again first.
func (s *Scraper) SyncFeed(ctx context.Context, feedID string) (*feedgen.SyncResult, error) {
	feed, err := s.Feeds.FindFeedByID(ctx, feedID)
	if err != nil {
		return nil, err
	}

	var links []string
	stored, err := s.Feeds.FindFeedRule(ctx, feed.ID)
	switch {
	case err == nil:
		links, err = s.Walker.Walk(ctx, feed.Link, stored.Feed)
		if err != nil {
			return nil, err
		}
	case feedgen.ErrorCode(err) == feedgen.ENOTFOUND:
		structure, rule, err := s.Inferrer.InferFeedRule(ctx, feed.Link)
		if err != nil {
			return nil, err
		}
		if feed, err = s.storeFeed(ctx, feed.Link, structure, rule); err != nil {
			return nil, err
		}
		links = structure.Links
	default:
		return nil, err
	}

	return s.Syncer.Sync(ctx, feed, links, s.Progress)
}

func (s *Scraper) storeFeed(ctx context.Context, url string, structure *feedgen.FeedStructure, rule *feedgen.FeedStructureRule) (*feedgen.Feed, error) {
	feed := &feedgen.Feed{
		Title:       structure.Title,
		Author:      structure.Author,
		Description: structure.Description,
		Link:        url,
	}
	if feed.Title == "" {
		feed.Title = url
	}
	if err := s.Feeds.CreateFeed(ctx, feed); err != nil {
		return nil, err
	}

	saved := &feedgen.FeedRule{FeedID: feed.ID, Feed: rule}
	previous, err := s.Feeds.FindFeedRule(ctx, feed.ID)
	switch {
	case err == nil:
		saved.Post = previous.Post
	case feedgen.ErrorCode(err) != feedgen.ENOTFOUND:
		return nil, err
	}
	if err := s.Feeds.SaveFeedRule(ctx, saved); err != nil {
		return nil, err
	}

	return feed, nil
}
