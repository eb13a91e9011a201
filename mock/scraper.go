package mock

import (
	"context"

	"github.com/fwojciec/feedgen"
)

var _ feedgen.Scraper = (*Scraper)(nil)

// Scraper is a mock implementation of feedgen.Scraper.
type Scraper struct {
	AddFeedFn  func(ctx context.Context, url string) (*feedgen.Feed, error)
	SyncFeedFn func(ctx context.Context, feedID string) (*feedgen.SyncResult, error)
}

func (s *Scraper) AddFeed(ctx context.Context, url string) (*feedgen.Feed, error) {
	return s.AddFeedFn(ctx, url)
}

func (s *Scraper) SyncFeed(ctx context.Context, feedID string) (*feedgen.SyncResult, error) {
	return s.SyncFeedFn(ctx, feedID)
}
