package mock

import (
	"context"

	"github.com/fwojciec/feedgen"
)

var _ feedgen.FeedService = (*FeedService)(nil)

// FeedService is a mock implementation of feedgen.FeedService.
type FeedService struct {
	CreateFeedFn   func(ctx context.Context, feed *feedgen.Feed) error
	FindFeedByIDFn func(ctx context.Context, id string) (*feedgen.Feed, error)
	FindFeedsFn    func(ctx context.Context, filter feedgen.FeedFilter) ([]*feedgen.Feed, error)
	UpdateFeedFn   func(ctx context.Context, id string, upd feedgen.FeedUpdate) (*feedgen.Feed, error)
	DeleteFeedFn   func(ctx context.Context, id string) error
	SaveFeedRuleFn func(ctx context.Context, rule *feedgen.FeedRule) error
	FindFeedRuleFn func(ctx context.Context, feedID string) (*feedgen.FeedRule, error)
}

func (s *FeedService) CreateFeed(ctx context.Context, feed *feedgen.Feed) error {
	return s.CreateFeedFn(ctx, feed)
}

func (s *FeedService) FindFeedByID(ctx context.Context, id string) (*feedgen.Feed, error) {
	return s.FindFeedByIDFn(ctx, id)
}

func (s *FeedService) FindFeeds(ctx context.Context, filter feedgen.FeedFilter) ([]*feedgen.Feed, error) {
	return s.FindFeedsFn(ctx, filter)
}

func (s *FeedService) UpdateFeed(ctx context.Context, id string, upd feedgen.FeedUpdate) (*feedgen.Feed, error) {
	return s.UpdateFeedFn(ctx, id, upd)
}

func (s *FeedService) DeleteFeed(ctx context.Context, id string) error {
	return s.DeleteFeedFn(ctx, id)
}

func (s *FeedService) SaveFeedRule(ctx context.Context, rule *feedgen.FeedRule) error {
	return s.SaveFeedRuleFn(ctx, rule)
}

func (s *FeedService) FindFeedRule(ctx context.Context, feedID string) (*feedgen.FeedRule, error) {
	return s.FindFeedRuleFn(ctx, feedID)
}
