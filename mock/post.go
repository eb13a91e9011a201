package mock

import (
	"context"

	"github.com/fwojciec/feedgen"
)

var _ feedgen.PostService = (*PostService)(nil)

// PostService is a mock implementation of feedgen.PostService.
type PostService struct {
	UpsertPostFn        func(ctx context.Context, post *feedgen.Post) error
	FindPostByIDFn      func(ctx context.Context, id string) (*feedgen.Post, error)
	FindPostsFn         func(ctx context.Context, filter feedgen.PostFilter) ([]*feedgen.Post, error)
	DeletePostsByFeedFn func(ctx context.Context, feedID string) error
}

func (s *PostService) UpsertPost(ctx context.Context, post *feedgen.Post) error {
	return s.UpsertPostFn(ctx, post)
}

func (s *PostService) FindPostByID(ctx context.Context, id string) (*feedgen.Post, error) {
	return s.FindPostByIDFn(ctx, id)
}

func (s *PostService) FindPosts(ctx context.Context, filter feedgen.PostFilter) ([]*feedgen.Post, error) {
	return s.FindPostsFn(ctx, filter)
}

func (s *PostService) DeletePostsByFeed(ctx context.Context, feedID string) error {
	return s.DeletePostsByFeedFn(ctx, feedID)
}
