package feedgen

import (
	"context"
	"time"
)

// Post represents a single scraped blog post belonging to a feed.
// Content is Markdown; ContentHash identifies it for change detection.
type Post struct {
	ID          string    `json:"id"`
	FeedID      string    `json:"feedId"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Content     string    `json:"content"`
	ContentHash string    `json:"contentHash"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate returns an error if the post contains invalid fields.
func (p *Post) Validate() error {
	if p.FeedID == "" {
		return Errorf(EINVALID, "post feed ID required")
	}
	if p.Link == "" {
		return Errorf(EINVALID, "post link required")
	}
	return nil
}

// PostService represents a service for managing posts.
type PostService interface {
	// UpsertPost inserts a post, or updates the existing post with the same
	// link. The post's ID and timestamps are set from the stored row.
	UpsertPost(ctx context.Context, post *Post) error

	// FindPostByID retrieves a post by ID.
	// Returns ENOTFOUND if post does not exist.
	FindPostByID(ctx context.Context, id string) (*Post, error)

	// FindPosts retrieves posts matching the filter, newest first.
	FindPosts(ctx context.Context, filter PostFilter) ([]*Post, error)

	// DeletePostsByFeed removes all posts for a feed.
	DeletePostsByFeed(ctx context.Context, feedID string) error
}

// PostFilter represents a filter for FindPosts.
type PostFilter struct {
	ID     *string `json:"id"`
	FeedID *string `json:"feedId"`
	Link   *string `json:"link"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// PostWriter writes posts to an export destination. Written posts become
// visible only on Commit; Abort discards them.
type PostWriter interface {
	WritePost(ctx context.Context, post *Post) error
	Commit() error
	Abort() error
}
