package feedgen

import (
	"context"
	"time"
)

// Feed represents a blog index page tracked as a feed.
// Link is unique across feeds.
type Feed struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate returns an error if the feed contains invalid fields.
func (f *Feed) Validate() error {
	if f.Title == "" {
		return Errorf(EINVALID, "feed title required")
	}
	if f.Link == "" {
		return Errorf(EINVALID, "feed link required")
	}
	return nil
}

// FeedRule holds the structural rules inferred for a feed, so later syncs
// can reuse them without asking the oracle again.
type FeedRule struct {
	FeedID string             `json:"feedId"`
	Feed   *FeedStructureRule `json:"feed"`
	Post   *PostStructureRule `json:"post,omitempty"`
}

// Validate returns an error if the rule contains invalid fields.
func (r *FeedRule) Validate() error {
	if r.FeedID == "" {
		return Errorf(EINVALID, "feed rule feed ID required")
	}
	if r.Feed == nil {
		return Errorf(EINVALID, "feed rule requires a feed structure rule")
	}
	return nil
}

// FeedService represents a service for managing feeds.
type FeedService interface {
	// CreateFeed inserts a feed, or refreshes title, author and description
	// of the existing feed with the same link. The feed's ID and timestamps
	// are set from the stored row.
	CreateFeed(ctx context.Context, feed *Feed) error

	// FindFeedByID retrieves a feed by ID.
	// Returns ENOTFOUND if feed does not exist.
	FindFeedByID(ctx context.Context, id string) (*Feed, error)

	// FindFeeds retrieves feeds matching the filter.
	FindFeeds(ctx context.Context, filter FeedFilter) ([]*Feed, error)

	// UpdateFeed updates an existing feed.
	// Returns ENOTFOUND if feed does not exist.
	UpdateFeed(ctx context.Context, id string, upd FeedUpdate) (*Feed, error)

	// DeleteFeed permanently removes a feed with its posts and rules.
	// Returns ENOTFOUND if feed does not exist.
	DeleteFeed(ctx context.Context, id string) error

	// SaveFeedRule stores the rules for a feed, replacing any previous ones.
	// Returns ENOTFOUND if feed does not exist.
	SaveFeedRule(ctx context.Context, rule *FeedRule) error

	// FindFeedRule retrieves the stored rules for a feed.
	// Returns ENOTFOUND if no rule has been saved.
	FindFeedRule(ctx context.Context, feedID string) (*FeedRule, error)
}

// FeedFilter represents a filter for FindFeeds.
type FeedFilter struct {
	ID   *string `json:"id"`
	Link *string `json:"link"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// FeedUpdate represents fields that can be updated on a feed.
type FeedUpdate struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Description *string `json:"description"`
}
