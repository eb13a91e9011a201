package feedgen

import "context"

// SyncResult holds the outcome of scraping a feed's posts.
type SyncResult struct {
	Links     int `json:"links"`
	Saved     int `json:"saved"`
	Failed    int `json:"failed"`
	Fallbacks int `json:"fallbacks"`
	Bytes     int `json:"bytes"`
}

// Scraper registers feeds and keeps their posts current.
type Scraper interface {
	// AddFeed infers the structure of the index page at url, stores the
	// feed (upserting on url) and saves its rule for later syncs.
	AddFeed(ctx context.Context, url string) (*Feed, error)

	// SyncFeed re-walks a stored feed with its saved rule and upserts every
	// post it links to. Returns ENOTFOUND if the feed does not exist.
	SyncFeed(ctx context.Context, feedID string) (*SyncResult, error)
}
