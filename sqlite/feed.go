package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/feedgen"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ feedgen.FeedService = (*FeedService)(nil)

// FeedService implements feedgen.FeedService using SQLite.
type FeedService struct {
	db *DB
}

// NewFeedService creates a new FeedService.
func NewFeedService(db *DB) *FeedService {
	return &FeedService{db: db}
}

const feedColumns = "id, title, author, description, link, created_at, updated_at"

// CreateFeed inserts a feed or refreshes the one stored under the same link.
func (s *FeedService) CreateFeed(ctx context.Context, feed *feedgen.Feed) error {
	if err := feed.Validate(); err != nil {
		return err
	}

	now := formatTime(time.Now())
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO feeds (id, title, author, description, link, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(link) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			description = excluded.description,
			updated_at = excluded.updated_at
		RETURNING id, created_at, updated_at
	`, uuid.New().String(), feed.Title, feed.Author, feed.Description, feed.Link, now, now).
		Scan(&feed.ID, &createdAt, &updatedAt)
	if err != nil {
		return err
	}

	return parseTimestamps(createdAt, updatedAt, &feed.CreatedAt, &feed.UpdatedAt)
}

// FindFeedByID retrieves a feed by ID.
func (s *FeedService) FindFeedByID(ctx context.Context, id string) (*feedgen.Feed, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+feedColumns+" FROM feeds WHERE id = ?", id)
	feed, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, feedgen.Errorf(feedgen.ENOTFOUND, "feed not found")
	}
	if err != nil {
		return nil, err
	}
	return feed, nil
}

// FindFeeds retrieves feeds matching the filter, newest first.
func (s *FeedService) FindFeeds(ctx context.Context, filter feedgen.FeedFilter) ([]*feedgen.Feed, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + feedColumns + " FROM feeds WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Link != nil {
		query.WriteString(" AND link = ?")
		args = append(args, *filter.Link)
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feeds []*feedgen.Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, feed)
	}

	return feeds, rows.Err()
}

// UpdateFeed updates an existing feed.
func (s *FeedService) UpdateFeed(ctx context.Context, id string, upd feedgen.FeedUpdate) (*feedgen.Feed, error) {
	feed, err := s.FindFeedByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		feed.Title = *upd.Title
	}
	if upd.Author != nil {
		feed.Author = *upd.Author
	}
	if upd.Description != nil {
		feed.Description = *upd.Description
	}

	if err := feed.Validate(); err != nil {
		return nil, err
	}

	feed.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	_, err = s.db.ExecContext(ctx, `
		UPDATE feeds
		SET title = ?, author = ?, description = ?, updated_at = ?
		WHERE id = ?
	`, feed.Title, feed.Author, feed.Description, formatTime(feed.UpdatedAt), id)
	if err != nil {
		return nil, err
	}

	return feed, nil
}

// DeleteFeed permanently removes a feed. Its rule and posts go with it.
func (s *FeedService) DeleteFeed(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM feeds WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return feedgen.Errorf(feedgen.ENOTFOUND, "feed not found")
	}

	return nil
}

// SaveFeedRule stores the rules for a feed, replacing any previous ones.
func (s *FeedService) SaveFeedRule(ctx context.Context, rule *feedgen.FeedRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	if _, err := s.FindFeedByID(ctx, rule.FeedID); err != nil {
		return err
	}

	feedRule, err := json.Marshal(rule.Feed)
	if err != nil {
		return feedgen.Errorf(feedgen.EINTERNAL, "encode feed rule: %v", err)
	}
	var postRule sql.NullString
	if rule.Post != nil {
		b, err := json.Marshal(rule.Post)
		if err != nil {
			return feedgen.Errorf(feedgen.EINTERNAL, "encode post rule: %v", err)
		}
		postRule = sql.NullString{String: string(b), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO feed_rules (feed_id, feed_rule, post_rule, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(feed_id) DO UPDATE SET
			feed_rule = excluded.feed_rule,
			post_rule = excluded.post_rule,
			updated_at = excluded.updated_at
	`, rule.FeedID, string(feedRule), postRule, formatTime(time.Now()))

	return err
}

// FindFeedRule retrieves the stored rules for a feed.
func (s *FeedService) FindFeedRule(ctx context.Context, feedID string) (*feedgen.FeedRule, error) {
	var feedRule string
	var postRule sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT feed_rule, post_rule FROM feed_rules WHERE feed_id = ?
	`, feedID).Scan(&feedRule, &postRule)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, feedgen.Errorf(feedgen.ENOTFOUND, "feed rule not found")
	}
	if err != nil {
		return nil, err
	}

	// Stored rules were validated on the way in, so they are decoded
	// directly rather than through ParseRule.
	rule := &feedgen.FeedRule{FeedID: feedID}
	if err := json.Unmarshal([]byte(feedRule), &rule.Feed); err != nil {
		return nil, feedgen.Errorf(feedgen.EINTERNAL, "decode stored feed rule: %v", err)
	}
	if postRule.Valid {
		if err := json.Unmarshal([]byte(postRule.String), &rule.Post); err != nil {
			return nil, feedgen.Errorf(feedgen.EINTERNAL, "decode stored post rule: %v", err)
		}
	}

	return rule, nil
}

func scanFeed(row scanner) (*feedgen.Feed, error) {
	var feed feedgen.Feed
	var createdAt, updatedAt string

	if err := row.Scan(&feed.ID, &feed.Title, &feed.Author, &feed.Description, &feed.Link,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := parseTimestamps(createdAt, updatedAt, &feed.CreatedAt, &feed.UpdatedAt); err != nil {
		return nil, err
	}

	return &feed, nil
}
