package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/feedgen"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ feedgen.PostService = (*PostService)(nil)

// PostService implements feedgen.PostService using SQLite.
type PostService struct {
	db *DB
}

// NewPostService creates a new PostService.
func NewPostService(db *DB) *PostService {
	return &PostService{db: db}
}

const postColumns = "id, feed_id, title, link, content, content_hash, created_at, updated_at"

// UpsertPost inserts a post or replaces the content of the one stored under
// the same link. A post whose content hash is unchanged keeps its updated_at.
func (s *PostService) UpsertPost(ctx context.Context, post *feedgen.Post) error {
	if err := post.Validate(); err != nil {
		return err
	}

	now := formatTime(time.Now())
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (id, feed_id, title, link, content, content_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(link) DO UPDATE SET
			feed_id = excluded.feed_id,
			title = excluded.title,
			content = excluded.content,
			updated_at = CASE
				WHEN posts.content_hash = excluded.content_hash AND posts.title = excluded.title
				THEN posts.updated_at
				ELSE excluded.updated_at
			END,
			content_hash = excluded.content_hash
		RETURNING id, created_at, updated_at
	`, uuid.New().String(), post.FeedID, post.Title, post.Link, post.Content, post.ContentHash, now, now).
		Scan(&post.ID, &createdAt, &updatedAt)
	if err != nil {
		return err
	}

	return parseTimestamps(createdAt, updatedAt, &post.CreatedAt, &post.UpdatedAt)
}

// FindPostByID retrieves a post by ID.
func (s *PostService) FindPostByID(ctx context.Context, id string) (*feedgen.Post, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE id = ?", id)
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, feedgen.Errorf(feedgen.ENOTFOUND, "post not found")
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

// FindPosts retrieves posts matching the filter, newest first.
func (s *PostService) FindPosts(ctx context.Context, filter feedgen.PostFilter) ([]*feedgen.Post, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + postColumns + " FROM posts WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.FeedID != nil {
		query.WriteString(" AND feed_id = ?")
		args = append(args, *filter.FeedID)
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

	var posts []*feedgen.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

// DeletePostsByFeed removes all posts for a feed.
func (s *PostService) DeletePostsByFeed(ctx context.Context, feedID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM posts WHERE feed_id = ?", feedID)
	return err
}

func scanPost(row scanner) (*feedgen.Post, error) {
	var post feedgen.Post
	var createdAt, updatedAt string

	if err := row.Scan(&post.ID, &post.FeedID, &post.Title, &post.Link, &post.Content, &post.ContentHash,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := parseTimestamps(createdAt, updatedAt, &post.CreatedAt, &post.UpdatedAt); err != nil {
		return nil, err
	}

	return &post, nil
}
