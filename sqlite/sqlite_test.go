package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fwojciec/feedgen/sqlite"
	"github.com/stretchr/testify/require"
)

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("creates schema on first open", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(":memory:")
		err := db.Open()
		require.NoError(t, err)
		defer db.Close()

		ctx := context.Background()
		for _, table := range []string{"feeds", "feed_rules", "posts"} {
			var count int
			err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count)
			require.NoError(t, err, table)
		}
	})

	t.Run("returns error for invalid path", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB("/nonexistent/path/db.sqlite")
		err := db.Open()
		require.Error(t, err)
	})

	t.Run("enables WAL mode for file-based databases", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "feedgen.db")
		db := sqlite.NewDB(dbPath)
		err := db.Open()
		require.NoError(t, err)
		defer db.Close()

		ctx := context.Background()
		var journalMode string
		err = db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode)
		require.NoError(t, err)
		require.Equal(t, "wal", journalMode)
	})

	t.Run("keeps data across reopen", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "feedgen.db")
		ctx := context.Background()

		db := sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		_, err := db.ExecContext(ctx, `INSERT INTO feeds (id, title, link, created_at, updated_at)
			VALUES ('f1', 'Blog', 'https://example.com/blog', '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')`)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		db = sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		defer db.Close()

		var title string
		require.NoError(t, db.QueryRowContext(ctx, "SELECT title FROM feeds WHERE id = 'f1'").Scan(&title))
		require.Equal(t, "Blog", title)
	})
}
