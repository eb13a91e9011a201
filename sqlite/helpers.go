package sqlite

import (
	"fmt"
	"strings"
	"time"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// formatTime formats a timestamp the way it is stored.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseRFC3339 parses an RFC3339 formatted timestamp string.
// Returns an error if parsing fails with a descriptive message including the field name.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// parseTimestamps parses created_at and updated_at into their destinations.
func parseTimestamps(createdAt, updatedAt string, created, updated *time.Time) error {
	var err error
	if *created, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return err
	}
	if *updated, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return err
	}
	return nil
}

// appendPagination appends LIMIT and OFFSET clauses to a query builder if values are > 0.
// SQLite requires a LIMIT before OFFSET, so an offset alone uses LIMIT -1.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	} else if offset > 0 {
		query.WriteString(" LIMIT -1")
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}
