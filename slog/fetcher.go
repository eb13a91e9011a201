package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/feedgen"
)

// Ensure LoggingFetcher implements feedgen.Fetcher.
var _ feedgen.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   feedgen.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next feedgen.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the page size.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Log(ctx, level(err), "fetch",
			append([]any{
				"url", url,
				"bytes", len(html),
				"duration", time.Since(begin),
				"err", err,
			}, errAttrs(err)...)...,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
