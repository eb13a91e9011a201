package main

import (
	"fmt"

	"github.com/fwojciec/feedgen/crawl"
)

// Run executes the sync command.
func (c *SyncCmd) Run(deps *Dependencies) error {
	if c.Concurrency > 0 {
		deps.Scraper.Syncer.Concurrency = c.Concurrency
	}

	deps.Scraper.Progress = func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "  Found %d posts\n", event.Total)
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", crawl.TruncateURL(event.URL, 80), event.Error)
		}
	}

	result, err := deps.Scraper.SyncFeed(deps.Ctx, c.FeedID)
	if result != nil {
		fmt.Fprintf(deps.Stdout, "  Saved %d posts (%s)", result.Saved, crawl.FormatBytes(result.Bytes))
		if result.Fallbacks > 0 {
			fmt.Fprintf(deps.Stdout, ", %d via fallback extraction", result.Fallbacks)
		}
		if result.Failed > 0 {
			fmt.Fprintf(deps.Stdout, ", %d failed", result.Failed)
		}
		fmt.Fprintln(deps.Stdout)
	}
	if err != nil {
		printError(deps, err)
		return err
	}

	return nil
}
