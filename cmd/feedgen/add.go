package main

import (
	"fmt"
)

// Run executes the add command.
func (c *AddCmd) Run(deps *Dependencies) error {
	feed, err := deps.Scraper.AddFeed(deps.Ctx, c.URL)
	if err != nil {
		printError(deps, err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Added feed %q (%s)\n", feed.Title, feed.ID)

	if !c.Sync {
		return nil
	}
	return (&SyncCmd{FeedID: feed.ID}).Run(deps)
}
