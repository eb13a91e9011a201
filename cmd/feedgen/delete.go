package main

import (
	"fmt"

	"github.com/fwojciec/feedgen"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return feedgen.Errorf(feedgen.EINVALID, "use --force to confirm deletion")
	}

	feed, err := deps.Feeds.FindFeedByID(deps.Ctx, c.FeedID)
	if err != nil {
		if feedgen.ErrorCode(err) == feedgen.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: feed %q not found. Use 'feedgen list' to see available feeds.\n", c.FeedID)
			return err
		}
		printError(deps, err)
		return err
	}

	if err := deps.Feeds.DeleteFeed(deps.Ctx, feed.ID); err != nil {
		printError(deps, err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted feed %q\n", feed.Title)
	return nil
}
