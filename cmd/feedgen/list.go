package main

import (
	"fmt"

	"github.com/fwojciec/feedgen"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	feeds, err := deps.Feeds.FindFeeds(deps.Ctx, feedgen.FeedFilter{})
	if err != nil {
		printError(deps, err)
		return err
	}

	if len(feeds) == 0 {
		fmt.Fprintln(deps.Stdout, "No feeds found. Use 'feedgen add' to create one.")
		return nil
	}

	for _, f := range feeds {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s\n", f.ID, f.Title, f.Link)
	}

	return nil
}
