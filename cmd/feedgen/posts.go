package main

import (
	"fmt"

	"github.com/fwojciec/feedgen"
)

// Run executes the posts command.
func (c *PostsCmd) Run(deps *Dependencies) error {
	feed, err := deps.Feeds.FindFeedByID(deps.Ctx, c.FeedID)
	if err != nil {
		if feedgen.ErrorCode(err) == feedgen.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: feed %q not found. Use 'feedgen list' to see available feeds.\n", c.FeedID)
			return err
		}
		printError(deps, err)
		return err
	}

	posts, err := deps.Posts.FindPosts(deps.Ctx, feedgen.PostFilter{FeedID: &feed.ID, Limit: c.Limit})
	if err != nil {
		printError(deps, err)
		return err
	}

	if len(posts) == 0 {
		fmt.Fprintf(deps.Stdout, "Feed %q has no posts. Run 'feedgen sync %s' to scrape them.\n", feed.Title, feed.ID)
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Posts for %s (%d shown):\n\n", feed.Title, len(posts))
	for i, p := range posts {
		title := p.Title
		if title == "" {
			title = p.Link
		}
		fmt.Fprintf(deps.Stdout, "  %d. %s\n     %s\n", i+1, title, p.Link)
		if c.Full {
			fmt.Fprintf(deps.Stdout, "\n%s\n\n", p.Content)
		}
	}

	return nil
}
