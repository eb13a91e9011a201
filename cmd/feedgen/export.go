package main

import (
	"fmt"

	"github.com/fwojciec/feedgen"
	"github.com/fwojciec/feedgen/fs"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	feed, err := deps.Feeds.FindFeedByID(deps.Ctx, c.FeedID)
	if err != nil {
		if feedgen.ErrorCode(err) == feedgen.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: feed %q not found. Use 'feedgen list' to see available feeds.\n", c.FeedID)
			return err
		}
		printError(deps, err)
		return err
	}

	posts, err := deps.Posts.FindPosts(deps.Ctx, feedgen.PostFilter{FeedID: &feed.ID})
	if err != nil {
		printError(deps, err)
		return err
	}

	newWriter := deps.NewWriter
	if newWriter == nil {
		newWriter = func(dir string) feedgen.PostWriter { return fs.NewWriter(dir) }
	}

	if err := exportPosts(deps, newWriter(c.Dir), posts); err != nil {
		printError(deps, err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Exported %d posts of %q to %s\n", len(posts), feed.Title, c.Dir)
	return nil
}

func exportPosts(deps *Dependencies, w feedgen.PostWriter, posts []*feedgen.Post) error {
	for _, p := range posts {
		if err := w.WritePost(deps.Ctx, p); err != nil {
			_ = w.Abort()
			return err
		}
	}
	return w.Commit()
}
