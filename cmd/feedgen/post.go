package main

import (
	"fmt"

	"github.com/fwojciec/feedgen"
)

// Run executes the post command.
func (c *PostCmd) Run(deps *Dependencies) error {
	html, err := deps.Fetcher.Fetch(deps.Ctx, c.URL)
	if err != nil {
		printError(deps, feedgen.WithStage(feedgen.StageFetch, err))
		return err
	}

	post, err := deps.Inferrer.InferPostStructure(deps.Ctx, html)
	if err != nil {
		printError(deps, err)
		return err
	}

	markdown, err := deps.Converter.Convert(post.ContentHTML, c.URL)
	if err != nil {
		printError(deps, err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "# %s\n\n%s\n", post.Title, markdown)
	return nil
}
