package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/feedgen"
)

// Run executes the analyze command.
func (c *AnalyzeCmd) Run(deps *Dependencies) error {
	structure, err := deps.Inferrer.InferFeedStructure(deps.Ctx, c.URL)
	if err != nil {
		printError(deps, err)
		return err
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(structure)
}

// printError reports err on stderr with its stage, if any.
func printError(deps *Dependencies, err error) {
	if stage := feedgen.ErrorStage(err); stage != "" {
		fmt.Fprintf(deps.Stderr, "error (%s): %s\n", stage, feedgen.ErrorMessage(err))
		return
	}
	fmt.Fprintf(deps.Stderr, "error: %s\n", feedgen.ErrorMessage(err))
}
