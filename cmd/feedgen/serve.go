package main

import (
	"fmt"
)

// Run executes the serve command. It blocks until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	if c.Addr != "" {
		deps.Server.Addr = c.Addr
	}

	if err := deps.Server.Open(); err != nil {
		printError(deps, err)
		return err
	}
	fmt.Fprintf(deps.Stdout, "Listening on %s\n", deps.Server.URL())
	deps.Logger.Info("server started", "addr", deps.Server.URL())

	<-deps.Ctx.Done()

	deps.Logger.Info("server stopping")
	return deps.Server.Close()
}
