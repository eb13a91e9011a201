package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/feedgen"
	"github.com/fwojciec/feedgen/crawl"
	feedgenhttp "github.com/fwojciec/feedgen/http"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Config Config

	Feeds     feedgen.FeedService
	Posts     feedgen.PostService
	Fetcher   feedgen.Fetcher
	Converter feedgen.Converter
	Inferrer  feedgen.Inferrer
	Scraper   *crawl.Scraper
	Server    *feedgenhttp.Server

	// NewWriter opens an export destination. Defaults to fs.NewWriter.
	NewWriter func(dir string) feedgen.PostWriter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"c" type:"path" help:"Path to YAML config file"`
	DB      string `name:"db" type:"path" help:"Database path (overrides FEEDGEN_DB and config)"`
	Verbose bool   `short:"v" help:"Log debug output to stderr"`

	Analyze AnalyzeCmd `cmd:"" help:"Infer a page's feed structure and print it as JSON"`
	Add     AddCmd     `cmd:"" help:"Infer a feed and store it with its rule"`
	List    ListCmd    `cmd:"" help:"List stored feeds"`
	Posts   PostsCmd   `cmd:"" help:"List posts of a feed"`
	Sync    SyncCmd    `cmd:"" help:"Re-walk a feed and scrape its posts"`
	Post    PostCmd    `cmd:"" help:"Preview extraction of a single post"`
	Export  ExportCmd  `cmd:"" help:"Write a feed's posts to a directory as Markdown"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a feed with its posts and rule"`
	Serve   ServeCmd   `cmd:"" help:"Serve the JSON API"`
}

// AnalyzeCmd is the "analyze" subcommand.
type AnalyzeCmd struct {
	URL string `arg:"" help:"Blog index URL"`
}

// AddCmd is the "add" subcommand.
type AddCmd struct {
	URL  string `arg:"" help:"Blog index URL"`
	Sync bool   `short:"s" help:"Scrape posts right after adding"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// PostsCmd is the "posts" subcommand.
type PostsCmd struct {
	FeedID string `arg:"" name:"feed-id" help:"Feed ID"`
	Full   bool   `help:"Show full post content"`
	Limit  int    `short:"n" help:"Maximum number of posts to show"`
}

// SyncCmd is the "sync" subcommand.
type SyncCmd struct {
	FeedID      string `arg:"" name:"feed-id" help:"Feed ID"`
	Concurrency int    `short:"j" help:"Concurrent post fetch limit (overrides config)"`
}

// PostCmd is the "post" subcommand.
type PostCmd struct {
	URL string `arg:"" help:"Post URL"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	FeedID string `arg:"" name:"feed-id" help:"Feed ID"`
	Dir    string `arg:"" type:"path" help:"Output directory, replaced on success"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	FeedID string `arg:"" name:"feed-id" help:"Feed ID"`
	Force  bool   `help:"Confirm deletion"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides config)"`
}
