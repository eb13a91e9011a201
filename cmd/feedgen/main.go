package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/feedgen"
	"github.com/fwojciec/feedgen/crawl"
	"github.com/fwojciec/feedgen/gemini"
	"github.com/fwojciec/feedgen/goquery"
	"github.com/fwojciec/feedgen/htmltomarkdown"
	feedgenhttp "github.com/fwojciec/feedgen/http"
	"github.com/fwojciec/feedgen/readability"
	feedgenslog "github.com/fwojciec/feedgen/slog"
	"github.com/fwojciec/feedgen/sqlite"
	"github.com/fwojciec/feedgen/trafilatura"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Getenv reads the environment. Defaults to os.Getenv.
	Getenv func(string) string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	FeedService feedgen.FeedService
	PostService feedgen.PostService

	// closers are released in reverse order by Close.
	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Getenv: os.Getenv}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var firstErr error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil
	return firstErr
}

// oracleCommands need GEMINI_API_KEY before they start.
var oracleCommands = map[string]bool{
	"analyze": true,
	"add":     true,
	"sync":    true,
	"post":    true,
	"serve":   true,
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("feedgen"),
		kong.Description("Turn blog index pages into structured feeds."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'feedgen --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	cfg, err := m.loadConfig(cli)
	if err != nil {
		return err
	}
	if oracleCommands[cmd] {
		if err := cfg.RequireAPIKey(); err != nil {
			return err
		}
	}
	deps.Config = cfg

	logger, err := m.newLogger(cfg, cli.Verbose, cmd == "serve", stderr)
	if err != nil {
		return err
	}
	deps.Logger = logger

	if err := os.MkdirAll(filepath.Dir(cfg.DB.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	m.DB = sqlite.NewDB(cfg.DB.Path)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set FEEDGEN_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", cfg.DB.Path, err)
	}
	m.closers = append(m.closers, m.DB)
	defer m.Close()

	m.FeedService = sqlite.NewFeedService(m.DB)
	m.PostService = sqlite.NewPostService(m.DB)
	deps.Feeds = m.FeedService
	deps.Posts = m.PostService

	if oracleCommands[cmd] {
		if err := m.wire(deps, cfg, logger); err != nil {
			return err
		}
	}

	return kongCtx.Run(deps)
}

// loadConfig layers the config file, the environment and global flags.
func (m *Main) loadConfig(cli *CLI) (Config, error) {
	cfg, err := LoadConfig(cli.Config)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(m.Getenv)
	if cli.DB != "" {
		cfg.DB.Path = cli.DB
	}
	if cli.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, cfg.Validate()
}

// newLogger logs text to stderr, or JSON to a rotating file when serving
// with log.file set.
func (m *Main) newLogger(cfg Config, verbose, serving bool, stderr io.Writer) (*slog.Logger, error) {
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	if serving && cfg.Log.File != "" {
		w := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		}
		m.closers = append(m.closers, w)
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}

	// Outside of serve, progress goes to stdout and only warnings are
	// logged unless asked for.
	if !serving && !verbose && level < slog.LevelWarn {
		opts.Level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(stderr, opts)), nil
}

// wire builds the oracle-backed pipeline.
func (m *Main) wire(deps *Dependencies, cfg Config, logger *slog.Logger) error {
	fetcher := feedgenslog.NewLoggingFetcher(feedgenhttp.NewFetcher(
		feedgenhttp.WithTimeout(cfg.HTTP.Timeout),
		feedgenhttp.WithUserAgent(cfg.HTTP.UserAgent),
	), logger)
	m.closers = append(m.closers, fetcher)

	opts := []gemini.Option{
		gemini.WithModel(cfg.Oracle.Model),
		gemini.WithEndpoint(cfg.Oracle.Endpoint),
		gemini.WithTimeout(cfg.Oracle.Timeout),
	}
	if cfg.Oracle.MaxInputTokens > 0 {
		counter, err := gemini.NewTokenCounter(cfg.Oracle.Model)
		if err != nil {
			return err
		}
		opts = append(opts, gemini.WithTokenBudget(counter, cfg.Oracle.MaxInputTokens))
	}
	classifier := feedgenslog.NewLoggingClassifier(gemini.NewClassifier(cfg.APIKey, opts...), logger)

	retryLog := func(format string, args ...any) {
		logger.Info(fmt.Sprintf(format, args...))
	}
	limiter := crawl.NewDomainLimiter(cfg.Sync.RequestsPerSecond)
	engine := goquery.NewEngine()

	walker := &crawl.Walker{
		Fetcher:     fetcher,
		Engine:      engine,
		RateLimiter: limiter,
		MaxPages:    cfg.Walk.MaxPages,
		RetryDelays: crawl.DefaultRetryDelays(),
		Timeout:     cfg.Walk.Timeout,
		Log:         retryLog,
	}
	inferrer := feedgenslog.NewLoggingInferrer(&crawl.Inferrer{
		Fetcher:    fetcher,
		Classifier: classifier,
		Engine:     engine,
		Walker:     walker,
	}, logger)

	converter := htmltomarkdown.NewConverter()
	syncer := &crawl.Syncer{
		Fetcher:     fetcher,
		Inferrer:    inferrer,
		Extractor:   crawl.Extractors{trafilatura.NewExtractor(), readability.NewExtractor()},
		Converter:   converter,
		Feeds:       m.FeedService,
		Posts:       m.PostService,
		RateLimiter: limiter,
		Concurrency: cfg.Sync.Concurrency,
		Log:         retryLog,
	}

	deps.Fetcher = fetcher
	deps.Converter = converter
	deps.Inferrer = inferrer
	deps.Scraper = &crawl.Scraper{
		Inferrer: inferrer,
		Walker:   walker,
		Syncer:   syncer,
		Feeds:    m.FeedService,
	}

	server := feedgenhttp.NewServer()
	server.Addr = cfg.Server.Addr
	server.Logger = logger
	server.FeedService = m.FeedService
	server.PostService = m.PostService
	server.Inferrer = inferrer
	server.Scraper = deps.Scraper
	deps.Server = server

	return nil
}
