package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/feedgen"
	"github.com/fwojciec/feedgen/crawl"
	"github.com/fwojciec/feedgen/gemini"
	feedgenhttp "github.com/fwojciec/feedgen/http"
	"gopkg.in/yaml.v3"
)

// Config holds settings read from the optional YAML file.
// Environment variables and flags override it.
type Config struct {
	Oracle OracleConfig `yaml:"oracle"`
	HTTP   HTTPConfig   `yaml:"http"`
	Walk   WalkConfig   `yaml:"walk"`
	Sync   SyncConfig   `yaml:"sync"`
	DB     DBConfig     `yaml:"db"`
	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`

	// APIKey is read from GEMINI_API_KEY only, never from the file.
	APIKey string `yaml:"-"`
}

type OracleConfig struct {
	Model          string        `yaml:"model"`
	Endpoint       string        `yaml:"endpoint"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxInputTokens int           `yaml:"max_input_tokens"`
}

type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

type WalkConfig struct {
	MaxPages int           `yaml:"max_pages"`
	Timeout  time.Duration `yaml:"timeout"`
}

type SyncConfig struct {
	Concurrency       int     `yaml:"concurrency"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Oracle: OracleConfig{
			Model:          gemini.DefaultModel,
			Endpoint:       gemini.DefaultEndpoint,
			Timeout:        gemini.DefaultTimeout,
			MaxInputTokens: 500_000,
		},
		HTTP: HTTPConfig{
			Timeout:   feedgenhttp.DefaultFetchTimeout,
			UserAgent: feedgenhttp.DefaultUserAgent,
		},
		Walk: WalkConfig{
			MaxPages: crawl.DefaultMaxPages,
			Timeout:  5 * time.Minute,
		},
		Sync: SyncConfig{
			Concurrency:       crawl.DefaultConcurrency,
			RequestsPerSecond: 1,
		},
		DB:     DBConfig{Path: defaultDBPath()},
		Log:    LogConfig{Level: "info", MaxSizeMB: 10, MaxBackups: 3},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// LoadConfig reads the YAML file at path over the defaults.
// An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, feedgen.Errorf(feedgen.ECONFIG, "read config %q: %v", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, feedgen.Errorf(feedgen.ECONFIG, "parse config %q: %v", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with GEMINI_API_KEY and FEEDGEN_DB.
func (c *Config) ApplyEnv(getenv func(string) string) {
	c.APIKey = strings.TrimSpace(getenv("GEMINI_API_KEY"))
	if path := getenv("FEEDGEN_DB"); path != "" {
		c.DB.Path = path
	}
}

// Validate returns ECONFIG for settings that cannot work.
func (c *Config) Validate() error {
	if c.DB.Path == "" {
		return feedgen.Errorf(feedgen.ECONFIG, "db.path is required")
	}
	if c.Oracle.Model == "" {
		return feedgen.Errorf(feedgen.ECONFIG, "oracle.model is required")
	}
	if c.Oracle.Timeout <= 0 {
		return feedgen.Errorf(feedgen.ECONFIG, "oracle.timeout must be > 0")
	}
	if c.HTTP.Timeout <= 0 {
		return feedgen.Errorf(feedgen.ECONFIG, "http.timeout must be > 0")
	}
	if c.Walk.MaxPages <= 0 {
		return feedgen.Errorf(feedgen.ECONFIG, "walk.max_pages must be > 0")
	}
	if c.Walk.Timeout < 0 {
		return feedgen.Errorf(feedgen.ECONFIG, "walk.timeout must be >= 0")
	}
	if c.Sync.Concurrency <= 0 {
		return feedgen.Errorf(feedgen.ECONFIG, "sync.concurrency must be > 0")
	}
	if c.Sync.RequestsPerSecond < 0 {
		return feedgen.Errorf(feedgen.ECONFIG, "sync.requests_per_second must be >= 0")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// RequireAPIKey returns ECONFIG when no oracle key is configured.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return feedgen.Errorf(feedgen.ECONFIG, "GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
	}
	return nil
}

// SlogLevel parses the configured log level.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, feedgen.Errorf(feedgen.ECONFIG, "log.level %q is not a level", c.Level)
	}
	return level, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "feedgen.db"
	}
	return filepath.Join(home, ".feedgen", "feedgen.db")
}
