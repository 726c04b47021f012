package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"FeedMonitor/internal/domain"
)

const (
	configPathEnv     = "FEED_MONITOR_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	defaultConfigPath = "config.yaml"
)

// Config holds all settings required across the application.
type Config struct {
	Server     ServerConfig        `yaml:"server"`
	Processing ProcessingConfig    `yaml:"processing"`
	Embedding  EmbeddingConfig     `yaml:"embedding"`
	Database   DatabaseConfig      `yaml:"database"`
	Keywords   KeywordConfig       `yaml:"keywords"`
	Feeds      []domain.FeedConfig `yaml:"feeds"`
	Logging    LoggingConfig       `yaml:"logging"`
}

// ServerConfig describes the HTTP listener and output locations.
type ServerConfig struct {
	Port      int    `yaml:"port"`
	LogFile   string `yaml:"logFile"`
	OutputDir string `yaml:"outputDir"`
	PassDir   string `yaml:"passDir"`
	FailDir   string `yaml:"failDir"`
}

// ProcessingConfig tunes the scoring and matching pipeline. The
// thresholds are pointers so an absent field can be told apart from an
// explicit 0, which is a valid threshold.
type ProcessingConfig struct {
	CheckInterval       string   `yaml:"checkInterval"`
	SweepSchedule       string   `yaml:"sweepSchedule"`
	MaxItemsPerFeed     int      `yaml:"maxItemsPerFeed"`
	RelevanceThreshold  *float64 `yaml:"relevanceThreshold"`
	MatchThreshold      *float64 `yaml:"matchThreshold"`
	MatchExpirationDays int      `yaml:"matchExpirationDays"`
}

// EmbeddingConfig describes the external embedding oracle. Flag is a
// pointer so an absent devMode can be told apart from an explicit false.
type EmbeddingConfig struct {
	Endpoint string `yaml:"endpoint"`
	Flag     *bool  `yaml:"devMode"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN in
// dev mode selects the in-memory stores.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// KeywordConfig carries the global keyword taxonomy.
type KeywordConfig struct {
	Global []string `yaml:"global"`
}

// LoggingConfig controls slog construction.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DevMode reports the devMode flag; validation guarantees it is set.
func (e EmbeddingConfig) DevMode() bool {
	return e.Flag != nil && *e.Flag
}

// Load reads and validates the YAML configuration. Any missing or
// malformed required field is a startup-fatal error.
func Load() (Config, error) {
	path := os.Getenv(configPathEnv)
	if path == "" {
		path = defaultConfigPath
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	return Parse(raw)
}

// Parse decodes and validates a raw configuration document.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
}

func (c *Config) applyDefaults() {
	if c.Processing.SweepSchedule == "" {
		c.Processing.SweepSchedule = "0 0 * * *"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks every required field and reports the first problem
// with a descriptive error.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid or missing server.port")
	}
	if c.Server.LogFile == "" {
		return fmt.Errorf("invalid or missing server.logFile")
	}
	if c.Server.OutputDir == "" {
		return fmt.Errorf("invalid or missing server.outputDir")
	}
	if c.Server.PassDir == "" || c.Server.FailDir == "" {
		return fmt.Errorf("invalid or missing server.passDir/server.failDir")
	}

	if c.Processing.CheckInterval == "" {
		return fmt.Errorf("invalid or missing processing.checkInterval")
	}
	if c.Processing.MaxItemsPerFeed <= 0 {
		return fmt.Errorf("invalid or missing processing.maxItemsPerFeed")
	}
	if c.Processing.RelevanceThreshold == nil || *c.Processing.RelevanceThreshold < 0 {
		return fmt.Errorf("invalid or missing processing.relevanceThreshold")
	}
	if c.Processing.MatchThreshold == nil || *c.Processing.MatchThreshold < 0 || *c.Processing.MatchThreshold > 1 {
		return fmt.Errorf("invalid or missing processing.matchThreshold (must be between 0 and 1)")
	}
	if c.Processing.MatchExpirationDays <= 0 {
		return fmt.Errorf("invalid or missing processing.matchExpirationDays (must be positive)")
	}

	if c.Embedding.Endpoint == "" {
		return fmt.Errorf("invalid or missing embedding.endpoint")
	}
	if c.Embedding.Flag == nil {
		return fmt.Errorf("missing embedding.devMode flag")
	}

	if c.Database.DSN == "" && !*c.Embedding.Flag {
		return fmt.Errorf("missing database.dsn (required unless embedding.devMode is true)")
	}
	if c.Database.DSN != "" && *c.Embedding.Flag {
		return fmt.Errorf("embedding.devMode cannot be combined with database.dsn (dev mode runs on in-memory stores)")
	}

	if len(c.Keywords.Global) == 0 {
		return fmt.Errorf("invalid or missing keywords.global (must be a non-empty list)")
	}

	if len(c.Feeds) == 0 {
		return fmt.Errorf("invalid or missing feeds (must be a non-empty list)")
	}
	for i, feed := range c.Feeds {
		if feed.URL == "" {
			return fmt.Errorf("invalid or missing url for feed at index %d", i)
		}
		if feed.Name == "" {
			return fmt.Errorf("invalid or missing name for feed at index %d", i)
		}
	}

	return nil
}
