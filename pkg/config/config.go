package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:signalscope.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Search SearchConfig `yaml:"search" json:"search" jsonschema:"description=Search pipeline configuration"`

	Platforms PlatformsConfig `yaml:"platforms" json:"platforms" jsonschema:"description=Platform adapter configuration"`
}

// SearchConfig holds search pipeline settings
type SearchConfig struct {
	DefaultLimit  int           `yaml:"default_limit" json:"default_limit" jsonschema:"default=20,minimum=1,description=Result count when the request doesn't specify one"`
	MaxLimit      int           `yaml:"max_limit" json:"max_limit" jsonschema:"default=100,description=Hard cap on requested result count"`
	SnippetLength int           `yaml:"snippet_length" json:"snippet_length" jsonschema:"default=200,minimum=1,description=Preview length adapters truncate descriptions to"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=10s,description=Per-platform search call timeout"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=SignalScope/1.0,description=User agent for platform API requests"`
}

// PlatformsConfig holds per-platform credentials and switches
type PlatformsConfig struct {
	Reddit struct {
		Enabled bool `yaml:"enabled" json:"enabled" jsonschema:"default=true,description=Enable reddit search"`
	} `yaml:"reddit" json:"reddit" jsonschema:"description=Reddit adapter settings"`

	YouTube struct {
		APIKey string `yaml:"api_key" json:"api_key" jsonschema:"description=YouTube Data API key (can use environment variable)"`
	} `yaml:"youtube" json:"youtube" jsonschema:"description=YouTube adapter settings"`

	Twitter struct {
		BearerToken string `yaml:"bearer_token" json:"bearer_token" jsonschema:"description=Twitter API v2 bearer token (can use environment variable)"`
	} `yaml:"twitter" json:"twitter" jsonschema:"description=Twitter adapter settings"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// set defaults for server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}

	// set defaults for database
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:signalscope.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	// set defaults for search
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 20
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Search.SnippetLength == 0 {
		cfg.Search.SnippetLength = 200
	}
	if cfg.Search.Timeout == 0 {
		cfg.Search.Timeout = 10 * time.Second
	}
	if cfg.Search.UserAgent == "" {
		cfg.Search.UserAgent = "SignalScope/1.0"
	}

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	// validate search config
	if cfg.Search.DefaultLimit < 1 {
		return fmt.Errorf("search default_limit must be at least 1")
	}
	if cfg.Search.MaxLimit < cfg.Search.DefaultLimit {
		return fmt.Errorf("search max_limit must be at least default_limit")
	}
	if cfg.Search.SnippetLength < 1 {
		return fmt.Errorf("search snippet_length must be at least 1")
	}
	if cfg.Search.Timeout < time.Second {
		return fmt.Errorf("search timeout must be at least 1 second")
	}

	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetSearchConfig returns search pipeline configuration
func (c *Config) GetSearchConfig() SearchConfig {
	return c.Search
}

// GetPlatformsConfig returns platform adapter configuration
func (c *Config) GetPlatformsConfig() PlatformsConfig {
	return c.Platforms
}
