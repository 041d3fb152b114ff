// Package config loads and validates the flat parameter bundle consumed by
// the normalization, storage, index, and query components. Configuration is
// YAML on disk, merged with environment variable overrides, matching the
// database.* / search.* / server.* / logging.* keys recognized by the core.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/salacoste/swagger-mcp-server/internal/logging"
)

// Config holds the full configuration bundle for a swagger-mcp-server instance.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Search   SearchConfig   `yaml:"search"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig controls the relational store connection.
type DatabaseConfig struct {
	Path     string `yaml:"path"`
	PoolSize int    `yaml:"pool_size"`
	Timeout  int    `yaml:"timeout"` // seconds, 1..60
}

// SearchConfig controls the keyword-weighted index and query engine.
type SearchConfig struct {
	IndexDirectory string             `yaml:"index_directory"`
	Engine         string             `yaml:"engine"` // reserved, currently only "weighted"
	FieldWeights   FieldWeightsConfig `yaml:"field_weights"`
	Performance    PerformanceConfig  `yaml:"performance"`
}

// FieldWeightsConfig scales per-field contribution to the BM25F-family score.
// Each weight must fall in [0.1, 3.0].
type FieldWeightsConfig struct {
	EndpointPath float64 `yaml:"endpoint_path"`
	Summary      float64 `yaml:"summary"`
	Description  float64 `yaml:"description"`
	Parameters   float64 `yaml:"parameters"`
	Tags         float64 `yaml:"tags"`
}

// PerformanceConfig tunes query execution budgets and caching.
type PerformanceConfig struct {
	CacheSizeMB   int `yaml:"cache_size_mb"`   // 16..1024
	MaxResults    int `yaml:"max_results"`     // 10..10000
	SearchTimeout int `yaml:"search_timeout"`  // seconds, 1..30
}

// ServerConfig controls the MCP-facing serving limits.
type ServerConfig struct {
	MaxConnections int `yaml:"max_connections"` // 1..1000
	Timeout        int `yaml:"timeout"`         // seconds, 1..300
}

// LoggingConfig configures categorized file logging.
type LoggingConfig struct {
	Level      string           `yaml:"level"` // DEBUG|INFO|WARNING|ERROR
	File       string           `yaml:"file"`  // base data directory for logs, empty disables
	JSONFormat bool             `yaml:"json_format"`
	Categories map[string]bool  `yaml:"categories"`
	Rotation   RotationConfig   `yaml:"rotation"`
}

// RotationConfig controls log file rotation.
type RotationConfig struct {
	MaxSizeMB  int  `yaml:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups"`
	Compress   bool `yaml:"compress"`
}

// DefaultConfig returns the configuration applied when no file is found and
// no overrides are set.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:     "data/mcp_server.db",
			PoolSize: 5,
			Timeout:  30,
		},
		Search: SearchConfig{
			IndexDirectory: "data/search_index",
			Engine:         "weighted",
			FieldWeights: FieldWeightsConfig{
				EndpointPath: 1.8,
				Summary:      1.5,
				Description:  1.2,
				Parameters:   0.9,
				Tags:         0.7,
			},
			Performance: PerformanceConfig{
				CacheSizeMB:   64,
				MaxResults:    1000,
				SearchTimeout: 1,
			},
		},
		Server: ServerConfig{
			MaxConnections: 100,
			Timeout:        5,
		},
		Logging: LoggingConfig{
			Level:      "INFO",
			File:       "data",
			JSONFormat: false,
			Rotation: RotationConfig{
				MaxSizeMB:  50,
				MaxBackups: 5,
				Compress:   true,
			},
		},
	}
}

// Load reads configuration from a YAML file, falling back to defaults when
// the file does not exist, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	logging.BootDebug("loading config from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Boot("config file not found, using defaults: %s", path)
			cfg.applyEnvOverrides()
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	logging.Boot("config loaded: db=%s index=%s", cfg.Database.Path, cfg.Search.IndexDirectory)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration back to path as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// applyEnvOverrides layers environment variables on top of file/default values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SWAGGER_MCP_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("SWAGGER_MCP_INDEX_DIR"); v != "" {
		c.Search.IndexDirectory = v
	}
	if v := os.Getenv("SWAGGER_MCP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SWAGGER_MCP_LOG_DIR"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("SWAGGER_MCP_MAX_CONNECTIONS"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			c.Server.MaxConnections = n
		}
	}
}

func parsePositiveInt(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid positive integer: %s", s)
	}
	return n, nil
}

// DatabaseTimeout returns the configured database timeout as a duration.
func (c *Config) DatabaseTimeout() time.Duration {
	return time.Duration(c.Database.Timeout) * time.Second
}

// SearchTimeout returns the configured query execution budget as a duration.
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.Search.Performance.SearchTimeout) * time.Second
}

// ServerTimeout returns the per-request deadline as a duration.
func (c *Config) ServerTimeout() time.Duration {
	return time.Duration(c.Server.Timeout) * time.Second
}

// Validate checks all bundle keys against the recognized ranges, per the
// configuration surface contract.
func (c *Config) Validate() error {
	if err := validateRange("database.pool_size", c.Database.PoolSize, 1, 50); err != nil {
		return err
	}
	if err := validateRange("database.timeout", c.Database.Timeout, 1, 60); err != nil {
		return err
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}

	for name, w := range map[string]float64{
		"search.field_weights.endpoint_path": c.Search.FieldWeights.EndpointPath,
		"search.field_weights.summary":       c.Search.FieldWeights.Summary,
		"search.field_weights.description":   c.Search.FieldWeights.Description,
		"search.field_weights.parameters":    c.Search.FieldWeights.Parameters,
		"search.field_weights.tags":          c.Search.FieldWeights.Tags,
	} {
		if w < 0.1 || w > 3.0 {
			return fmt.Errorf("%s must be in [0.1, 3.0], got %v", name, w)
		}
	}
	if err := validateRange("search.performance.cache_size_mb", c.Search.Performance.CacheSizeMB, 16, 1024); err != nil {
		return err
	}
	if err := validateRange("search.performance.max_results", c.Search.Performance.MaxResults, 10, 10000); err != nil {
		return err
	}
	if err := validateRange("search.performance.search_timeout", c.Search.Performance.SearchTimeout, 1, 30); err != nil {
		return err
	}
	if c.Search.IndexDirectory == "" {
		return fmt.Errorf("search.index_directory must not be empty")
	}

	if err := validateRange("server.max_connections", c.Server.MaxConnections, 1, 1000); err != nil {
		return err
	}
	if err := validateRange("server.timeout", c.Server.Timeout, 1, 300); err != nil {
		return err
	}

	switch c.Logging.Level {
	case "DEBUG", "INFO", "WARNING", "ERROR":
	default:
		return fmt.Errorf("logging.level must be one of DEBUG|INFO|WARNING|ERROR, got %q", c.Logging.Level)
	}

	return nil
}

func validateRange(key string, value, min, max int) error {
	if value < min || value > max {
		return fmt.Errorf("%s must be in [%d, %d], got %d", key, min, max, value)
	}
	return nil
}
