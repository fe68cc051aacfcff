// Package config provides configuration management for the harvester.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"altibbi/internal/models"
	"altibbi/pkg/utils"
)

// DefaultConfigPath is read when no config file is given and it exists.
const DefaultConfigPath = "configs/harvester.yaml"

// Configuration validation errors.
var (
	ErrMissingAPIURL        = errors.New("api.url is required")
	ErrInvalidAPIURL        = errors.New("api.url must be an absolute http(s) URL")
	ErrInvalidHitsPerPage   = errors.New("api.hits_per_page must be at least 1")
	ErrInvalidTimeout       = errors.New("api.timeout must be positive")
	ErrInvalidMaxAttempts   = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidRetryDelay    = errors.New("retry.delay must be non-negative")
	ErrInvalidPageDelay     = errors.New("crawler.page_delay must be non-negative")
	ErrInvalidMaxPages      = errors.New("crawler.max_pages must be non-negative")
	ErrMissingDataDir       = errors.New("output.data_dir is required")
	ErrMissingRecordExt     = errors.New("output.record_ext is required")
	ErrNoCollections        = errors.New("at least one collection is required")
	ErrCollectionIncomplete = errors.New("collection requires name, index_name, dir, combined_file and checkpoint_file")
	ErrDuplicateCollection  = errors.New("duplicate collection name")
	ErrUnknownCollection    = errors.New("unknown collection")
	ErrInvalidLogLevel      = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat     = errors.New("logging.format must be 'text' or 'json'")
)

// Config represents the complete harvester configuration.
type Config struct {
	API         APIConfig           `yaml:"api"`
	Retry       RetryPolicy         `yaml:"retry"`
	Crawler     CrawlerConfig       `yaml:"crawler"`
	Output      OutputConfig        `yaml:"output"`
	Logging     LoggingConfig       `yaml:"logging"`
	Collections []models.Collection `yaml:"collections"`
}

// APIConfig describes the search endpoint.
type APIConfig struct {
	URL         string            `yaml:"url" env:"HARVESTER_API_URL"`
	Headers     map[string]string `yaml:"headers"`
	HitsPerPage int               `yaml:"hits_per_page" env:"HARVESTER_HITS_PER_PAGE"`
	Timeout     time.Duration     `yaml:"timeout" env:"HARVESTER_API_TIMEOUT"`
}

// RetryPolicy defines retry behavior. The delay between attempts is fixed.
type RetryPolicy struct {
	MaxAttempts int           `yaml:"max_attempts" env:"HARVESTER_RETRY_MAX_ATTEMPTS"`
	Delay       time.Duration `yaml:"delay" env:"HARVESTER_RETRY_DELAY"`
}

// CrawlerConfig contains pagination settings.
type CrawlerConfig struct {
	PageDelay time.Duration `yaml:"page_delay" env:"HARVESTER_PAGE_DELAY"`
	// MaxPages caps the pages fetched per collection per run. Zero means no cap.
	MaxPages int `yaml:"max_pages" env:"HARVESTER_MAX_PAGES"`
}

// OutputConfig defines where files are written.
type OutputConfig struct {
	DataDir       string `yaml:"data_dir" env:"HARVESTER_DATA_DIR"`
	CheckpointDir string `yaml:"checkpoint_dir" env:"HARVESTER_CHECKPOINT_DIR"`
	RecordExt     string `yaml:"record_ext"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"HARVESTER_LOG_LEVEL"`
	Format string `yaml:"format" env:"HARVESTER_LOG_FORMAT"`
}

// Defaults returns the configuration the harvester runs with when no file is given.
func Defaults() *Config {
	return &Config{
		API: APIConfig{
			URL:         "https://search.altibbi.com/api/all",
			HitsPerPage: 100,
			Timeout:     30 * time.Second,
		},
		Retry: RetryPolicy{
			MaxAttempts: 3,
			Delay:       5 * time.Second,
		},
		Crawler: CrawlerConfig{
			PageDelay: 3 * time.Second,
		},
		Output: OutputConfig{
			DataDir:       "data",
			CheckpointDir: ".",
			RecordExt:     ".json",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Collections: models.DefaultCollections(),
	}
}

// LoadConfig loads configuration from a YAML file layered over Defaults,
// then applies .env files and environment overrides.
// An empty path skips the file and uses defaults plus environment.
func LoadConfig(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ResolvePath picks the config file to load: the explicit path if set,
// otherwise DefaultConfigPath when it exists, otherwise none.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	if _, err := os.Stat(DefaultConfigPath); err == nil {
		return DefaultConfigPath
	}

	return ""
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.API.URL == "" {
		return ErrMissingAPIURL
	}

	if !utils.NewHTTPHelper().IsValidURL(c.API.URL) {
		return fmt.Errorf("%w: %s", ErrInvalidAPIURL, c.API.URL)
	}

	if c.API.HitsPerPage < 1 {
		return ErrInvalidHitsPerPage
	}

	if c.API.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Retry.Delay < 0 {
		return ErrInvalidRetryDelay
	}

	if c.Crawler.PageDelay < 0 {
		return ErrInvalidPageDelay
	}

	if c.Crawler.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	if c.Output.DataDir == "" {
		return ErrMissingDataDir
	}

	if c.Output.RecordExt == "" {
		return ErrMissingRecordExt
	}

	if len(c.Collections) == 0 {
		return ErrNoCollections
	}

	seen := make(map[string]bool, len(c.Collections))

	for i, col := range c.Collections {
		if col.Name == "" || col.IndexName == "" || col.Dir == "" || col.CombinedFile == "" || col.CheckpointFile == "" {
			return fmt.Errorf("%w: collections[%d]", ErrCollectionIncomplete, i)
		}

		if seen[col.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateCollection, col.Name)
		}

		seen[col.Name] = true
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

// SelectCollections narrows the configured collections to the given names,
// keeping configuration order. No names keeps every collection.
func (c *Config) SelectCollections(names []string) ([]models.Collection, error) {
	if len(names) == 0 {
		return c.Collections, nil
	}

	wanted := make(map[string]bool, len(names))

	for _, name := range names {
		if c.Collection(name) == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
		}

		wanted[name] = true
	}

	var selected []models.Collection

	for _, col := range c.Collections {
		if wanted[col.Name] {
			selected = append(selected, col)
		}
	}

	return selected, nil
}

// Collection returns the collection with the given name, or nil.
func (c *Config) Collection(name string) *models.Collection {
	for i := range c.Collections {
		if c.Collections[i].Name == name {
			return &c.Collections[i]
		}
	}

	return nil
}

// RecordDir follows structure: {data_dir}/{dir}.
func (c *Config) RecordDir(col models.Collection) string {
	return filepath.Join(c.Output.DataDir, col.Dir)
}

// CombinedPath follows structure: {data_dir}/{combined_file}.
func (c *Config) CombinedPath(col models.Collection) string {
	return filepath.Join(c.Output.DataDir, col.CombinedFile)
}

// CheckpointPath follows structure: {checkpoint_dir}/{checkpoint_file}.
func (c *Config) CheckpointPath(col models.Collection) string {
	return filepath.Join(c.Output.CheckpointDir, col.CheckpointFile)
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Collections: %d, MaxAttempts: %d, DataDir: %s}",
		len(c.Collections),
		c.Retry.MaxAttempts,
		c.Output.DataDir,
	)
}
