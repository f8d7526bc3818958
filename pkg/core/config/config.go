// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leseb/tabconv/pkg/renderer"
)

// Config represents the main configuration
type Config struct {
	Server  ServerConfig        `yaml:"server"`
	Logging LoggingConfig       `yaml:"logging"`
	Journal JournalConfig       `yaml:"journal"`
	Archive ArchiveConfig       `yaml:"archive"`
	Metrics MetricsConfig       `yaml:"metrics"`
	PDF     renderer.PDFOptions `yaml:"pdf"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
}

// LoggingConfig selects the log level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// JournalConfig selects the conversion journal backend.
type JournalConfig struct {
	Type       string `yaml:"type"`        // "memory" (default), "sqlite", "postgres" or "none"
	MaxEntries int    `yaml:"max_entries"` // memory only; 0 means unbounded
	Path       string `yaml:"path"`        // sqlite database file
	DSN        string `yaml:"dsn"`         // postgres connection string
}

// ArchiveConfig selects where rendered results are kept. An empty type
// disables archiving.
type ArchiveConfig struct {
	Type    string   `yaml:"type"`     // "", "memory", "filesystem" or "s3"
	BaseDir string   `yaml:"base_dir"` // filesystem only
	S3      S3Config `yaml:"s3"`
}

// S3Config contains S3 archive settings
type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Prefix   string `yaml:"prefix"`
	Endpoint string `yaml:"endpoint"` // e.g. a MinIO URL
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Params returns the provider parameters for the configured journal.
func (c JournalConfig) Params() map[string]string {
	return map[string]string{
		"max_entries": strconv.Itoa(c.MaxEntries),
		"path":        c.Path,
		"dsn":         c.DSN,
	}
}

// Params returns the provider parameters for the configured archive.
func (c ArchiveConfig) Params() map[string]string {
	return map[string]string{
		"base_dir": c.BaseDir,
		"bucket":   c.S3.Bucket,
		"region":   c.S3.Region,
		"prefix":   c.S3.Prefix,
		"endpoint": c.S3.Endpoint,
	}
}

// Load loads configuration from a YAML file. Keys absent from the file keep
// their default values; environment variables override both.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns default configuration with environment overrides applied.
func Default() *Config {
	cfg := defaults()
	// Invalid numeric overrides are reported by Load; here they are ignored.
	_ = applyEnv(cfg)
	return cfg
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			ReadTimeout:    60 * time.Second,
			WriteTimeout:   60 * time.Second,
			MaxUploadBytes: 32 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Journal: JournalConfig{
			Type:       "memory",
			MaxEntries: 1000,
			Path:       "tabconv.db",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	if c.Journal.Type == "postgres" && c.Journal.DSN == "" {
		return fmt.Errorf("journal.dsn is required for the postgres journal")
	}
	if c.Archive.Type == "filesystem" && c.Archive.BaseDir == "" {
		return fmt.Errorf("archive.base_dir is required for the filesystem archive")
	}
	if c.Archive.Type == "s3" && c.Archive.S3.Bucket == "" {
		return fmt.Errorf("archive.s3.bucket is required for the s3 archive")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"TABCONV_HOST":                &cfg.Server.Host,
		"TABCONV_LOG_LEVEL":           &cfg.Logging.Level,
		"TABCONV_LOG_FORMAT":          &cfg.Logging.Format,
		"TABCONV_JOURNAL_TYPE":        &cfg.Journal.Type,
		"TABCONV_JOURNAL_PATH":        &cfg.Journal.Path,
		"TABCONV_JOURNAL_DSN":         &cfg.Journal.DSN,
		"TABCONV_ARCHIVE_TYPE":        &cfg.Archive.Type,
		"TABCONV_ARCHIVE_DIR":         &cfg.Archive.BaseDir,
		"TABCONV_ARCHIVE_S3_BUCKET":   &cfg.Archive.S3.Bucket,
		"TABCONV_ARCHIVE_S3_REGION":   &cfg.Archive.S3.Region,
		"TABCONV_ARCHIVE_S3_PREFIX":   &cfg.Archive.S3.Prefix,
		"TABCONV_ARCHIVE_S3_ENDPOINT": &cfg.Archive.S3.Endpoint,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("TABCONV_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TABCONV_PORT: %w", err)
		}
		cfg.Server.Port = n
	}
	if v := os.Getenv("TABCONV_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TABCONV_MAX_UPLOAD_BYTES: %w", err)
		}
		cfg.Server.MaxUploadBytes = n
	}
	if v := os.Getenv("TABCONV_METRICS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TABCONV_METRICS_ENABLED: %w", err)
		}
		cfg.Metrics.Enabled = b
	}
	return nil
}
