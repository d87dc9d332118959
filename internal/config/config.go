// Package config loads and persists syncdex configuration from a TOML file,
// by default ~/.syncdex/config.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full syncdex configuration.
type Config struct {
	// DataDir is where the state database and the search index live.
	// Empty means ~/.syncdex/data.
	DataDir string `toml:"data_dir"`

	Store   StoreConfig   `toml:"store"`
	Sync    SyncConfig    `toml:"sync"`
	Extract ExtractConfig `toml:"extract"`
}

// StoreConfig selects and configures the remote document store.
type StoreConfig struct {
	// Type is the remote store type: "gdrive" or "filesystem".
	Type string `toml:"type"`

	// Root is the root directory for the filesystem store.
	Root string `toml:"root"`

	// FolderID limits a Drive sync to one folder.
	FolderID string `toml:"folder_id"`

	// AccessToken is the OAuth access token for Drive. Prefer setting it
	// via the SYNCDEX_ACCESS_TOKEN environment variable.
	AccessToken string `toml:"access_token"`
}

// SyncConfig bounds the sync cycle.
type SyncConfig struct {
	// Workers is the worker pool size.
	Workers int `toml:"workers"`

	// MaxAttempts is the retry budget per document.
	MaxAttempts int `toml:"max_attempts"`

	// RetryBaseMS is the first backoff delay in milliseconds.
	RetryBaseMS int `toml:"retry_base_ms"`

	// RetryMaxMS caps the backoff delay in milliseconds.
	RetryMaxMS int `toml:"retry_max_ms"`
}

// ExtractConfig bounds one content extraction.
type ExtractConfig struct {
	// MaxDocBytes is the content size cap per document.
	MaxDocBytes int64 `toml:"max_doc_bytes"`

	// TimeoutMS is the wall-clock budget per extraction in milliseconds.
	TimeoutMS int `toml:"timeout_ms"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Type: "filesystem",
		},
		Sync: SyncConfig{
			Workers:     4,
			MaxAttempts: 3,
			RetryBaseMS: 500,
			RetryMaxMS:  30000,
		},
		Extract: ExtractConfig{
			MaxDocBytes: 10 * 1024 * 1024,
			TimeoutMS:   30000,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".syncdex", "config.toml"), nil
}

// Load reads the configuration at path. A missing file yields the defaults;
// a present file is merged over them, so partial files work.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if token := os.Getenv("SYNCDEX_ACCESS_TOKEN"); token != "" {
		cfg.Store.AccessToken = token
	}
	return cfg, nil
}

// Save writes the configuration to path with restricted permissions, since
// it may carry an access token.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// ExtractTimeout returns the extraction budget as a duration.
func (c *Config) ExtractTimeout() time.Duration {
	return time.Duration(c.Extract.TimeoutMS) * time.Millisecond
}

// RetryBase returns the first backoff delay as a duration.
func (c *SyncConfig) RetryBase() time.Duration {
	return time.Duration(c.RetryBaseMS) * time.Millisecond
}

// RetryMax returns the backoff cap as a duration.
func (c *SyncConfig) RetryMax() time.Duration {
	return time.Duration(c.RetryMaxMS) * time.Millisecond
}

// ResolveDataDir returns the configured data directory, defaulting to
// ~/.syncdex/data.
func (c *Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".syncdex", "data"), nil
}
