// ABOUTME: Environment configuration for preview fetching and caching
// ABOUTME: Reads SPLICEDD_* variables with go-envconfig and an optional .env file
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config holds settings shared by the CLI commands
type Config struct {
	Retries    int           `env:"SPLICEDD_RETRIES, default=2"`
	RetryDelay time.Duration `env:"SPLICEDD_RETRY_DELAY, default=300ms"`
	Timeout    time.Duration `env:"SPLICEDD_TIMEOUT, default=30s"`
	CacheDir   string        `env:"SPLICEDD_CACHE_DIR"`
	ProxyBase  string        `env:"SPLICEDD_PROXY_BASE"`
	UserAgent  string        `env:"SPLICEDD_USER_AGENT"`
}

// LoadEnv loads variables from .env in the working directory if it exists
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// NewConfigFromEnv reads configuration from the process environment
func NewConfigFromEnv() (*Config, error) {
	return newConfig(context.Background(), envconfig.OsLookuper())
}

func newConfig(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.CacheDir == "" {
		cfg.CacheDir = filepath.Join(os.TempDir(), "splicedd-previews")
	}

	return &cfg, nil
}

// Validate rejects values the fetcher cannot use
func (c *Config) Validate() error {
	if c.Retries < 0 {
		return fmt.Errorf("retries must be >= 0, got %d", c.Retries)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay must be >= 0, got %v", c.RetryDelay)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %v", c.Timeout)
	}
	return nil
}
