// ABOUTME: Entry point for the splicedd preview tool
// ABOUTME: Sets up logging and configuration, then dispatches CLI commands
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/splicedd/splicedd-go/internal/config"
	"github.com/splicedd/splicedd-go/internal/fetch"
	"github.com/splicedd/splicedd-go/internal/version"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Fatalf("Failed to load .env file: %v", err)
	}

	cfg, err := config.NewConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	app := &cli.App{
		Name:    "splicedd",
		Usage:   "Fetch, descramble and audition marketplace sample previews",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-file", Usage: "Also append logs to this file"},
			&cli.IntFlag{Name: "retries", Value: cfg.Retries, Usage: "Extra attempts for failed downloads"},
			&cli.DurationFlag{Name: "retry-delay", Value: cfg.RetryDelay, Usage: "Base delay between download attempts"},
			&cli.DurationFlag{Name: "timeout", Value: cfg.Timeout, Usage: "Timeout per download attempt"},
			&cli.StringFlag{Name: "proxy", Value: cfg.ProxyBase, Usage: "Route API and CDN requests through this base URL"},
			&cli.StringFlag{Name: "cache-dir", Value: cfg.CacheDir, Usage: "Directory for descrambled previews"},
		},
		Before: func(c *cli.Context) error {
			return setupLogging(c.String("log-file"))
		},
		Commands: []*cli.Command{
			decodeCommand(),
			scrambleCommand(),
			inspectCommand(),
			fetchCommand(),
			playCommand(),
			cacheCommand(),
		},
	}

	if cfg.UserAgent != "" {
		userAgent = cfg.UserAgent
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

var userAgent = version.UserAgent()

// setupLogging sends logs to stderr, and to path as well when given
func setupLogging(path string) error {
	log.SetOutput(os.Stderr)
	if path == "" {
		return nil
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("error opening log file: %w", err)
	}
	// Closed by process exit
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return nil
}

// newFetcher builds the fetcher for the global flags
func newFetcher(c *cli.Context) fetch.Fetcher {
	opts := fetch.Options{
		Retries:    c.Int("retries"),
		RetryDelay: c.Duration("retry-delay"),
		Timeout:    c.Duration("timeout"),
		Headers:    map[string]string{"User-Agent": userAgent},
	}
	if proxy := c.String("proxy"); proxy != "" {
		opts.Rewriter = fetch.ProxyRewriter{Base: proxy}
	}
	return fetch.Auto{HTTP: fetch.NewHTTPFetcher(opts)}
}
