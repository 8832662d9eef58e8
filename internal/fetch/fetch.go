// ABOUTME: Preview fetchers that retrieve scrambled audio bytes
// ABOUTME: Defines the Fetcher strategy interface plus file and scheme dispatch implementations
package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrInvalidURL is returned for empty or unsupported URLs
	ErrInvalidURL = errors.New("invalid URL")

	// ErrTruncated means fewer bytes arrived than the server announced
	ErrTruncated = errors.New("truncated response")
)

// StatusError reports a non-2xx HTTP response
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s failed: HTTP %d", e.URL, e.Code)
}

// Temporary reports whether retrying the request may succeed. Only 5xx and
// 429 qualify; other 4xx responses fail on the first attempt.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == 429
}

// Fetcher retrieves the raw bytes behind a URL. Platform specific transports
// are separate implementations; callers only see this interface.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FileFetcher reads local paths and file:// URLs
type FileFetcher struct{}

// Fetch reads the whole file
func (FileFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	path := strings.TrimPrefix(url, "file://")
	if strings.TrimSpace(path) == "" {
		return nil, ErrInvalidURL
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Auto dispatches http(s) URLs to HTTP and everything else to File
type Auto struct {
	HTTP Fetcher
	File Fetcher
}

// Fetch picks a fetcher by URL scheme
func (a Auto) Fetch(ctx context.Context, url string) ([]byte, error) {
	if IsRemote(url) {
		if a.HTTP == nil {
			return nil, fmt.Errorf("%w: no HTTP fetcher for %s", ErrInvalidURL, url)
		}
		return a.HTTP.Fetch(ctx, url)
	}

	file := a.File
	if file == nil {
		file = FileFetcher{}
	}
	return file.Fetch(ctx, url)
}

// IsRemote reports whether url uses http or https
func IsRemote(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}
