// ABOUTME: HTTP preview fetcher with retry and truncation detection
// ABOUTME: Retries transient failures with linear backoff via cenkalti/backoff
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// EventKind classifies fetch lifecycle events
type EventKind int

const (
	EventSuccess EventKind = iota
	EventRetry
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventSuccess:
		return "success"
	case EventRetry:
		return "retry"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event describes one step of a fetch. Attempt is 1-based.
type Event struct {
	RequestID string
	URL       string
	Attempt   int
	Kind      EventKind
	Err       error
}

// Options configures an HTTPFetcher
type Options struct {
	Retries    int           // extra attempts after the first
	RetryDelay time.Duration // base delay, multiplied by the attempt number
	Timeout    time.Duration // per attempt, zero means none
	Headers    map[string]string
	Rewriter   Rewriter
	OnEvent    func(Event)
	Client     *http.Client
}

// DefaultOptions matches the desktop client: two retries, 300ms base delay
func DefaultOptions() Options {
	return Options{
		Retries:    2,
		RetryDelay: 300 * time.Millisecond,
		Timeout:    30 * time.Second,
	}
}

// HTTPFetcher downloads previews over HTTP
type HTTPFetcher struct {
	opts   Options
	client *http.Client
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates a fetcher from opts
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPFetcher{opts: opts, client: client}
}

// Fetch GETs url, retrying transport errors, 5xx/429 responses and truncated bodies
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	target := rawURL
	if f.opts.Rewriter != nil {
		target = f.opts.Rewriter.Rewrite(rawURL)
	}

	requestID := uuid.New().String()
	attempt := 0
	var data []byte

	operation := func() error {
		attempt++
		body, err := f.get(ctx, target)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		data = body
		return nil
	}

	notify := func(err error, wait time.Duration) {
		log.Printf("Fetch %s attempt %d failed, retrying in %v: %v", rawURL, attempt, wait, err)
		f.emit(Event{RequestID: requestID, URL: rawURL, Attempt: attempt, Kind: EventRetry, Err: err})
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{delay: f.opts.RetryDelay}, uint64(f.opts.Retries)),
		ctx,
	)

	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		log.Printf("Error fetching %s after %d attempt(s): %v", rawURL, attempt, err)
		f.emit(Event{RequestID: requestID, URL: rawURL, Attempt: attempt, Kind: EventError, Err: err})
		return nil, err
	}

	f.emit(Event{RequestID: requestID, URL: rawURL, Attempt: attempt, Kind: EventSuccess})
	return data, nil
}

func (f *HTTPFetcher) get(ctx context.Context, target string) ([]byte, error) {
	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	for k, v := range f.opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: target, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: %s: %w", ErrTruncated, target, err)
		}
		return nil, fmt.Errorf("failed to read %s: %w", target, err)
	}

	if resp.ContentLength >= 0 && int64(len(body)) != resp.ContentLength {
		return nil, fmt.Errorf("%w: %s: got %d of %d bytes", ErrTruncated, target, len(body), resp.ContentLength)
	}

	return body, nil
}

func (f *HTTPFetcher) emit(ev Event) {
	if f.opts.OnEvent != nil {
		f.opts.OnEvent(ev)
	}
}

func validateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return ErrInvalidURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	return nil
}

func retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return !errors.Is(err, ErrInvalidURL) && !errors.Is(err, context.Canceled)
}

// linearBackOff waits delay, 2*delay, 3*delay, ...
type linearBackOff struct {
	delay   time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return b.delay * time.Duration(b.attempt)
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}
