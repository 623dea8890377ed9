// Package httpclient fetches remote repository documents over HTTP with
// bounded response sizes and retries on transient failures.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	// DefaultTimeout is used when a zero timeout is supplied
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResponseSize bounds response bodies read into memory (10 MiB)
	DefaultMaxResponseSize int64 = 10 * 1024 * 1024

	// DefaultMaxTries is the total number of attempts for transient failures
	DefaultMaxTries uint = 3

	// UserAgent identifies the client to repository hosts
	UserAgent = "extrepo/1.0"
)

// ErrResponseTooLarge is returned when a response body exceeds the configured limit
var ErrResponseTooLarge = errors.New("response exceeds maximum allowed size")

// Client fetches remote documents
type Client interface {
	Get(ctx context.Context, url string) ([]byte, error)
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// DefaultClient is the production Client backed by net/http
type DefaultClient struct {
	client          *http.Client
	maxResponseSize int64
	maxTries        uint
	initialInterval time.Duration
}

// Option configures a DefaultClient
type Option func(*DefaultClient)

// WithMaxResponseSize overrides the in-memory response limit
func WithMaxResponseSize(n int64) Option {
	return func(c *DefaultClient) {
		c.maxResponseSize = n
	}
}

// WithMaxTries overrides the number of attempts. Values below 1 mean a single attempt.
func WithMaxTries(n uint) Option {
	return func(c *DefaultClient) {
		if n == 0 {
			n = 1
		}
		c.maxTries = n
	}
}

// WithInitialInterval sets the first backoff delay between attempts
func WithInitialInterval(d time.Duration) Option {
	return func(c *DefaultClient) {
		c.initialInterval = d
	}
}

// WithTransport replaces the round tripper used for requests
func WithTransport(rt http.RoundTripper) Option {
	return func(c *DefaultClient) {
		c.client.Transport = rt
	}
}

// NewDefaultClient creates a new HTTP client. A zero timeout uses DefaultTimeout.
func NewDefaultClient(timeout time.Duration, opts ...Option) *DefaultClient {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	c := &DefaultClient{
		client:          &http.Client{Timeout: timeout},
		maxResponseSize: DefaultMaxResponseSize,
		maxTries:        DefaultMaxTries,
		initialInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the body of a 2xx response to a GET of url
func (c *DefaultClient) Get(ctx context.Context, url string) ([]byte, error) {
	return retry(ctx, c, url, func(resp *http.Response) ([]byte, error) {
		if resp.ContentLength > c.maxResponseSize {
			return nil, backoff.Permanent(fmt.Errorf("%w: %s (%.2f MB)",
				ErrResponseTooLarge, url, float64(c.maxResponseSize)/(1024*1024)))
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		if int64(len(data)) > c.maxResponseSize {
			return nil, backoff.Permanent(fmt.Errorf("%w: %s (%.2f MB)",
				ErrResponseTooLarge, url, float64(c.maxResponseSize)/(1024*1024)))
		}
		return data, nil
	})
}

// Download streams the body of url into w without the in-memory limit and
// returns the number of bytes written. Only the request itself is retried;
// once bytes reach w a failure is returned as is.
func (c *DefaultClient) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	return retry(ctx, c, url, func(resp *http.Response) (int64, error) {
		n, err := io.Copy(w, resp.Body)
		if err != nil {
			return n, backoff.Permanent(fmt.Errorf("failed to read response body: %w", err))
		}
		return n, nil
	})
}

func retry[T any](ctx context.Context, c *DefaultClient, url string, read func(*http.Response) (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval

	attempt := 0
	operation := func() (T, error) {
		var zero T
		attempt++

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return zero, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("User-Agent", UserAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return zero, backoff.Permanent(fmt.Errorf("failed to execute request: %w", err))
			}
			slog.DebugContext(ctx, "Request failed", "url", url, "attempt", attempt, "error", err)
			return zero, fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			httpErr := NewHTTPError(resp.StatusCode, url, http.StatusText(resp.StatusCode))
			if retryable(resp.StatusCode) {
				slog.DebugContext(ctx, "Transient HTTP status", "url", url, "status", resp.StatusCode, "attempt", attempt)
				return zero, httpErr
			}
			return zero, backoff.Permanent(httpErr)
		}

		return read(resp)
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.maxTries),
	)
}
