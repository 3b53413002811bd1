// Package loader defines the contract used to fetch configuration and data
// payloads. Implementations live under internal/loader but satisfy Loader.
package loader

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/goliatone/go-dynview/pkg/source"
)

const (
	// DefaultMaxRetries is the number of retries issued after the first
	// attempt when the server keeps answering with the transient status.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the fixed wait between attempts.
	DefaultRetryDelay = 2 * time.Second
	// DefaultTransientStatus is the status treated as "try again later".
	DefaultTransientStatus = http.StatusServiceUnavailable
)

// Loader fetches payloads from files, an fs.FS or HTTP endpoints.
type Loader interface {
	Load(ctx context.Context, src source.Source) (source.Document, error)
}

// LoaderOptions configures how a Loader resolves sources.
type LoaderOptions struct {
	// FileSystem enables loading fs sources. Nil disables them.
	FileSystem fs.FS

	// HTTPClient allows callers to inject custom HTTP behaviour (timeouts,
	// proxies, test transports).
	HTTPClient *http.Client

	// AllowHTTPFallback toggles a default client when HTTPClient is nil.
	AllowHTTPFallback bool

	// RequestTimeout caps each individual request. Zero means no cap.
	RequestTimeout time.Duration

	// MaxRetries bounds the retries issued after the first attempt when the
	// response carries TransientStatus.
	MaxRetries int

	// RetryDelay is the fixed wait before each retry.
	RetryDelay time.Duration

	// TransientStatus is the single HTTP status treated as retryable.
	TransientStatus int

	Logger *slog.Logger
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFileSystem injects an fs.FS implementation for fs sources.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for remote payloads.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables HTTP loading with a default client and assigns an
// optional per-request timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// WithRetry overrides the retry budget and the delay between attempts.
// Negative values are ignored.
func WithRetry(maxRetries int, delay time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		if maxRetries >= 0 {
			opts.MaxRetries = maxRetries
		}
		if delay >= 0 {
			opts.RetryDelay = delay
		}
	}
}

// WithTransientStatus changes which HTTP status triggers a retry.
func WithTransientStatus(status int) LoaderOption {
	return func(opts *LoaderOptions) {
		if status >= 100 && status <= 599 {
			opts.TransientStatus = status
		}
	}
}

// WithLogger sets the logger used for attempt diagnostics.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.Logger = logger
	}
}

// NewLoaderOptions applies a set of LoaderOption values on top of the
// defaults and returns the resulting configuration.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{
		MaxRetries:      DefaultMaxRetries,
		RetryDelay:      DefaultRetryDelay,
		TransientStatus: DefaultTransientStatus,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}
