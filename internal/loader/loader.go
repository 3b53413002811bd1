package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	pkgloader "github.com/goliatone/go-dynview/pkg/loader"
	"github.com/goliatone/go-dynview/pkg/source"
)

// Loader implements pkgloader.Loader by delegating to file, fs.FS, or HTTP
// strategies. HTTP sources are retried while the server answers with the
// transient status.
type Loader struct {
	fs         fs.FS
	http       *http.Client
	allowHTTP  bool
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	transient  int
	logger     *slog.Logger
}

// Ensure the implementation satisfies the public interface.
var _ pkgloader.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options pkgloader.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxRetries := options.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	transient := options.TransientStatus
	if transient == 0 {
		transient = pkgloader.DefaultTransientStatus
	}

	return &Loader{
		fs:         options.FileSystem,
		http:       httpClient,
		allowHTTP:  httpClient != nil,
		timeout:    timeout,
		maxRetries: maxRetries,
		retryDelay: options.RetryDelay,
		transient:  transient,
		logger:     logger,
	}
}

// Load fetches a payload from the provided source and wraps it in a Document.
func (l *Loader) Load(ctx context.Context, src source.Source) (source.Document, error) {
	if src == nil {
		return source.Document{}, errors.New("loader: source is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		data     []byte
		attempts = 1
		err      error
	)

	switch src.Kind() {
	case source.KindFile:
		data, err = loadFile(ctx, src.Location())
	case source.KindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case source.KindURL:
		if !l.allowHTTP {
			return source.Document{}, errors.New("loader: http support disabled")
		}
		data, attempts, err = l.loadHTTP(ctx, src.Location())
	default:
		err = fmt.Errorf("loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		var loadErr *pkgloader.Error
		if errors.As(err, &loadErr) {
			return source.Document{}, err
		}
		return source.Document{}, &pkgloader.Error{
			Kind:     pkgloader.NetworkFailure,
			Location: src.Location(),
			Attempts: attempts,
			Err:      err,
		}
	}

	doc, err := source.NewDocument(src, data)
	if err != nil {
		return source.Document{}, pkgloader.Malformed(src.Location(), err)
	}
	return doc.WithAttempts(attempts), nil
}

// loadHTTP runs the sequential attempt loop: the first request plus up to
// maxRetries retries, each retry preceded by retryDelay, while the response
// carries the transient status.
func (l *Loader) loadHTTP(ctx context.Context, url string) ([]byte, int, error) {
	attempt := 0
	for {
		attempt++
		resp, err := fetchOnce(ctx, l.http, url, l.timeout)
		if err != nil {
			l.logger.Warn("loader: request failed", "url", url, "attempt", attempt, "error", err)
			return nil, attempt, &pkgloader.Error{
				Kind:     pkgloader.NetworkFailure,
				Location: url,
				Attempts: attempt,
				Err:      err,
			}
		}
		if resp.ok() {
			l.logger.Debug("loader: fetched", "url", url, "attempt", attempt, "status", resp.status, "bytes", len(resp.body))
			return resp.body, attempt, nil
		}
		if resp.status != l.transient {
			l.logger.Warn("loader: unexpected status", "url", url, "attempt", attempt, "status", resp.status)
			return nil, attempt, &pkgloader.Error{
				Kind:     pkgloader.HTTPFailure,
				Location: url,
				Status:   resp.status,
				Attempts: attempt,
			}
		}
		if attempt > l.maxRetries {
			l.logger.Warn("loader: retries exhausted", "url", url, "attempts", attempt, "status", resp.status)
			return nil, attempt, &pkgloader.Error{
				Kind:     pkgloader.TransientServerFailure,
				Location: url,
				Status:   resp.status,
				Attempts: attempt,
			}
		}

		l.logger.Info("loader: transient status, retrying", "url", url, "attempt", attempt, "status", resp.status, "delay", l.retryDelay)
		if err := wait(ctx, l.retryDelay); err != nil {
			return nil, attempt, &pkgloader.Error{
				Kind:     pkgloader.NetworkFailure,
				Location: url,
				Status:   resp.status,
				Attempts: attempt,
				Err:      err,
			}
		}
	}
}
