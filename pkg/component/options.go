package component

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/net/html"

	internalloader "github.com/goliatone/go-dynview/internal/loader"
	"github.com/goliatone/go-dynview/pkg/action"
	"github.com/goliatone/go-dynview/pkg/config"
	"github.com/goliatone/go-dynview/pkg/dom"
	pkgloader "github.com/goliatone/go-dynview/pkg/loader"
	"github.com/goliatone/go-dynview/pkg/model"
	"github.com/goliatone/go-dynview/pkg/source"
	"github.com/goliatone/go-dynview/pkg/watcher"
)

// Option customises a Component.
type Option func(*Component)

// WithLoader injects the loader used for both payloads.
func WithLoader(loader pkgloader.Loader) Option {
	return func(c *Component) {
		if loader != nil {
			c.loader = loader
		}
	}
}

// WithConfigSource sets where the configuration schema is fetched from.
func WithConfigSource(src source.Source) Option {
	return func(c *Component) {
		c.configSource = src
	}
}

// WithDataSource sets where the data records are fetched from.
func WithDataSource(src source.Source) Option {
	return func(c *Component) {
		c.dataSource = src
	}
}

// WithConfig resolves both endpoints against cfg.BaseURL and builds an HTTP
// loader with cfg's retry policy. Resolution errors surface on Activate as a
// configuration failure.
func WithConfig(cfg config.Config) Option {
	return func(c *Component) {
		configSrc, err := source.Resolve(cfg.BaseURL, cfg.ConfigEndpoint)
		if err != nil {
			c.initErr = fmt.Errorf("component: config endpoint: %w", err)
			return
		}
		dataSrc, err := source.Resolve(cfg.BaseURL, cfg.DataEndpoint)
		if err != nil {
			c.initErr = fmt.Errorf("component: data endpoint: %w", err)
			return
		}
		c.configSource = configSrc
		c.dataSource = dataSrc
		c.config = &cfg
		if cfg.ComponentName != "" {
			c.decorators = append(c.decorators, model.DefaultName(cfg.ComponentName))
		}
		if len(cfg.WatchPhrases) > 0 {
			c.watcherOptions = append(c.watcherOptions, watcher.WithPhrases(cfg.WatchPhrases...))
		}
	}
}

// WithNavigator sets the navigator used by navigate actions and links.
func WithNavigator(nav action.Navigator) Option {
	return func(c *Component) {
		c.navigator = nav
	}
}

// WithSink adds a sink receiving custom action events, in addition to the
// host element event.
func WithSink(sink action.Sink) Option {
	return func(c *Component) {
		c.sink = sink
	}
}

// WithDocument mounts the component on host inside doc. The external button
// watcher observes doc, custom actions bubble from host, and every state
// change re-renders into host.
func WithDocument(doc *dom.Document, host *html.Node) Option {
	return func(c *Component) {
		c.doc = doc
		c.host = host
	}
}

// WithActionListener registers fn for dynamic-action events reaching the
// document root. The listener is removed on Close.
func WithActionListener(fn func(action.Event)) Option {
	return func(c *Component) {
		c.actionListener = fn
	}
}

// WithWatcherOptions configures the external button watcher.
func WithWatcherOptions(options ...watcher.Option) Option {
	return func(c *Component) {
		c.watcherOptions = append(c.watcherOptions, options...)
	}
}

// WithoutWatcher disables the external button watcher.
func WithoutWatcher() Option {
	return func(c *Component) {
		c.watcherDisabled = true
	}
}

// WithDecorators registers schema decorators run after every configuration
// load.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(c *Component) {
		c.decorators = append(c.decorators, decorators...)
	}
}

// WithValidation toggles the payload shape check run before decoding.
// Enabled by default.
func WithValidation(enabled bool) Option {
	return func(c *Component) {
		c.validate = enabled
	}
}

// WithClock overrides the time source stamped on emitted events.
func WithClock(now func() time.Time) Option {
	return func(c *Component) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger overrides the component logger. Collaborators built by the
// component inherit it.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Component) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func (c *Component) defaultLoader() pkgloader.Loader {
	opts := []pkgloader.LoaderOption{
		pkgloader.WithHTTPFallback(0),
		pkgloader.WithLogger(c.logger),
	}
	if cfg := c.config; cfg != nil {
		opts = append(opts,
			pkgloader.WithHTTPFallback(cfg.RequestTimeout.Std()),
			pkgloader.WithRetry(cfg.MaxRetries, cfg.RetryDelay.Std()),
		)
		if cfg.TransientStatus != 0 {
			opts = append(opts, pkgloader.WithTransientStatus(cfg.TransientStatus))
		}
	}
	return internalloader.New(pkgloader.NewLoaderOptions(opts...))
}
