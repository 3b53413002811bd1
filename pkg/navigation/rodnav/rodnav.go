// Package rodnav performs navigations in a real browser page driven by rod.
package rodnav

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Options configures the browser launched by Launch.
type Options struct {
	Headless   bool
	ProfileDir string
	Timeout    time.Duration
}

// Navigator navigates a rod page to every requested location.
type Navigator struct {
	mu      sync.Mutex
	browser *rod.Browser
	page    *rod.Page
	timeout time.Duration
	owned   bool
	logger  *slog.Logger
}

// New wraps an existing page. The caller keeps ownership of the browser.
func New(page *rod.Page, logger *slog.Logger) (*Navigator, error) {
	if page == nil {
		return nil, errors.New("rodnav: page is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{page: page, logger: logger}, nil
}

// Launch starts a browser, opens a blank page and returns a Navigator that
// owns both.
func Launch(opts Options, logger *slog.Logger) (*Navigator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	path, _ := launcher.LookPath()
	l := launcher.New().Bin(path).Headless(opts.Headless)
	if opts.ProfileDir != "" {
		l = l.UserDataDir(opts.ProfileDir)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("rodnav: launch browser: %w", err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("rodnav: connect: %w", err)
	}
	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("rodnav: open page: %w", err)
	}

	return &Navigator{
		browser: browser,
		page:    page,
		timeout: opts.Timeout,
		owned:   true,
		logger:  logger,
	}, nil
}

// Navigate loads url in the page and waits for the load event.
func (n *Navigator) Navigate(ctx context.Context, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return errors.New("rodnav: url is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.page == nil {
		return errors.New("rodnav: navigator closed")
	}

	page := n.page.Context(ctx)
	if n.timeout > 0 {
		page = page.Timeout(n.timeout)
	}
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("rodnav: navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("rodnav: wait load %s: %w", url, err)
	}
	n.logger.Info("rodnav: navigated", "url", url)
	return nil
}

// Page returns the underlying rod page.
func (n *Navigator) Page() *rod.Page {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.page
}

// Close releases the page and browser when the navigator launched them.
func (n *Navigator) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.page == nil {
		return nil
	}
	page, browser := n.page, n.browser
	n.page, n.browser = nil, nil
	if !n.owned {
		return nil
	}
	_ = page.Close()
	if browser != nil {
		return browser.Close()
	}
	return nil
}
