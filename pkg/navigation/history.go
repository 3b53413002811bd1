// Package navigation provides navigators used when a rendered element asks
// the host to move to another location.
package navigation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
)

// Listener observes navigations recorded by a History.
type Listener func(url string)

// History records navigations in memory. It is the default navigator for
// headless hosts and tests; the most recent entry is the current location.
type History struct {
	mu        sync.Mutex
	entries   []string
	listeners []Listener
	logger    *slog.Logger
}

// HistoryOption configures a History.
type HistoryOption func(*History)

// WithListener registers a callback invoked after every navigation.
func WithListener(listener Listener) HistoryOption {
	return func(h *History) {
		if listener != nil {
			h.listeners = append(h.listeners, listener)
		}
	}
}

// WithLogger sets the logger used to report navigations.
func WithLogger(logger *slog.Logger) HistoryOption {
	return func(h *History) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHistory constructs an empty History.
func NewHistory(options ...HistoryOption) *History {
	h := &History{logger: slog.Default()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h
}

// Navigate appends url to the history.
func (h *History) Navigate(ctx context.Context, url string) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return errors.New("navigation: url is required")
	}

	h.mu.Lock()
	h.entries = append(h.entries, url)
	listeners := append([]Listener(nil), h.listeners...)
	h.mu.Unlock()

	h.logger.Debug("navigation: location changed", "url", url)
	for _, listener := range listeners {
		listener(url)
	}
	return nil
}

// Current returns the latest location, or "" when nothing was navigated.
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return ""
	}
	return h.entries[len(h.entries)-1]
}

// Entries returns every recorded location in order.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}
