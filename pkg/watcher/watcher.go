// Package watcher instruments call-to-action buttons that live outside the
// component's own output. It re-scans the host document whenever the tree
// changes and fits every matching element with exactly one auxiliary click
// listener, keyed by element identity.
package watcher

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/goliatone/go-dynview/pkg/dom"
)

// DefaultPhrases are the lower-case call-to-action fragments matched against
// an element's visible text.
var DefaultPhrases = []string{
	"add to cart",
	"add to bag",
	"add to basket",
	"buy now",
	"add to cart now",
	"get yours",
	"drop into cart",
}

// ClickHook runs after the element's own listeners for every observed click.
type ClickHook func(element *html.Node, text string)

// Option configures a Watcher.
type Option func(*Watcher)

// WithPhrases replaces the phrase list. Matching is case-insensitive.
func WithPhrases(phrases ...string) Option {
	return func(w *Watcher) {
		w.phrases = normalisePhrases(phrases)
	}
}

// WithClickHook registers the side effect run for every observed click.
func WithClickHook(hook ClickHook) Option {
	return func(w *Watcher) {
		w.hook = hook
	}
}

// WithExclude skips every element for which exclude reports true, such as
// the owner's own rendered output.
func WithExclude(exclude func(*html.Node) bool) Option {
	return func(w *Watcher) {
		w.exclude = exclude
	}
}

// WithLogger overrides the logger used for click and scan diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Watcher tracks instrumented elements for one owner. The zero value is not
// usable; construct with New.
type Watcher struct {
	mu      sync.Mutex
	doc     *dom.Document
	phrases []string
	hook    ClickHook
	exclude func(*html.Node) bool
	logger  *slog.Logger
	tracked map[*html.Node]dom.ListenerID
	cancel  func()
	started bool
	closed  bool
}

// New constructs a Watcher. It does nothing until Start.
func New(options ...Option) *Watcher {
	w := &Watcher{
		phrases: normalisePhrases(DefaultPhrases),
		logger:  slog.Default(),
		tracked: make(map[*html.Node]dom.ListenerID),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}
	return w
}

// Start scans doc once and then on every tree mutation until Close.
func (w *Watcher) Start(doc *dom.Document) error {
	if doc == nil {
		return errors.New("watcher: document is required")
	}
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return errors.New("watcher: closed")
	}
	if w.started {
		w.mu.Unlock()
		return errors.New("watcher: already started")
	}
	w.started = true
	w.doc = doc
	w.mu.Unlock()

	cancel := doc.Observe(func([]dom.Mutation) {
		w.Scan()
	})

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		cancel()
		return nil
	}
	w.cancel = cancel
	w.mu.Unlock()

	w.Scan()
	return nil
}

// Scan instruments matching elements that are not tracked yet and returns
// how many were added. Already tracked elements are skipped, so repeated
// scans are idempotent. Elements no longer attached to the document are
// released first.
func (w *Watcher) Scan() int {
	w.mu.Lock()
	doc := w.doc
	if doc == nil || w.closed {
		w.mu.Unlock()
		return 0
	}
	phrases := w.phrases
	exclude := w.exclude
	w.mu.Unlock()

	w.prune(doc)

	candidates := doc.Find(isInteractive)

	added := 0
	for _, el := range candidates {
		if exclude != nil && exclude(el) {
			continue
		}
		text := visibleText(el)
		if !matches(text, phrases) {
			continue
		}

		w.mu.Lock()
		if w.closed {
			w.mu.Unlock()
			return added
		}
		if _, ok := w.tracked[el]; ok {
			w.mu.Unlock()
			continue
		}
		element := el
		id := doc.AddEventListener(element, dom.EventClick, func(*dom.Event) {
			w.observeClick(element)
		})
		w.tracked[element] = id
		w.mu.Unlock()

		added++
		w.logger.Debug("watcher: instrumented element", "tag", el.Data, "text", strings.TrimSpace(text))
	}
	return added
}

// prune forgets tracked elements that left the document and removes their
// listeners.
func (w *Watcher) prune(doc *dom.Document) {
	w.mu.Lock()
	var stale []dom.ListenerID
	for el, id := range w.tracked {
		if !doc.Contains(el) {
			stale = append(stale, id)
			delete(w.tracked, el)
		}
	}
	w.mu.Unlock()

	for _, id := range stale {
		doc.RemoveEventListener(id)
	}
	if len(stale) > 0 {
		w.logger.Debug("watcher: released detached elements", "count", len(stale))
	}
}

func (w *Watcher) observeClick(element *html.Node) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	hook := w.hook
	w.mu.Unlock()

	text := strings.TrimSpace(visibleText(element))
	w.logger.Info("click detected", "tag", element.Data, "text", text)
	if hook != nil {
		hook(element, text)
	}
}

// Tracked reports how many elements currently carry an auxiliary listener.
func (w *Watcher) Tracked() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.tracked)
}

// IsTracked reports whether element carries an auxiliary listener.
func (w *Watcher) IsTracked(element *html.Node) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.tracked[element]
	return ok
}

// Close stops observing, removes every auxiliary listener and forgets the
// tracked elements. It is safe to call more than once.
func (w *Watcher) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	cancel := w.cancel
	w.cancel = nil
	doc := w.doc
	w.doc = nil
	tracked := w.tracked
	w.tracked = make(map[*html.Node]dom.ListenerID)
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if doc != nil {
		for _, id := range tracked {
			doc.RemoveEventListener(id)
		}
	}
}

func isInteractive(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "button":
		return true
	case "input":
		kind, _ := dom.Attr(n, "type")
		kind = strings.ToLower(kind)
		return kind == "button" || kind == "submit"
	}
	role, ok := dom.Attr(n, "role")
	return ok && strings.EqualFold(strings.TrimSpace(role), "button")
}

func visibleText(n *html.Node) string {
	if n.Data == "input" {
		value, _ := dom.Attr(n, "value")
		return value
	}
	return dom.TextContent(n)
}

func matches(text string, phrases []string) bool {
	if text == "" {
		return false
	}
	lowered := strings.ToLower(text)
	for _, phrase := range phrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

func normalisePhrases(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		trimmed := strings.ToLower(strings.TrimSpace(phrase))
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
