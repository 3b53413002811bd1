// Package action turns activated element declarations into side effects:
// navigations for navigate actions and structured events for custom ones.
package action

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-dynview/pkg/interpolate"
	"github.com/goliatone/go-dynview/pkg/model"
)

// EventName is the name carried by every custom action event.
const EventName = "dynamic-action"

// Event is the structured payload emitted for custom actions.
type Event struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Action        model.Action `json:"action"`
	Record        model.Record `json:"record"`
	ComponentName string       `json:"componentName"`
	Timestamp     time.Time    `json:"timestamp"`
}

// Navigator performs a full navigation to url.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// NavigatorFunc adapts a function into a Navigator.
type NavigatorFunc func(ctx context.Context, url string) error

func (fn NavigatorFunc) Navigate(ctx context.Context, url string) error {
	return fn(ctx, url)
}

// Sink receives custom action events and propagates them to whoever listens.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// SinkFunc adapts a function into a Sink.
type SinkFunc func(ctx context.Context, event Event)

func (fn SinkFunc) Emit(ctx context.Context, event Event) {
	fn(ctx, event)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithNavigator sets the navigator used for navigate actions.
func WithNavigator(nav Navigator) Option {
	return func(d *Dispatcher) {
		d.navigator = nav
	}
}

// WithSink sets where custom action events are emitted.
func WithSink(sink Sink) Option {
	return func(d *Dispatcher) {
		d.sink = sink
	}
}

// WithComponentName sets the name stamped on emitted events.
func WithComponentName(name string) Option {
	return func(d *Dispatcher) {
		d.componentName = name
	}
}

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// Dispatcher routes an action declaration to its side effect.
type Dispatcher struct {
	navigator     Navigator
	sink          Sink
	componentName string
	logger        *slog.Logger
	now           func() time.Time
}

// New constructs a Dispatcher. Without a navigator or sink the matching
// action types are logged and dropped.
func New(options ...Option) *Dispatcher {
	d := &Dispatcher{
		componentName: model.DefaultComponentName,
		logger:        slog.Default(),
		now:           time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(d)
	}
	return d
}

// ComponentName returns the name stamped on emitted events.
func (d *Dispatcher) ComponentName() string {
	return d.componentName
}

// Dispatch performs the side effect for act against record. Unknown or
// missing action types are ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, act *model.Action, record model.Record) {
	if act == nil || act.Type == "" {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	switch {
	case act.Navigates():
		d.navigate(ctx, act.URL, record)
	case act.Type == model.ActionCustom:
		d.emit(ctx, *act, record)
	default:
		d.logger.Debug("action: ignoring unknown type", "type", act.Type)
	}
}

// Navigate interpolates target against record and hands it to the navigator.
func (d *Dispatcher) Navigate(ctx context.Context, target string, record model.Record) {
	if ctx == nil {
		ctx = context.Background()
	}
	d.navigate(ctx, target, record)
}

func (d *Dispatcher) navigate(ctx context.Context, target string, record model.Record) {
	url := strings.TrimSpace(interpolate.Interpolate(target, record))
	if url == "" {
		return
	}
	if missing := interpolate.Missing(target, record); len(missing) > 0 {
		d.logger.Debug("action: unresolved fields in url", "url", url, "fields", missing)
	}
	if d.navigator == nil {
		d.logger.Warn("action: no navigator configured", "url", url)
		return
	}
	if err := d.navigator.Navigate(ctx, url); err != nil {
		d.logger.Error("action: navigation failed", "url", url, "error", err)
	}
}

func (d *Dispatcher) emit(ctx context.Context, act model.Action, record model.Record) {
	resolved := act.Clone()
	if resolved.Payload != nil {
		if payload, ok := interpolate.Value(resolved.Payload, record).(map[string]any); ok {
			resolved.Payload = payload
		}
	}

	event := Event{
		ID:            uuid.NewString(),
		Name:          EventName,
		Action:        resolved,
		Record:        record.Clone(),
		ComponentName: d.componentName,
		Timestamp:     d.now(),
	}
	if d.sink == nil {
		d.logger.Warn("action: no sink configured", "event", event.ID)
		return
	}
	d.logger.Debug("action: emitting custom event", "event", event.ID, "component", d.componentName)
	d.sink.Emit(ctx, event)
}
