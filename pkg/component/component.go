// Package component implements the rendering unit: it loads a configuration
// schema and a record collection, tracks the render state, renders one item
// per record and publishes element activations. When mounted in a host
// document it also runs the external button watcher.
package component

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/goliatone/go-dynview/pkg/action"
	"github.com/goliatone/go-dynview/pkg/config"
	"github.com/goliatone/go-dynview/pkg/dom"
	pkgloader "github.com/goliatone/go-dynview/pkg/loader"
	"github.com/goliatone/go-dynview/pkg/model"
	"github.com/goliatone/go-dynview/pkg/navigation"
	"github.com/goliatone/go-dynview/pkg/render"
	"github.com/goliatone/go-dynview/pkg/source"
	"github.com/goliatone/go-dynview/pkg/validation"
	"github.com/goliatone/go-dynview/pkg/watcher"
)

const (
	configurationFailurePrefix = "Failed to load configuration: "
	dataFailurePrefix          = "Failed to load data: "
)

var errClosed = errors.New("component: closed")

// Component is one rendering unit. It is safe for concurrent use; Activate
// calls are independent sequences and only the latest one publishes.
type Component struct {
	id     string
	logger *slog.Logger
	now    func() time.Time

	loader       pkgloader.Loader
	configSource source.Source
	dataSource   source.Source
	config       *config.Config
	initErr      error
	decorators   []model.Decorator
	validate     bool

	navigator action.Navigator
	sink      action.Sink

	doc            *dom.Document
	host           *html.Node
	actionListener func(action.Event)
	watcherOptions []watcher.Option

	watcherDisabled bool

	mu               sync.Mutex
	state            model.RenderState
	schema           model.Schema
	records          []model.Record
	sequence         uint64
	watcher          *watcher.Watcher
	watcherStarted   bool
	actionListenerID dom.ListenerID
	closed           bool

	mountMu sync.Mutex
	mounted []dom.ListenerID
}

// New constructs a Component in the Loading state. Nothing is fetched until
// Activate.
func New(options ...Option) *Component {
	c := &Component{
		id:       uuid.NewString(),
		logger:   slog.Default(),
		now:      time.Now,
		validate: true,
		state:    model.Loading(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	c.logger = c.logger.With("component", c.id)
	if c.loader == nil {
		c.loader = c.defaultLoader()
	}
	if c.navigator == nil {
		c.navigator = navigation.NewHistory(navigation.WithLogger(c.logger))
	}
	if c.doc != nil && c.host == nil {
		c.host = c.doc.Body()
	}
	if c.doc != nil && c.actionListener != nil {
		listener := c.actionListener
		c.actionListenerID = c.doc.AddEventListener(c.doc.Root(), action.EventName, func(ev *dom.Event) {
			if event, ok := ev.Detail.(action.Event); ok {
				listener(event)
			}
		})
	}
	return c
}

// ID returns the instance identifier used in logs.
func (c *Component) ID() string {
	return c.id
}

// Navigator returns the navigator actions and links are routed through.
func (c *Component) Navigator() action.Navigator {
	return c.navigator
}

// State returns the current render state.
func (c *Component) State() model.RenderState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Schema returns a copy of the last loaded schema.
func (c *Component) Schema() model.Schema {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.schema.Clone()
}

// Records returns a copy of the last loaded records.
func (c *Component) Records() []model.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneRecords(c.records)
}

// Activate runs a fresh load sequence: configuration first, then data. It
// starts the external button watcher on first use and returns the state the
// sequence settled on. Failures never escape as errors; they become an Error
// state carrying the message.
func (c *Component) Activate(ctx context.Context) model.RenderState {
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return model.Failed(errClosed.Error())
	}
	c.sequence++
	seq := c.sequence
	c.state = model.Loading()
	c.schema = model.Schema{}
	c.records = nil
	startWatcher := !c.watcherStarted && !c.watcherDisabled && c.doc != nil
	if startWatcher {
		c.watcherStarted = true
		c.watcher = watcher.New(append([]watcher.Option{
			watcher.WithLogger(c.logger),
			watcher.WithExclude(c.ownsNode),
		}, c.watcherOptions...)...)
	}
	w := c.watcher
	c.mu.Unlock()

	c.remount()

	if startWatcher {
		if err := w.Start(c.doc); err != nil {
			c.logger.Warn("component: watcher not started", "error", err)
		}
	}

	schema, err := c.loadConfiguration(ctx)
	if err != nil {
		c.logLoadError(pkgloader.Tag(err, source.ResourceConfiguration))
		return c.settle(seq, model.Failed(configurationFailurePrefix+err.Error()), nil, nil)
	}
	if !c.publishSchema(seq, schema) {
		return c.State()
	}

	records, err := c.loadData(ctx)
	if err != nil {
		c.logLoadError(pkgloader.Tag(err, source.ResourceData))
		return c.settle(seq, model.Failed(dataFailurePrefix+err.Error()), &schema, nil)
	}
	return c.settle(seq, model.Ready(), &schema, records)
}

func (c *Component) publishSchema(seq uint64, schema model.Schema) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.sequence || c.closed {
		return false
	}
	c.schema = schema
	return true
}

// settle publishes the outcome when seq is still the latest sequence.
func (c *Component) settle(seq uint64, state model.RenderState, schema *model.Schema, records []model.Record) model.RenderState {
	c.mu.Lock()
	if seq != c.sequence || c.closed {
		current := c.state
		c.mu.Unlock()
		c.logger.Debug("component: discarding superseded load", "sequence", seq)
		return current
	}
	c.state = state
	if schema != nil {
		c.schema = *schema
	}
	c.records = records
	c.mu.Unlock()

	if state.IsError() {
		c.logger.Error("component: load failed", "message", state.Message)
	} else {
		c.logger.Debug("component: ready", "records", len(records))
	}
	c.remount()
	return state
}

func (c *Component) logLoadError(err error) {
	var loadErr *pkgloader.Error
	if !errors.As(err, &loadErr) {
		c.logger.Debug("component: load error", "error", err)
		return
	}
	c.logger.Debug("component: load error",
		"resource", loadErr.Resource,
		"kind", loadErr.Kind,
		"location", loadErr.Location,
		"status", loadErr.Status,
		"attempts", loadErr.Attempts,
	)
}

func (c *Component) loadConfiguration(ctx context.Context) (model.Schema, error) {
	if c.initErr != nil {
		return model.Schema{}, c.initErr
	}
	if c.configSource == nil {
		return model.Schema{}, errors.New("component: configuration source is required")
	}
	doc, err := c.loader.Load(ctx, c.configSource)
	if err != nil {
		return model.Schema{}, err
	}
	raw := doc.Raw()
	if c.validate {
		if err := validation.ValidateSchema(raw).Err(); err != nil {
			return model.Schema{}, pkgloader.Malformed(doc.Location(), err)
		}
	}
	schema, err := model.ParseSchema(raw)
	if err != nil {
		return model.Schema{}, pkgloader.Malformed(doc.Location(), err)
	}
	for _, decorator := range c.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(&schema); err != nil {
			return model.Schema{}, err
		}
	}
	c.logger.Debug("component: configuration loaded",
		"location", doc.Location(),
		"attempts", doc.Attempts(),
		"elements", len(schema.Elements),
	)
	return schema, nil
}

func (c *Component) loadData(ctx context.Context) ([]model.Record, error) {
	if c.initErr != nil {
		return nil, c.initErr
	}
	if c.dataSource == nil {
		return nil, errors.New("component: data source is required")
	}
	doc, err := c.loader.Load(ctx, c.dataSource)
	if err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if c.validate {
		if err := validation.ValidateRecords(raw).Err(); err != nil {
			return nil, pkgloader.Malformed(doc.Location(), err)
		}
	}
	records, err := model.ParseRecords(raw)
	if err != nil {
		return nil, pkgloader.Malformed(doc.Location(), err)
	}
	c.logger.Debug("component: data loaded",
		"location", doc.Location(),
		"attempts", doc.Attempts(),
		"records", len(records),
	)
	return records, nil
}

// Render builds the tree for the current state. Activating its buttons and
// links dispatches through the component's navigator and sinks.
func (c *Component) Render() *render.Node {
	c.mu.Lock()
	state := c.state
	schema := c.schema.Clone()
	records := cloneRecords(c.records)
	c.mu.Unlock()

	dispatcher := action.New(
		action.WithComponentName(schema.Name()),
		action.WithNavigator(c.navigator),
		action.WithSink(action.SinkFunc(c.emit)),
		action.WithClock(c.now),
		action.WithLogger(c.logger),
	)
	elements := render.NewElementRenderer(
		render.WithDispatcher(dispatcher),
		render.WithLogger(c.logger),
	)
	return elements.RenderFragment(state, schema, records)
}

func (c *Component) emit(ctx context.Context, event action.Event) {
	if c.doc != nil && c.host != nil {
		c.doc.Dispatch(c.host, &dom.Event{
			Type:    action.EventName,
			Bubbles: true,
			Detail:  event,
		})
	}
	if c.sink != nil {
		c.sink.Emit(ctx, event)
	}
}

// Close stops the watcher, removes the action listener and every listener
// installed by Mount. Later Activate calls fail immediately.
func (c *Component) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.sequence++
	w := c.watcher
	c.watcher = nil
	listenerID := c.actionListenerID
	c.actionListenerID = 0
	c.mu.Unlock()

	if w != nil {
		w.Close()
	}
	if c.doc != nil && listenerID != 0 {
		c.doc.RemoveEventListener(listenerID)
	}
	c.unmount()
}

// Watcher returns the external button watcher once Activate started it.
func (c *Component) Watcher() *watcher.Watcher {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.watcher
}

// ownsNode reports whether n sits inside the host subtree the component
// renders into.
func (c *Component) ownsNode(n *html.Node) bool {
	if c.host == nil {
		return false
	}
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == c.host {
			return true
		}
	}
	return false
}

func cloneRecords(records []model.Record) []model.Record {
	if records == nil {
		return nil
	}
	out := make([]model.Record, len(records))
	for i, record := range records {
		out[i] = record.Clone()
	}
	return out
}
