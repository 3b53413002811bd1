package component_test

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/goliatone/go-dynview/pkg/action"
	"github.com/goliatone/go-dynview/pkg/component"
	"github.com/goliatone/go-dynview/pkg/config"
	"github.com/goliatone/go-dynview/pkg/dom"
	"github.com/goliatone/go-dynview/pkg/model"
	"github.com/goliatone/go-dynview/pkg/navigation"
	"github.com/goliatone/go-dynview/pkg/render"
	"github.com/goliatone/go-dynview/pkg/testsupport"
	"github.com/goliatone/go-dynview/pkg/watcher"
)

const (
	configPayload = `{
		"componentName": "user-list",
		"elements": [
			{"type": "text", "content": "User: ${name}"},
			{"type": "button", "label": "View Profile", "action": {"type": "custom", "payload": {"userId": "${id}"}}},
			{"type": "link", "label": "Visit Website", "href": "${website}"},
			{"type": "video"}
		]
	}`
	dataPayload = `[{"id": 1, "name": "John", "website": "https://example.com/john"}]`

	hostPage = `<html><body><div id="shop"><button>Add to Cart</button><div role="button">buy now</div><div id="app"></div></div></body></html>`
)

func testConfig(srv *testsupport.PayloadServer) config.Config {
	cfg := config.Default()
	cfg.BaseURL = srv.URL
	cfg.RetryDelay = config.Duration(5 * time.Millisecond)
	return cfg
}

func newServer(t *testing.T) *testsupport.PayloadServer {
	t.Helper()
	return testsupport.NewPayloadServer(t).
		JSON("/config", configPayload).
		JSON("/data", dataPayload)
}

func hostDocument(t *testing.T) (*dom.Document, *html.Node) {
	t.Helper()
	doc, err := dom.ParseString(hostPage)
	if err != nil {
		t.Fatalf("parse host page: %v", err)
	}
	host := doc.ElementByID("app")
	if host == nil {
		t.Fatalf("host element missing")
	}
	return doc, host
}

func byDynviewID(doc *dom.Document, id string) *html.Node {
	found := doc.Find(func(n *html.Node) bool {
		value, ok := dom.Attr(n, "data-dynview-id")
		return ok && value == id
	})
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

func TestActivate_RendersRecords(t *testing.T) {
	srv := newServer(t)
	c := component.New(component.WithConfig(testConfig(srv)), component.WithLogger(testsupport.QuietLogger()))
	defer c.Close()

	if !c.State().IsLoading() {
		t.Fatalf("new component should be loading, got %s", c.State())
	}

	state := c.Activate(testsupport.Context())
	if !state.IsReady() {
		t.Fatalf("expected ready, got %s", state)
	}

	tree := c.Render()
	items := tree.Find(render.NodeItem)
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	if text := items[0].Children[0].Text; text != "User: John" {
		t.Fatalf("unexpected text %q", text)
	}
	if got := items[0].Children[2].Href; got != "https://example.com/john" {
		t.Fatalf("unexpected href %q", got)
	}
	if got := items[0].Children[3].Text; got != "Unsupported element type: video" {
		t.Fatalf("unexpected diagnostic %q", got)
	}
	if c.Schema().Name() != "user-list" {
		t.Fatalf("unexpected component name %q", c.Schema().Name())
	}
}

func TestActivate_ConfigurationExhaustionSkipsData(t *testing.T) {
	srv := testsupport.NewPayloadServer(t).
		Script("/config", testsupport.Reply{Status: http.StatusServiceUnavailable}).
		JSON("/data", dataPayload)

	c := component.New(component.WithConfig(testConfig(srv)), component.WithLogger(testsupport.QuietLogger()))
	defer c.Close()

	state := c.Activate(testsupport.Context())
	if !state.IsError() {
		t.Fatalf("expected error state, got %s", state)
	}
	want := "Failed to load configuration: HTTP error! status: 503 (after 4 attempts)"
	if state.Message != want {
		t.Fatalf("unexpected message %q, want %q", state.Message, want)
	}
	if hits := len(srv.Hits("/config")); hits != 4 {
		t.Fatalf("expected 4 configuration requests, got %d", hits)
	}
	if hits := len(srv.Hits("/data")); hits != 0 {
		t.Fatalf("data endpoint must not be requested, got %d hits", hits)
	}

	errNode := c.Render().ByID("error")
	if errNode == nil || errNode.Text != want {
		t.Fatalf("expected error node with message, got %+v", errNode)
	}
}

func TestActivate_DataFailureKeepsSchema(t *testing.T) {
	srv := testsupport.NewPayloadServer(t).
		JSON("/config", configPayload).
		Script("/data", testsupport.Reply{Status: http.StatusInternalServerError})

	c := component.New(component.WithConfig(testConfig(srv)), component.WithLogger(testsupport.QuietLogger()))
	defer c.Close()

	state := c.Activate(testsupport.Context())
	if state.Message != "Failed to load data: HTTP error! status: 500" {
		t.Fatalf("unexpected state %s", state)
	}
	if len(c.Schema().Elements) != 4 {
		t.Fatalf("schema should survive a data failure")
	}
	if c.Records() != nil {
		t.Fatalf("records should be cleared")
	}
}

func TestActivate_MalformedPayload(t *testing.T) {
	srv := testsupport.NewPayloadServer(t).
		JSON("/config", `{"elements": "nope"}`).
		JSON("/data", dataPayload)

	c := component.New(component.WithConfig(testConfig(srv)), component.WithLogger(testsupport.QuietLogger()))
	defer c.Close()

	state := c.Activate(testsupport.Context())
	if !strings.HasPrefix(state.Message, "Failed to load configuration: malformed payload:") {
		t.Fatalf("unexpected state %s", state)
	}
}

func TestActivate_FreshSequence(t *testing.T) {
	srv := testsupport.NewPayloadServer(t).
		JSON("/config", configPayload).
		Script("/data",
			testsupport.Reply{Status: http.StatusInternalServerError},
			testsupport.Reply{Status: http.StatusOK, Body: dataPayload},
		)

	c := component.New(component.WithConfig(testConfig(srv)), component.WithLogger(testsupport.QuietLogger()))
	defer c.Close()

	if state := c.Activate(testsupport.Context()); !state.IsError() {
		t.Fatalf("first activation should fail, got %s", state)
	}
	if state := c.Activate(testsupport.Context()); !state.IsReady() {
		t.Fatalf("second activation should recover, got %s", state)
	}
	if len(c.Records()) != 1 {
		t.Fatalf("expected records after recovery")
	}
}

func TestMount_CustomActionBubblesOnce(t *testing.T) {
	srv := newServer(t)
	doc, host := hostDocument(t)

	var (
		mu        sync.Mutex
		ancestor  []action.Event
		listeners []action.Event
	)
	doc.AddEventListener(doc.ElementByID("shop"), action.EventName, func(ev *dom.Event) {
		mu.Lock()
		defer mu.Unlock()
		ancestor = append(ancestor, ev.Detail.(action.Event))
	})

	c := component.New(
		component.WithConfig(testConfig(srv)),
		component.WithDocument(doc, host),
		component.WithActionListener(func(ev action.Event) {
			mu.Lock()
			defer mu.Unlock()
			listeners = append(listeners, ev)
		}),
		component.WithLogger(testsupport.QuietLogger()),
	)
	defer c.Close()

	if state := c.Activate(testsupport.Context()); !state.IsReady() {
		t.Fatalf("expected ready, got %s", state)
	}
	if !strings.Contains(dom.TextContent(host), "User: John") {
		t.Fatalf("host should contain rendered text, got %q", dom.TextContent(host))
	}

	button := byDynviewID(doc, "item-0-el-1")
	if button == nil || !dom.IsElement(button, "button") {
		t.Fatalf("rendered button missing")
	}
	doc.Click(button)

	mu.Lock()
	defer mu.Unlock()
	if len(ancestor) != 1 {
		t.Fatalf("expected one event on the ancestor, got %d", len(ancestor))
	}
	event := ancestor[0]
	if event.Name != action.EventName || event.ComponentName != "user-list" {
		t.Fatalf("unexpected event %+v", event)
	}
	if got := event.Action.Payload["userId"]; got != "1" {
		t.Fatalf("expected userId \"1\", got %#v", got)
	}
	if len(listeners) != 1 || listeners[0].ID != event.ID {
		t.Fatalf("document listener should see the same event once, got %d", len(listeners))
	}
}

func TestMount_LinkNavigates(t *testing.T) {
	srv := newServer(t)
	doc, host := hostDocument(t)
	history := navigation.NewHistory()

	c := component.New(
		component.WithConfig(testConfig(srv)),
		component.WithDocument(doc, host),
		component.WithNavigator(history),
		component.WithLogger(testsupport.QuietLogger()),
	)
	defer c.Close()
	c.Activate(testsupport.Context())

	link := byDynviewID(doc, "item-0-el-2")
	if link == nil {
		t.Fatalf("rendered link missing")
	}
	doc.Click(link)
	if history.Current() != "https://example.com/john" {
		t.Fatalf("unexpected navigation %v", history.Entries())
	}
}

func TestMount_WithoutDocument(t *testing.T) {
	c := component.New(component.WithLogger(testsupport.QuietLogger()))
	if err := c.Mount(); err == nil {
		t.Fatalf("expected error without host document")
	}
}

func TestWatcher_TracksOncePerElement(t *testing.T) {
	srv := newServer(t)
	doc, host := hostDocument(t)

	var clicks int
	c := component.New(
		component.WithConfig(testConfig(srv)),
		component.WithDocument(doc, host),
		component.WithWatcherOptions(watcher.WithClickHook(func(*html.Node, string) { clicks++ })),
		component.WithLogger(testsupport.QuietLogger()),
	)
	c.Activate(testsupport.Context())

	body := doc.Body()
	for i := 0; i < 10; i++ {
		if err := doc.AppendChild(body, dom.Element("p")); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	w := c.Watcher()
	if w == nil || w.Tracked() != 2 {
		t.Fatalf("expected 2 tracked elements")
	}

	cart := doc.ElementsByTag("button")[0]
	doc.Click(cart)
	if clicks != 1 {
		t.Fatalf("expected one observed click, got %d", clicks)
	}

	c.Activate(testsupport.Context())
	if c.Watcher() != w || w.Tracked() != 2 {
		t.Fatalf("watcher must start once per component")
	}

	c.Close()
	late := dom.Element("button")
	late.AppendChild(dom.Text("Add to Cart"))
	if err := doc.AppendChild(body, late); err != nil {
		t.Fatalf("append: %v", err)
	}
	if w.IsTracked(late) {
		t.Fatalf("closed watcher must not instrument new elements")
	}
	doc.Click(cart)
	doc.Click(late)
	if clicks != 1 {
		t.Fatalf("no handler may run after close, got %d clicks", clicks)
	}
	if doc.TotalListeners() != 0 {
		t.Fatalf("expected every listener removed, %d remain", doc.TotalListeners())
	}
}

func TestClose_RejectsActivate(t *testing.T) {
	c := component.New(component.WithLogger(testsupport.QuietLogger()))
	c.Close()
	c.Close()
	if state := c.Activate(context.Background()); state != model.Failed("component: closed") {
		t.Fatalf("unexpected state %s", state)
	}
}

func TestActivate_MissingSources(t *testing.T) {
	c := component.New(component.WithLogger(testsupport.QuietLogger()))
	defer c.Close()
	state := c.Activate(testsupport.Context())
	if state.Message != "Failed to load configuration: component: configuration source is required" {
		t.Fatalf("unexpected state %s", state)
	}
}

func TestSinkReceivesEvents(t *testing.T) {
	srv := newServer(t)
	var got []action.Event
	c := component.New(
		component.WithConfig(testConfig(srv)),
		component.WithSink(action.SinkFunc(func(_ context.Context, ev action.Event) { got = append(got, ev) })),
		component.WithLogger(testsupport.QuietLogger()),
	)
	defer c.Close()
	c.Activate(testsupport.Context())

	buttons := c.Render().Find(render.NodeButton)
	if len(buttons) != 1 {
		t.Fatalf("expected one button, got %d", len(buttons))
	}
	buttons[0].Activate(testsupport.Context())
	if len(got) != 1 || got[0].Record["name"] != "John" {
		t.Fatalf("unexpected events %+v", got)
	}
}

func TestWatcher_IgnoresOwnRenderedButtons(t *testing.T) {
	srv := testsupport.NewPayloadServer(t).
		JSON("/config", `{"elements":[{"type":"button","label":"Add to Cart","action":{"type":"custom"}}]}`).
		JSON("/data", `[{"id":1},{"id":2}]`)
	doc, err := dom.ParseString(`<html><body><div id="app"></div></body></html>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	c := component.New(
		component.WithConfig(testConfig(srv)),
		component.WithDocument(doc, doc.ElementByID("app")),
		component.WithLogger(testsupport.QuietLogger()),
	)
	defer c.Close()

	for i := 0; i < 3; i++ {
		if state := c.Activate(testsupport.Context()); !state.IsReady() {
			t.Fatalf("activation %d: expected ready, got %s", i+1, state)
		}
		if got := c.Watcher().Tracked(); got != 0 {
			t.Fatalf("activation %d: own buttons must not be tracked, got %d", i+1, got)
		}
		if got := doc.TotalListeners(); got != 2 {
			t.Fatalf("activation %d: expected only the 2 mounted listeners, got %d", i+1, got)
		}
	}
}

func TestActivate_NullConfigurationFields(t *testing.T) {
	srv := testsupport.NewPayloadServer(t).
		JSON("/config", `{"componentName":null,"elements":null}`).
		JSON("/data", dataPayload)

	c := component.New(component.WithConfig(testConfig(srv)), component.WithLogger(testsupport.QuietLogger()))
	defer c.Close()

	if state := c.Activate(testsupport.Context()); !state.IsReady() {
		t.Fatalf("expected ready, got %s", state)
	}
	if c.Schema().Name() != model.DefaultComponentName {
		t.Fatalf("expected default component name, got %q", c.Schema().Name())
	}
}
