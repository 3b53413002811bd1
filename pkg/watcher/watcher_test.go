package watcher_test

import (
	"io"
	"log/slog"
	"testing"

	"golang.org/x/net/html"

	"github.com/goliatone/go-dynview/pkg/dom"
	"github.com/goliatone/go-dynview/pkg/watcher"
)

const shop = `<!DOCTYPE html><html><body>
<main id="main">
  <button id="a">Add to Cart</button>
  <button id="b"><span>ADD TO CART</span></button>
  <button id="c">Details</button>
  <input id="d" type="submit" value="Buy now">
  <div id="e" role="button">Get yours today</div>
  <div id="f">add to cart (not interactive)</div>
</main>
</body></html>`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustParse(t *testing.T, markup string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestWatcher_InstrumentsMatchingInteractiveElements(t *testing.T) {
	doc := mustParse(t, shop)
	w := watcher.New(watcher.WithLogger(quietLogger()))
	if err := w.Start(doc); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Close()

	for _, id := range []string{"a", "b", "d", "e"} {
		if !w.IsTracked(doc.ElementByID(id)) {
			t.Fatalf("expected #%s to be tracked", id)
		}
	}
	for _, id := range []string{"c", "f"} {
		if w.IsTracked(doc.ElementByID(id)) {
			t.Fatalf("did not expect #%s to be tracked", id)
		}
	}
	if w.Tracked() != 4 {
		t.Fatalf("expected 4 tracked elements, got %d", w.Tracked())
	}
}

func TestWatcher_RepeatedMutationsDoNotDuplicateObservers(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="root">
<button>Add to Cart</button><button>Add to Cart</button>
</div></body></html>`)

	w := watcher.New(watcher.WithLogger(quietLogger()))
	if err := w.Start(doc); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Close()

	root := doc.ElementByID("root")
	for i := 0; i < 10; i++ {
		if err := doc.AppendChild(root, dom.Element("span")); err != nil {
			t.Fatalf("mutate: %v", err)
		}
	}

	if got := w.Tracked(); got != 2 {
		t.Fatalf("expected 2 tracked buttons, got %d", got)
	}
	if got := doc.TotalListeners(); got != 2 {
		t.Fatalf("expected exactly 2 auxiliary listeners, got %d", got)
	}
	if added := w.Scan(); added != 0 {
		t.Fatalf("explicit rescan attached %d listeners", added)
	}
}

func TestWatcher_PicksUpElementsAddedLater(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="root"></div></body></html>`)
	var clicked []string
	w := watcher.New(
		watcher.WithLogger(quietLogger()),
		watcher.WithClickHook(func(_ *html.Node, text string) { clicked = append(clicked, text) }),
	)
	if err := w.Start(doc); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Close()

	button := dom.Element("button")
	button.AppendChild(dom.Text("Drop into cart"))
	if err := doc.AppendChild(doc.ElementByID("root"), button); err != nil {
		t.Fatalf("append: %v", err)
	}
	if !w.IsTracked(button) {
		t.Fatalf("button added after start was not instrumented")
	}

	doc.Click(button)
	if len(clicked) != 1 || clicked[0] != "Drop into cart" {
		t.Fatalf("unexpected click hook calls: %v", clicked)
	}
}

func TestWatcher_RunsAfterExistingListenersAndKeepsPropagation(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="root"><button id="b">Buy now</button></div></body></html>`)
	button := doc.ElementByID("b")

	var order []string
	doc.AddEventListener(button, dom.EventClick, func(*dom.Event) { order = append(order, "original") })
	doc.AddEventListener(doc.ElementByID("root"), dom.EventClick, func(*dom.Event) { order = append(order, "ancestor") })

	w := watcher.New(
		watcher.WithLogger(quietLogger()),
		watcher.WithClickHook(func(*html.Node, string) { order = append(order, "auxiliary") }),
	)
	if err := w.Start(doc); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Close()

	doc.Click(button)
	want := []string{"original", "auxiliary", "ancestor"}
	if len(order) != len(want) {
		t.Fatalf("unexpected order: %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected order: %v", order)
		}
	}
}

func TestWatcher_CloseReleasesEverything(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="root"><button id="b">Add to basket</button></div></body></html>`)
	calls := 0
	w := watcher.New(
		watcher.WithLogger(quietLogger()),
		watcher.WithClickHook(func(*html.Node, string) { calls++ }),
	)
	if err := w.Start(doc); err != nil {
		t.Fatalf("start: %v", err)
	}

	w.Close()
	w.Close()

	if w.Tracked() != 0 || doc.TotalListeners() != 0 || doc.ObserverCount() != 0 {
		t.Fatalf("resources left after close: tracked=%d listeners=%d observers=%d",
			w.Tracked(), doc.TotalListeners(), doc.ObserverCount())
	}

	late := dom.Element("button")
	late.AppendChild(dom.Text("Add to cart"))
	for i := 0; i < 3; i++ {
		_ = doc.AppendChild(doc.ElementByID("root"), late)
	}
	doc.Click(doc.ElementByID("b"))
	doc.Click(late)

	if calls != 0 {
		t.Fatalf("handler invoked after close: %d", calls)
	}
	if w.IsTracked(late) || doc.TotalListeners() != 0 {
		t.Fatalf("observer attached after close")
	}
	if err := w.Start(doc); err == nil {
		t.Fatalf("expected restarting a closed watcher to fail")
	}
}

func TestWatcher_CustomPhrases(t *testing.T) {
	doc := mustParse(t, `<html><body><button id="x">Reserve Seat</button><button id="y">Add to cart</button></body></html>`)
	w := watcher.New(watcher.WithLogger(quietLogger()), watcher.WithPhrases("  RESERVE  ", ""))
	if err := w.Start(doc); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Close()

	if !w.IsTracked(doc.ElementByID("x")) || w.IsTracked(doc.ElementByID("y")) {
		t.Fatalf("custom phrases not honoured")
	}
	if err := w.Start(doc); err == nil {
		t.Fatalf("expected double start to fail")
	}
}

func TestWatcher_StartRequiresDocument(t *testing.T) {
	if err := watcher.New().Start(nil); err == nil {
		t.Fatalf("expected error for nil document")
	}
}

func TestWatcher_ExcludeSkipsOwnedSubtree(t *testing.T) {
	doc := mustParse(t, `<html><body>
<button id="outside">Add to Cart</button>
<div id="owned"><button id="inside">Add to Cart</button></div>
</body></html>`)
	owned := doc.ElementByID("owned")

	w := watcher.New(
		watcher.WithLogger(quietLogger()),
		watcher.WithExclude(func(n *html.Node) bool {
			for cur := n; cur != nil; cur = cur.Parent {
				if cur == owned {
					return true
				}
			}
			return false
		}),
	)
	if err := w.Start(doc); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Close()

	if !w.IsTracked(doc.ElementByID("outside")) || w.IsTracked(doc.ElementByID("inside")) {
		t.Fatalf("expected only the outside button to be tracked")
	}
	if w.Tracked() != 1 {
		t.Fatalf("expected 1 tracked element, got %d", w.Tracked())
	}
}

func TestWatcher_ReleasesDetachedElements(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="root"><button id="b">Buy now</button></div></body></html>`)
	w := watcher.New(watcher.WithLogger(quietLogger()))
	if err := w.Start(doc); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Close()

	root := doc.ElementByID("root")
	button := doc.ElementByID("b")
	if err := doc.RemoveChild(root, button); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if w.IsTracked(button) || w.Tracked() != 0 {
		t.Fatalf("detached element should be released, tracked=%d", w.Tracked())
	}
	if got := doc.TotalListeners(); got != 0 {
		t.Fatalf("expected listener removed with the element, got %d", got)
	}

	if err := doc.AppendChild(root, button); err != nil {
		t.Fatalf("append: %v", err)
	}
	if !w.IsTracked(button) || doc.TotalListeners() != 1 {
		t.Fatalf("reattached element should be instrumented once")
	}
}

func TestWatcher_SubscribesBeforeInitialScan(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="root"><button>Details</button></div></body></html>`)
	root := doc.ElementByID("root")
	late := dom.Element("button")
	late.AppendChild(dom.Text("Buy now"))

	var once bool
	w := watcher.New(
		watcher.WithLogger(quietLogger()),
		watcher.WithExclude(func(*html.Node) bool {
			if !once {
				once = true
				if err := doc.AppendChild(root, late); err != nil {
					t.Errorf("append: %v", err)
				}
			}
			return false
		}),
	)
	if err := w.Start(doc); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Close()

	if !w.IsTracked(late) {
		t.Fatalf("element added during the initial scan was missed")
	}
}
