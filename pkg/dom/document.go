// Package dom models the host document a component is mounted into. It wraps
// a golang.org/x/net/html tree with the two host facilities the component
// needs: per-element event listeners with bubbling dispatch, and
// subscription to tree-changed notifications.
package dom

import (
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ListenerID identifies a registered event listener.
type ListenerID uint64

// Listener handles a dispatched event.
type Listener func(*Event)

// Observer receives batches of tree mutations.
type Observer func([]Mutation)

// MutationKind describes a tree change.
type MutationKind string

const (
	ChildAdded   MutationKind = "child-added"
	ChildRemoved MutationKind = "child-removed"
)

// Mutation records one child insertion or removal.
type Mutation struct {
	Kind   MutationKind
	Parent *html.Node
	Node   *html.Node
}

type registration struct {
	id       ListenerID
	node     *html.Node
	typ      string
	fn       Listener
	detached atomic.Bool
}

// Document is a mutable HTML tree with listeners and mutation observers.
// All methods are safe for concurrent use; listeners and observers run
// outside the document lock so they may mutate the document themselves.
type Document struct {
	mu        sync.Mutex
	root      *html.Node
	listeners map[*html.Node][]*registration
	byID      map[ListenerID]*registration
	observers map[uint64]Observer
	nextID    uint64
	nextObs   uint64
}

// New returns an empty document with html, head and body elements.
func New() *Document {
	doc, err := Parse(strings.NewReader("<!DOCTYPE html><html><head></head><body></body></html>"))
	if err != nil {
		panic(err)
	}
	return doc
}

// Parse builds a document from HTML markup.
func Parse(r io.Reader) (*Document, error) {
	if r == nil {
		return nil, errors.New("dom: reader is nil")
	}
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Document{
		root:      root,
		listeners: make(map[*html.Node][]*registration),
		byID:      make(map[ListenerID]*registration),
		observers: make(map[uint64]Observer),
	}, nil
}

// ParseString is Parse for in-memory markup.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Body returns the body element, or nil if the tree has none.
func (d *Document) Body() *html.Node {
	found := d.Find(func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	})
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// ElementByID returns the first element whose id attribute equals id.
func (d *Document) ElementByID(id string) *html.Node {
	found := d.Find(func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		value, ok := Attr(n, "id")
		return ok && value == id
	})
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// ElementsByTag returns every element with the given tag name in document
// order.
func (d *Document) ElementsByTag(tag string) []*html.Node {
	tag = strings.ToLower(tag)
	return d.Find(func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	})
}

// Find walks the tree in document order and returns the nodes match accepts.
func (d *Document) Find(match func(*html.Node) bool) []*html.Node {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return out
}

// Contains reports whether n is attached to this document.
func (d *Document) Contains(n *html.Node) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == d.root {
			return true
		}
	}
	return false
}

// AppendChild attaches child as the last child of parent and notifies
// observers. A child that already has a parent is moved.
func (d *Document) AppendChild(parent, child *html.Node) error {
	if parent == nil || child == nil {
		return errors.New("dom: parent and child are required")
	}
	d.mu.Lock()
	var records []Mutation
	if old := child.Parent; old != nil {
		old.RemoveChild(child)
		records = append(records, Mutation{Kind: ChildRemoved, Parent: old, Node: child})
	}
	parent.AppendChild(child)
	records = append(records, Mutation{Kind: ChildAdded, Parent: parent, Node: child})
	observers := d.observerSnapshot()
	d.mu.Unlock()

	notify(observers, records)
	return nil
}

// RemoveChild detaches child from parent and notifies observers.
func (d *Document) RemoveChild(parent, child *html.Node) error {
	if parent == nil || child == nil {
		return errors.New("dom: parent and child are required")
	}
	d.mu.Lock()
	if child.Parent != parent {
		d.mu.Unlock()
		return errors.New("dom: node is not a child of parent")
	}
	parent.RemoveChild(child)
	observers := d.observerSnapshot()
	d.mu.Unlock()

	notify(observers, []Mutation{{Kind: ChildRemoved, Parent: parent, Node: child}})
	return nil
}

// ReplaceChildren swaps every child of parent for children in one batch.
func (d *Document) ReplaceChildren(parent *html.Node, children ...*html.Node) error {
	if parent == nil {
		return errors.New("dom: parent is required")
	}
	d.mu.Lock()
	var records []Mutation
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		parent.RemoveChild(c)
		records = append(records, Mutation{Kind: ChildRemoved, Parent: parent, Node: c})
		c = next
	}
	for _, child := range children {
		if child == nil {
			continue
		}
		if old := child.Parent; old != nil {
			old.RemoveChild(child)
		}
		parent.AppendChild(child)
		records = append(records, Mutation{Kind: ChildAdded, Parent: parent, Node: child})
	}
	observers := d.observerSnapshot()
	d.mu.Unlock()

	if len(records) > 0 {
		notify(observers, records)
	}
	return nil
}

// Observe subscribes fn to tree mutations. The returned function cancels the
// subscription and is safe to call more than once.
func (d *Document) Observe(fn Observer) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	d.mu.Lock()
	d.nextObs++
	key := d.nextObs
	d.observers[key] = fn
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.observers, key)
		d.mu.Unlock()
	}
}

// ObserverCount reports the number of active mutation subscriptions.
func (d *Document) ObserverCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.observers)
}

func (d *Document) observerSnapshot() []Observer {
	if len(d.observers) == 0 {
		return nil
	}
	keys := make([]uint64, 0, len(d.observers))
	for key := range d.observers {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]Observer, 0, len(keys))
	for _, key := range keys {
		out = append(out, d.observers[key])
	}
	return out
}

func notify(observers []Observer, records []Mutation) {
	for _, fn := range observers {
		fn(records)
	}
}

// Render serialises the whole document.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// String renders the document, returning an empty string on failure.
func (d *Document) String() string {
	var b strings.Builder
	if err := d.Render(&b); err != nil {
		return ""
	}
	return b.String()
}
