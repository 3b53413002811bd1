package component

import (
	"context"
	"errors"

	"golang.org/x/net/html"

	"github.com/goliatone/go-dynview/pkg/dom"
	"github.com/goliatone/go-dynview/pkg/render"
)

// Mount replaces the host element's children with the current tree and
// wires every button and link to a click listener. Listeners from a
// previous Mount are removed first.
func (c *Component) Mount() error {
	if c.doc == nil || c.host == nil {
		return errors.New("component: no host document")
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return errClosed
	}

	tree := c.Render()

	c.mountMu.Lock()
	defer c.mountMu.Unlock()

	c.detachLocked()

	var pending []wiring
	children := make([]*html.Node, 0, len(tree.Children))
	for _, child := range tree.Children {
		children = append(children, toHTML(child, &pending))
	}
	if err := c.doc.ReplaceChildren(c.host, children...); err != nil {
		return err
	}
	for _, w := range pending {
		activate := w.activate
		id := c.doc.AddEventListener(w.element, dom.EventClick, func(*dom.Event) {
			activate(context.Background())
		})
		c.mounted = append(c.mounted, id)
	}
	return nil
}

func (c *Component) remount() {
	if c.doc == nil || c.host == nil {
		return
	}
	if err := c.Mount(); err != nil && !errors.Is(err, errClosed) {
		c.logger.Warn("component: mount failed", "error", err)
	}
}

func (c *Component) unmount() {
	c.mountMu.Lock()
	defer c.mountMu.Unlock()
	c.detachLocked()
}

func (c *Component) detachLocked() {
	if c.doc == nil {
		c.mounted = nil
		return
	}
	for _, id := range c.mounted {
		c.doc.RemoveEventListener(id)
	}
	c.mounted = nil
}

type wiring struct {
	element  *html.Node
	activate func(context.Context)
}

// toHTML converts a render node into host markup matching the vanilla
// renderer's templates.
func toHTML(node *render.Node, pending *[]wiring) *html.Node {
	attrs := []html.Attribute{}
	tag := "div"
	switch node.Kind {
	case render.NodeButton:
		tag = "button"
		attrs = append(attrs, dom.A("type", "button"))
	case render.NodeLink:
		tag = "a"
		attrs = append(attrs, dom.A("href", node.Href))
	}
	if node.Class != "" {
		attrs = append(attrs, dom.A("class", node.Class))
	}
	if node.ID != "" {
		attrs = append(attrs, dom.A("data-dynview-id", node.ID))
	}

	el := dom.Element(tag, attrs...)
	if node.Text != "" {
		el.AppendChild(dom.Text(node.Text))
	}
	for _, child := range node.Children {
		el.AppendChild(toHTML(child, pending))
	}
	if node.Interactive() {
		*pending = append(*pending, wiring{element: el, activate: node.Activate})
	}
	return el
}
