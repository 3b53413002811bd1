package render

import (
	"context"
	"strings"
)

// NodeKind tags the variants of the rendered tree.
type NodeKind string

const (
	NodeFragment    NodeKind = "fragment"
	NodeItem        NodeKind = "item"
	NodeText        NodeKind = "text"
	NodeButton      NodeKind = "button"
	NodeLink        NodeKind = "link"
	NodeUnsupported NodeKind = "unsupported"
	NodeLoading     NodeKind = "loading"
	NodeError       NodeKind = "error"
)

// CSS classes carried by rendered nodes.
const (
	ClassElement = "dynamic-element"
	ClassItem    = "item"
	ClassLoading = "loading"
	ClassError   = "error"
)

// LoadingText is shown while the component is loading.
const LoadingText = "Loading..."

// Node is one entry of the rendered tree. Output renderers turn it into
// markup or terminal text; Activate is set on buttons and links.
type Node struct {
	ID       string                    `json:"id,omitempty"`
	Kind     NodeKind                  `json:"kind"`
	Class    string                    `json:"class,omitempty"`
	Text     string                    `json:"text,omitempty"`
	Href     string                    `json:"href,omitempty"`
	Children []*Node                   `json:"children,omitempty"`
	Activate func(ctx context.Context) `json:"-"`
}

// Interactive reports whether the node reacts to activation.
func (n *Node) Interactive() bool {
	return n != nil && n.Activate != nil
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || fn == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Find returns every node of the given kind in document order.
func (n *Node) Find(kind NodeKind) []*Node {
	var out []*Node
	n.Walk(func(node *Node) bool {
		if node.Kind == kind {
			out = append(out, node)
		}
		return true
	})
	return out
}

// ByID returns the node with id, or nil.
func (n *Node) ByID(id string) *Node {
	var found *Node
	n.Walk(func(node *Node) bool {
		if found != nil {
			return false
		}
		if node.ID == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// TextContent concatenates the text of n and its descendants, separated by
// single spaces.
func (n *Node) TextContent() string {
	var parts []string
	n.Walk(func(node *Node) bool {
		if text := strings.TrimSpace(node.Text); text != "" {
			parts = append(parts, text)
		}
		return true
	})
	return strings.Join(parts, " ")
}
