// Package render maps element declarations and records onto a renderer
// agnostic tree, and keeps the registry of output renderers that turn that
// tree into bytes.
package render

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-dynview/pkg/action"
	"github.com/goliatone/go-dynview/pkg/interpolate"
	"github.com/goliatone/go-dynview/pkg/model"
)

// Option configures an ElementRenderer.
type Option func(*ElementRenderer)

// WithDispatcher sets the dispatcher that activated buttons and links use.
func WithDispatcher(d *action.Dispatcher) Option {
	return func(r *ElementRenderer) {
		if d != nil {
			r.dispatcher = d
		}
	}
}

// WithLogger sets the logger used for unresolved field diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *ElementRenderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// ElementRenderer produces render nodes for element declarations.
type ElementRenderer struct {
	dispatcher *action.Dispatcher
	logger     *slog.Logger
}

// NewElementRenderer constructs an ElementRenderer. Without a dispatcher,
// activation is a no-op dispatcher with no navigator or sink.
func NewElementRenderer(options ...Option) *ElementRenderer {
	r := &ElementRenderer{logger: slog.Default()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.dispatcher == nil {
		r.dispatcher = action.New(action.WithLogger(r.logger))
	}
	return r
}

// RenderElement renders decl against record. Unknown kinds degrade to a
// diagnostic node; this never fails.
func (r *ElementRenderer) RenderElement(decl model.Element, record model.Record) *Node {
	switch decl.Kind {
	case model.ElementText:
		return &Node{
			Kind:  NodeText,
			Class: ClassElement,
			Text:  r.interpolate(decl.Content, record),
		}
	case model.ElementButton:
		node := &Node{
			Kind:  NodeButton,
			Class: ClassElement,
			Text:  r.interpolate(decl.Label, record),
		}
		var act *model.Action
		if decl.Action != nil {
			cloned := decl.Action.Clone()
			act = &cloned
		}
		rec := record.Clone()
		dispatcher := r.dispatcher
		node.Activate = func(ctx context.Context) {
			dispatcher.Dispatch(ctx, act, rec)
		}
		return node
	case model.ElementLink:
		href := r.interpolate(decl.Href, record)
		node := &Node{
			Kind:  NodeLink,
			Class: ClassElement,
			Text:  r.interpolate(decl.Label, record),
			Href:  href,
		}
		dispatcher := r.dispatcher
		node.Activate = func(ctx context.Context) {
			dispatcher.Navigate(ctx, href, nil)
		}
		return node
	default:
		return &Node{
			Kind:  NodeUnsupported,
			Class: ClassElement,
			Text:  fmt.Sprintf("Unsupported element type: %s", decl.Kind),
		}
	}
}

// RenderFragment renders the whole tree for a component state: a loading
// node, an error node, or one item per record holding one node per declared
// element.
func (r *ElementRenderer) RenderFragment(state model.RenderState, schema model.Schema, records []model.Record) *Node {
	root := &Node{Kind: NodeFragment}

	switch {
	case state.IsLoading():
		root.Children = []*Node{{ID: "loading", Kind: NodeLoading, Class: ClassLoading, Text: LoadingText}}
	case state.IsError():
		root.Children = []*Node{{ID: "error", Kind: NodeError, Class: ClassError, Text: state.Message}}
	default:
		root.Children = make([]*Node, 0, len(records))
		for i, record := range records {
			item := &Node{
				ID:       fmt.Sprintf("item-%d", i),
				Kind:     NodeItem,
				Class:    ClassItem,
				Children: make([]*Node, 0, len(schema.Elements)),
			}
			for j, decl := range schema.Elements {
				child := r.RenderElement(decl, record)
				child.ID = fmt.Sprintf("item-%d-el-%d", i, j)
				item.Children = append(item.Children, child)
			}
			root.Children = append(root.Children, item)
		}
	}
	return root
}

func (r *ElementRenderer) interpolate(template string, record model.Record) string {
	out := interpolate.Interpolate(template, record)
	if missing := interpolate.Missing(template, record); len(missing) > 0 {
		r.logger.Debug("render: unresolved fields", "template", template, "fields", missing)
	}
	return out
}
