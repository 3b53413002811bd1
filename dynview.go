// Package dynview is the top-level entry point: it re-exports the types most
// callers need and wires a component to the built-in output renderers.
package dynview

import (
	"context"
	"fmt"

	internalloader "github.com/goliatone/go-dynview/internal/loader"
	"github.com/goliatone/go-dynview/pkg/action"
	"github.com/goliatone/go-dynview/pkg/component"
	"github.com/goliatone/go-dynview/pkg/config"
	pkgloader "github.com/goliatone/go-dynview/pkg/loader"
	"github.com/goliatone/go-dynview/pkg/model"
	"github.com/goliatone/go-dynview/pkg/render"
	"github.com/goliatone/go-dynview/pkg/renderers/tui"
	"github.com/goliatone/go-dynview/pkg/renderers/vanilla"
)

// DefaultRenderer names the renderer used when none is requested.
const DefaultRenderer = "vanilla"

// RenderState aliases model.RenderState.
type RenderState = model.RenderState

// Event aliases the custom action event published by components.
type Event = action.Event

// RenderOptions aliases render.RenderOptions.
type RenderOptions = render.RenderOptions

// NewLoader constructs a loader using the internal implementation while keeping
// the concrete type hidden from consumers.
func NewLoader(options ...pkgloader.LoaderOption) pkgloader.Loader {
	cfg := pkgloader.NewLoaderOptions(options...)
	return internalloader.New(cfg)
}

// NewComponent exposes the component constructor from the top-level module.
func NewComponent(options ...component.Option) *component.Component {
	return component.New(options...)
}

// NewRegistry returns a registry holding the vanilla HTML renderer (the
// fallback) and the terminal renderer.
func NewRegistry(vanillaOptions []vanilla.Option, tuiOptions []tui.Option) (*render.Registry, error) {
	html, err := vanilla.New(vanillaOptions...)
	if err != nil {
		return nil, fmt.Errorf("dynview: vanilla renderer: %w", err)
	}
	text, err := tui.New(tuiOptions...)
	if err != nil {
		return nil, fmt.Errorf("dynview: tui renderer: %w", err)
	}
	return render.NewRegistry(html, text)
}

// Result is the outcome of a one-shot Generate call.
type Result struct {
	State       RenderState
	Output      []byte
	ContentType string
}

// Generate activates a component for cfg once and renders its final state
// with the named renderer (DefaultRenderer when empty). A load failure is
// not an error: the Error state is rendered like any other.
func Generate(ctx context.Context, cfg config.Config, rendererName string, registry *render.Registry, options ...component.Option) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if registry == nil {
		var err error
		registry, err = NewRegistry(nil, nil)
		if err != nil {
			return Result{}, err
		}
	}
	if rendererName == "" {
		rendererName = DefaultRenderer
	}

	c := component.New(append([]component.Option{component.WithConfig(cfg)}, options...)...)
	defer c.Close()

	state := c.Activate(ctx)
	out, contentType, err := registry.Render(ctx, rendererName, c.Render(), RenderOptions{
		ComponentName: c.Schema().Name(),
	})
	if err != nil {
		return Result{State: state}, err
	}
	return Result{State: state, Output: out, ContentType: contentType}, nil
}
