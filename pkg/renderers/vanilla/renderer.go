// Package vanilla renders the component tree as plain HTML through embedded
// pongo2 templates.
package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-dynview/pkg/render"
	rendertemplate "github.com/goliatone/go-dynview/pkg/render/template"
	"github.com/goliatone/go-dynview/pkg/render/template/gotemplate"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	theme            *theme.RendererConfig
	policy           *bluemonday.Policy
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTheme exposes a go-theme selection on the host wrapper: theme name and
// variant as data attributes and CSS variables as an inline style.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = cfg
	}
}

// WithPolicy replaces the sanitiser applied to the rendered fragment.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
	theme     themeView
	policy    *bluemonday.Policy
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	policy := cfg.policy
	if policy == nil {
		policy = FragmentPolicy()
	}

	return &Renderer{
		templates: renderer,
		theme:     buildThemeView(cfg.theme),
		policy:    policy,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the HTML for tree. The fragment is sanitised before it is
// placed in the host wrapper.
func (r *Renderer) Render(ctx context.Context, tree *render.Node, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	body, err := r.templates.RenderTemplate(fragmentTemplate, map[string]any{
		"nodes": nodeViews(tree),
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render fragment: %w", err)
	}
	body = r.policy.Sanitize(body)

	out, err := r.templates.RenderTemplate(hostTemplate, map[string]any{
		"component":  options.ComponentName,
		"standalone": options.Standalone,
		"theme":      r.theme.context(),
		"body":       body,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render host: %w", err)
	}
	return []byte(strings.TrimSpace(out)), nil
}

// nodeViews flattens the tree into the template view model.
func nodeViews(tree *render.Node) []any {
	if tree == nil {
		return nil
	}
	nodes := tree.Children
	if tree.Kind != render.NodeFragment {
		nodes = []*render.Node{tree}
	}
	out := make([]any, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, nodeView(node))
	}
	return out
}

func nodeView(node *render.Node) map[string]any {
	view := map[string]any{
		"id":    node.ID,
		"kind":  string(node.Kind),
		"class": node.Class,
		"text":  node.Text,
		"href":  node.Href,
	}
	if len(node.Children) > 0 {
		children := make([]any, 0, len(node.Children))
		for _, child := range node.Children {
			children = append(children, nodeView(child))
		}
		view["children"] = children
	}
	return view
}

type themeView struct {
	name    string
	variant string
	style   string
}

func buildThemeView(cfg *theme.RendererConfig) themeView {
	if cfg == nil {
		return themeView{}
	}
	return themeView{
		name:    cfg.Theme,
		variant: cfg.Variant,
		style:   cssVarsStyle(cfg.CSSVars),
	}
}

func (t themeView) context() map[string]any {
	return map[string]any{
		"name":    t.name,
		"variant": t.variant,
		"style":   t.style,
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		name := strings.TrimSpace(key)
		value := strings.TrimSpace(vars[key])
		if name == "" || value == "" {
			continue
		}
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s: %s;", name, value)
	}
	return b.String()
}
