// Package tui renders the component tree for terminals and lets a user
// activate its buttons and links through interactive prompts.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-dynview/pkg/render"
)

const doneOption = "Done"

// Renderer implements render.Renderer for terminal sessions.
type Renderer struct {
	driver PromptDriver
	out    io.Writer
	theme  Theme
	styles styles
}

type styles struct {
	title   lipgloss.Style
	item    lipgloss.Style
	text    lipgloss.Style
	button  lipgloss.Style
	link    lipgloss.Style
	muted   lipgloss.Style
	errText lipgloss.Style
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver on stdout).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{theme: DefaultTheme}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	r.styles = buildStyles(lipgloss.NewRenderer(r.out), mergeTheme(r.theme))
	return r, nil
}

func mergeTheme(theme Theme) Theme {
	if theme.Accent == "" {
		theme.Accent = DefaultTheme.Accent
	}
	if theme.Muted == "" {
		theme.Muted = DefaultTheme.Muted
	}
	if theme.Error == "" {
		theme.Error = DefaultTheme.Error
	}
	if theme.Border == "" {
		theme.Border = DefaultTheme.Border
	}
	return theme
}

func buildStyles(lr *lipgloss.Renderer, theme Theme) styles {
	return styles{
		title:   lr.NewStyle().Bold(true),
		item:    lr.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(theme.Border).Padding(0, 1),
		text:    lr.NewStyle(),
		button:  lr.NewStyle().Bold(true).Foreground(theme.Accent),
		link:    lr.NewStyle().Underline(true).Foreground(theme.Accent),
		muted:   lr.NewStyle().Foreground(theme.Muted),
		errText: lr.NewStyle().Foreground(theme.Error).Border(lipgloss.NormalBorder()).BorderForeground(theme.Error).Padding(0, 1),
	}
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render draws the tree as styled terminal text.
func (r *Renderer) Render(ctx context.Context, tree *render.Node, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte(r.view(tree, opts)), nil
}

func (r *Renderer) view(tree *render.Node, opts render.RenderOptions) string {
	var blocks []string
	if opts.ComponentName != "" {
		blocks = append(blocks, r.styles.title.Render(opts.ComponentName))
	}
	if tree != nil {
		nodes := tree.Children
		if tree.Kind != render.NodeFragment {
			nodes = []*render.Node{tree}
		}
		for _, node := range nodes {
			blocks = append(blocks, r.block(node))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func (r *Renderer) block(node *render.Node) string {
	switch node.Kind {
	case render.NodeItem:
		lines := make([]string, 0, len(node.Children))
		for _, child := range node.Children {
			lines = append(lines, r.line(child))
		}
		return r.styles.item.Render(strings.Join(lines, "\n"))
	case render.NodeError:
		return r.styles.errText.Render(node.Text)
	case render.NodeLoading:
		return r.styles.muted.Render(node.Text)
	default:
		return r.line(node)
	}
}

func (r *Renderer) line(node *render.Node) string {
	switch node.Kind {
	case render.NodeButton:
		return r.styles.button.Render("[ " + node.Text + " ]")
	case render.NodeLink:
		return r.styles.link.Render(node.Text) + " " + r.styles.muted.Render("("+node.Href+")")
	case render.NodeUnsupported:
		return r.styles.muted.Render(node.Text)
	default:
		return r.styles.text.Render(node.Text)
	}
}

// Interact prints the tree and repeatedly asks which button or link to
// activate until the user picks Done or aborts. refresh, when set, is called
// after every activation to obtain the tree to show next.
func (r *Renderer) Interact(ctx context.Context, tree *render.Node, opts render.RenderOptions, refresh func() *render.Node) error {
	if ctx == nil {
		return errors.New("tui: context is required")
	}
	for {
		if err := r.driver.Info(ctx, r.view(tree, opts)); err != nil {
			return err
		}

		targets, labels := interactiveTargets(tree)
		if len(targets) == 0 {
			return ErrNothingToActivate
		}

		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      "Activate",
			Options:      append(labels, doneOption),
			DefaultIndex: len(labels),
		})
		if errors.Is(err, ErrAborted) {
			return nil
		}
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(targets) {
			return nil
		}

		targets[idx].Activate(ctx)
		if refresh != nil {
			if next := refresh(); next != nil {
				tree = next
			}
		}
	}
}

func interactiveTargets(tree *render.Node) ([]*render.Node, []string) {
	var (
		targets []*render.Node
		labels  []string
		item    int
	)
	if tree == nil {
		return nil, nil
	}
	tree.Walk(func(node *render.Node) bool {
		if node.Kind == render.NodeItem {
			item++
		}
		if !node.Interactive() {
			return true
		}
		targets = append(targets, node)
		label := fmt.Sprintf("#%d %s: %s", item, node.Kind, node.Text)
		if node.Kind == render.NodeLink && node.Href != "" {
			label += " -> " + node.Href
		}
		labels = append(labels, label)
		return true
	})
	return targets, labels
}
