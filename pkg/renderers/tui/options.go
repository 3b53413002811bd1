package tui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the colours used when drawing the tree. Empty values fall back
// to the defaults.
type Theme struct {
	Accent lipgloss.Color
	Muted  lipgloss.Color
	Error  lipgloss.Color
	Border lipgloss.Color
}

// DefaultTheme mirrors the browser look of the component: blue buttons, red
// errors, grey item borders.
var DefaultTheme = Theme{
	Accent: lipgloss.Color("#0066cc"),
	Muted:  lipgloss.Color("#888888"),
	Error:  lipgloss.Color("#ff0000"),
	Border: lipgloss.Color("#dddddd"),
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by Interact.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutput sets the writer the terminal styles are detected against and
// where the default driver prints. Non-terminal writers get plain text.
func WithOutput(out io.Writer) Option {
	return func(r *Renderer) {
		if out != nil {
			r.out = out
		}
	}
}

// WithTheme overrides the colours.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
