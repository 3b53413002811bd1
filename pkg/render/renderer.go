package render

import (
	"context"
)

// Renderer converts a rendered tree into a byte representation (HTML,
// terminal text, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, tree *Node, options RenderOptions) ([]byte, error)
}
