package render

// RenderOptions describe per-request data output renderers can use without
// touching the tree.
type RenderOptions struct {
	// ComponentName labels the host wrapper. Empty means the tree is rendered
	// without a wrapper.
	ComponentName string
	// Standalone asks renderers that support it to emit a complete document
	// instead of a fragment.
	Standalone bool
}
