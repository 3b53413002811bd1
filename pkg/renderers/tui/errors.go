package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNothingToActivate is returned by Interact when the tree holds no
	// buttons or links.
	ErrNothingToActivate = errors.New("tui: nothing to activate")
)
