package model

// Phase enumerates the render state variants.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseError   Phase = "error"
	PhaseReady   Phase = "ready"
)

// RenderState is the tagged variant the component renders from. Message is
// only meaningful for PhaseError.
type RenderState struct {
	Phase   Phase  `json:"phase"`
	Message string `json:"message,omitempty"`
}

// Loading is the initial state of every component.
func Loading() RenderState {
	return RenderState{Phase: PhaseLoading}
}

// Failed builds an error state carrying a human-readable message.
func Failed(message string) RenderState {
	return RenderState{Phase: PhaseError, Message: message}
}

// Ready marks both configuration and data as loaded.
func Ready() RenderState {
	return RenderState{Phase: PhaseReady}
}

func (s RenderState) IsLoading() bool { return s.Phase == PhaseLoading || s.Phase == "" }
func (s RenderState) IsError() bool   { return s.Phase == PhaseError }
func (s RenderState) IsReady() bool   { return s.Phase == PhaseReady }

func (s RenderState) String() string {
	if s.IsError() {
		return string(PhaseError) + ": " + s.Message
	}
	if s.Phase == "" {
		return string(PhaseLoading)
	}
	return string(s.Phase)
}
