package domain

// Phase is the main UI state of the client.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseError   Phase = "error"
)

// String returns the string representation of the Phase.
func (p Phase) String() string {
	return string(p)
}

// State is an immutable snapshot of the client view-model.
//
// Video is set only in PhaseLoaded and Error only in PhaseError. Notice is an
// overlay independent of Phase.
type State struct {
	Phase     Phase          `json:"phase"`
	Input     string         `json:"input"`
	Video     *VideoMetadata `json:"video,omitempty"`
	Error     string         `json:"error,omitempty"`
	Notice    string         `json:"notice,omitempty"`
	ActiveTab Format         `json:"active_tab"`
}

// Loading reports whether a fetch is in flight.
func (s State) Loading() bool {
	return s.Phase == PhaseLoading
}

// Qualities returns the options for the active tab.
func (s State) Qualities() []QualityOption {
	return Qualities(s.ActiveTab)
}
