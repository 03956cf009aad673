package events

const (
	// KindStateChanged identifies controller state transitions.
	KindStateChanged Kind = "session_state.changed"
)

// StateChanged marks a controller state transition.
type StateChanged struct {
	Base
	Previous string
	Current  string
}

// NewStateChanged creates a state changed event.
func NewStateChanged(previous, current string) StateChanged {
	return StateChanged{Base: NewBase(KindStateChanged), Previous: previous, Current: current}
}
