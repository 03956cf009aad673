package events

const (
	// KindTimerStarted identifies timer creation.
	KindTimerStarted Kind = "timer.started"
	// KindTimerUpdated identifies per-second timer countdown updates.
	KindTimerUpdated Kind = "timer.updated"
	// KindTimerFinished identifies a timer reaching zero.
	KindTimerFinished Kind = "timer.finished"
)

// TimerStarted marks creation of a countdown timer.
type TimerStarted struct {
	Base
	ID               string
	Label            string
	RemainingSeconds int
}

// NewTimerStarted creates a timer started event.
func NewTimerStarted(id, label string, remainingSeconds int) TimerStarted {
	return TimerStarted{Base: NewBase(KindTimerStarted), ID: id, Label: label, RemainingSeconds: remainingSeconds}
}

// TimerUpdated marks a one-second countdown step.
type TimerUpdated struct {
	Base
	ID               string
	Label            string
	RemainingSeconds int
}

// NewTimerUpdated creates a timer updated event.
func NewTimerUpdated(id, label string, remainingSeconds int) TimerUpdated {
	return TimerUpdated{Base: NewBase(KindTimerUpdated), ID: id, Label: label, RemainingSeconds: remainingSeconds}
}

// TimerFinished marks a timer reaching zero. Emitted exactly once per timer.
type TimerFinished struct {
	Base
	ID    string
	Label string
}

// NewTimerFinished creates a timer finished event.
func NewTimerFinished(id, label string) TimerFinished {
	return TimerFinished{Base: NewBase(KindTimerFinished), ID: id, Label: label}
}
