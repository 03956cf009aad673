package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// Timer is an ephemeral countdown created on demand during a session. Timers
// do not survive session close.
type Timer struct {
	ID               string
	Label            string
	RemainingSeconds int
}

// timerSet holds the active timers. Mutations happen only inside the
// controller's event loop; the mutex exists so callers can snapshot
// concurrently.
type timerSet struct {
	mu     sync.Mutex
	timers []Timer
}

func newTimerSet() *timerSet {
	return &timerSet{}
}

// Add creates a timer and returns its snapshot. Negative durations are
// clamped to zero so the timer fires on the next tick instead of counting
// down forever; the duration comes from the remote model and is not trusted.
func (t *timerSet) Add(label string, durationSeconds int) Timer {
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	timer := Timer{
		ID:               uuid.NewString(),
		Label:            label,
		RemainingSeconds: durationSeconds,
	}

	t.mu.Lock()
	t.timers = append(t.timers, timer)
	t.mu.Unlock()

	return timer
}

// Tick decrements every active timer by one second, floored at zero. Timers
// reaching zero are removed and returned in finished so the caller can raise
// their one-shot notification.
func (t *timerSet) Tick() (updated, finished []Timer) {
	t.mu.Lock()
	defer t.mu.Unlock()

	remaining := t.timers[:0]
	for _, timer := range t.timers {
		if timer.RemainingSeconds > 0 {
			timer.RemainingSeconds--
		}
		if timer.RemainingSeconds == 0 {
			finished = append(finished, timer)
			continue
		}
		updated = append(updated, timer)
		remaining = append(remaining, timer)
	}
	t.timers = remaining

	return updated, finished
}

// Snapshot returns a deep copy of the active timers for display.
func (t *timerSet) Snapshot() []Timer {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := []Timer{}
	if err := copier.Copy(&snapshot, &t.timers); err != nil {
		snapshot = append(snapshot, t.timers...)
	}
	return snapshot
}

// Clear drops every active timer without firing notifications.
func (t *timerSet) Clear() {
	t.mu.Lock()
	t.timers = nil
	t.mu.Unlock()
}
