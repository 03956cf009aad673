package session

import (
	"time"

	"github.com/souschef/voice-core/core/events"
)

// transcriptAccumulator merges incremental speech-to-text fragments into
// discrete conversational turns. Only the controller's event loop touches
// it, so it carries no locks.
type transcriptAccumulator struct {
	userAcc  string
	modelAcc string
}

func newTranscriptAccumulator() *transcriptAccumulator {
	return &transcriptAccumulator{}
}

// AppendUser adds a user fragment and returns the accumulated snapshot for
// live display.
func (a *transcriptAccumulator) AppendUser(text string) string {
	a.userAcc += text
	return a.userAcc
}

// AppendModel adds a model fragment and returns the accumulated snapshot for
// live display.
func (a *transcriptAccumulator) AppendModel(text string) string {
	a.modelAcc += text
	return a.modelAcc
}

// FlushTurn emits the completed turn and resets both buffers. Exactly one
// reset per boundary; an empty turn is still a valid turn and is returned
// rather than dropped, preserving ordering with the caller's history.
func (a *transcriptAccumulator) FlushTurn(now time.Time) events.Turn {
	turn := events.Turn{
		UserText:    a.userAcc,
		ModelText:   a.modelAcc,
		CompletedAt: now,
	}
	a.userAcc = ""
	a.modelAcc = ""
	return turn
}
