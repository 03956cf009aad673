package events

import "time"

const (
	// KindUserTranscriptUpdated identifies accumulated user transcript updates.
	KindUserTranscriptUpdated Kind = "transcript.user_updated"
	// KindModelTranscriptUpdated identifies accumulated model transcript updates.
	KindModelTranscriptUpdated Kind = "transcript.model_updated"
	// KindTurnCompleted identifies turn boundary completion.
	KindTurnCompleted Kind = "turn.completed"
)

// Turn is one complete exchange: the accumulated user utterance paired with
// the model's accumulated reply. Immutable after creation; ownership passes
// to the caller's conversation history.
type Turn struct {
	UserText    string
	ModelText   string
	CompletedAt time.Time
}

// UserTranscriptUpdated carries the live user transcript accumulator snapshot.
type UserTranscriptUpdated struct {
	Base
	Transcript string
}

// NewUserTranscriptUpdated creates a user transcript update event.
func NewUserTranscriptUpdated(transcript string) UserTranscriptUpdated {
	return UserTranscriptUpdated{Base: NewBase(KindUserTranscriptUpdated), Transcript: transcript}
}

// ModelTranscriptUpdated carries the live model transcript accumulator snapshot.
type ModelTranscriptUpdated struct {
	Base
	Transcript string
}

// NewModelTranscriptUpdated creates a model transcript update event.
func NewModelTranscriptUpdated(transcript string) ModelTranscriptUpdated {
	return ModelTranscriptUpdated{Base: NewBase(KindModelTranscriptUpdated), Transcript: transcript}
}

// TurnCompleted marks a turn boundary. An empty turn is still emitted so the
// caller's history stays ordered with the remote boundary stream.
type TurnCompleted struct {
	Base
	Turn Turn
}

// NewTurnCompleted creates a turn completed event.
func NewTurnCompleted(turn Turn) TurnCompleted {
	return TurnCompleted{Base: NewBase(KindTurnCompleted), Turn: turn}
}
