// Package live defines the contract between the session controller and a
// remote duplex conversational model transport.
package live

import (
	"context"

	"github.com/souschef/voice-core/core/audio"
)

// Config is the handshake payload sent once when a session opens.
type Config struct {
	// Model names the remote conversational model.
	Model string
	// Voice selects the spoken persona for synthesized replies.
	Voice string
	// SystemInstruction is the behavioral instruction text for the session.
	SystemInstruction string
	// Tools describes the locally executable actions exposed to the model.
	Tools []ToolDescriptor

	InputEncoding  audio.EncodingInfo
	OutputEncoding audio.EncodingInfo

	// TranscribeInput and TranscribeOutput request live speech-to-text for
	// the respective direction.
	TranscribeInput  bool
	TranscribeOutput bool
}

// ToolDescriptor declares one callable tool to the remote model. Parameters
// holds a JSON-schema-shaped value marshaled into the transport's native
// declaration format.
type ToolDescriptor struct {
	Name        string
	Description string
	Parameters  any
}

// ToolCall is a structured action request issued by the remote model.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult acknowledges one ToolCall. Exactly one result must exist per
// call id; results may be sent in any order.
type ToolResult struct {
	ID      string
	Name    string
	Payload string
}

// Callbacks receive inbound session traffic. All callbacks are optional and
// are invoked from the transport's read loop, one message at a time.
type Callbacks struct {
	// OnUserTranscript delivers an incremental user speech-to-text fragment.
	OnUserTranscript func(text string)
	// OnModelTranscript delivers an incremental model speech transcript
	// fragment.
	OnModelTranscript func(text string)
	// OnTurnComplete marks the remote turn boundary.
	OnTurnComplete func()
	// OnToolCalls delivers one inbound batch of tool invocations.
	OnToolCalls func(calls []ToolCall)
	// OnAudioChunk delivers one transport-encoded block of synthesized
	// speech.
	OnAudioChunk func(payload string)
	// OnInterrupted signals that the model's reply was cut off by new user
	// speech; pending playback for the turn is stale.
	OnInterrupted func()
	// OnError reports a mid-session transport error.
	OnError func(err error)
	// OnClosed reports the end of the inbound stream. err is nil for a clean
	// close and non-nil when the remote end went away unexpectedly.
	OnClosed func(err error)
}

// Session is one open duplex connection to the remote model.
type Session interface {
	// SendAudioChunk pushes one transport-encoded capture frame.
	SendAudioChunk(mimeType, payload string) error
	// SendToolResults reports results for previously received tool calls.
	SendToolResults(results ...ToolResult) error
	// Close releases the connection. Idempotent.
	Close() error
}

// Client opens live sessions.
type Client interface {
	Connect(ctx context.Context, config Config, callbacks Callbacks) (Session, error)
}
