package session

import (
	"time"

	"github.com/souschef/voice-core/core/events"
	"github.com/souschef/voice-core/core/live"
	"github.com/souschef/voice-core/core/substitutions"
)

// Option configures a Session at construction time.
type Option func(*Session)

// WithLiveClient replaces the remote transport client. Defaults to the
// Gemini websocket client.
func WithLiveClient(client live.Client) Option {
	return func(s *Session) { s.liveClient = client }
}

// WithCaptureDevice wires the microphone capability.
func WithCaptureDevice(device CaptureDevice) Option {
	return func(s *Session) { s.device = device }
}

// WithPlaybackSink wires the audio output capability.
func WithPlaybackSink(sink PlaybackSink) Option {
	return func(s *Session) { s.sink = sink }
}

// WithClock pins playback scheduling to an explicit monotonic clock. When
// unset, a sink that implements Clock is used, falling back to wall time
// measured from connect.
func WithClock(clock Clock) Option {
	return func(s *Session) { s.clock = clock }
}

// WithSubstituteLookup replaces the ingredient-substitute collaborator.
func WithSubstituteLookup(lookup substitutions.Lookup) Option {
	return func(s *Session) { s.lookup = lookup }
}

// WithNotifier wires the fire-and-forget notification surface.
func WithNotifier(notifier Notifier) Option {
	return func(s *Session) { s.notifier = notifier }
}

// WithModel overrides the remote model name.
func WithModel(model string) Option {
	return func(s *Session) { s.model = model }
}

// WithVoice selects the spoken persona.
func WithVoice(voice string) Option {
	return func(s *Session) { s.voice = voice }
}

// WithSystemInstruction replaces the instruction text built from the recipe.
func WithSystemInstruction(text string) Option {
	return func(s *Session) { s.systemInstruction = text }
}

// WithOutboundPolicy selects the capture backpressure policy.
func WithOutboundPolicy(policy OutboundPolicy) Option {
	return func(s *Session) { s.policy = policy }
}

// WithAutoReconnect controls the single automatic retry after an unexpected
// remote close. Enabled by default.
func WithAutoReconnect(enabled bool) Option {
	return func(s *Session) { s.autoReconnect = enabled }
}

// WithTools registers additional tools beyond the built-in step navigation,
// timer and substitution handlers.
func WithTools(tools ...Tool) Option {
	return func(s *Session) { s.extraTools = append(s.extraTools, tools...) }
}

// WithToolTimeout bounds each tool handler invocation.
func WithToolTimeout(timeout time.Duration) Option {
	return func(s *Session) { s.toolTimeout = timeout }
}

// ConnectOption configures callbacks for one connection.
type ConnectOption func(*ConnectOptions)

// ConnectOptions collects the caller-facing callbacks for a connection. All
// callbacks are optional and are invoked from the controller's event loop,
// one at a time.
type ConnectOptions struct {
	onEvent           func(events.Event)
	onStateChanged    func(state State)
	onUserTranscript  func(transcript string)
	onModelTranscript func(transcript string)
	onTurnCompleted   func(turn events.Turn)
	onTimerStarted    func(timer Timer)
	onTimerUpdated    func(timer Timer)
	onTimerFinished   func(timer Timer)
	onStepChanged     func(stepIndex int)
	onConnectionLost  func(reason string)
}

// OnEvent receives every typed event the session emits.
func OnEvent(callback func(events.Event)) ConnectOption {
	return func(o *ConnectOptions) { o.onEvent = callback }
}

// OnStateChanged receives controller state transitions.
func OnStateChanged(callback func(state State)) ConnectOption {
	return func(o *ConnectOptions) { o.onStateChanged = callback }
}

// OnUserTranscript receives accumulated user transcript snapshots for live
// display.
func OnUserTranscript(callback func(transcript string)) ConnectOption {
	return func(o *ConnectOptions) { o.onUserTranscript = callback }
}

// OnModelTranscript receives accumulated model transcript snapshots for live
// display.
func OnModelTranscript(callback func(transcript string)) ConnectOption {
	return func(o *ConnectOptions) { o.onModelTranscript = callback }
}

// OnTurnCompleted hands off each completed conversation turn.
func OnTurnCompleted(callback func(turn events.Turn)) ConnectOption {
	return func(o *ConnectOptions) { o.onTurnCompleted = callback }
}

// OnTimerStarted receives newly created timers.
func OnTimerStarted(callback func(timer Timer)) ConnectOption {
	return func(o *ConnectOptions) { o.onTimerStarted = callback }
}

// OnTimerUpdated receives per-second timer countdown updates.
func OnTimerUpdated(callback func(timer Timer)) ConnectOption {
	return func(o *ConnectOptions) { o.onTimerUpdated = callback }
}

// OnTimerFinished receives each timer exactly once when it reaches zero.
func OnTimerFinished(callback func(timer Timer)) ConnectOption {
	return func(o *ConnectOptions) { o.onTimerFinished = callback }
}

// OnStepChanged receives recipe step navigation, zero-based.
func OnStepChanged(callback func(stepIndex int)) ConnectOption {
	return func(o *ConnectOptions) { o.onStepChanged = callback }
}

// OnConnectionLost fires when the remote session ends without a local close.
func OnConnectionLost(callback func(reason string)) ConnectOption {
	return func(o *ConnectOptions) { o.onConnectionLost = callback }
}
