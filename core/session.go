// Package session implements the real-time voice cooking-session engine: a
// duplex audio stream to a remote conversational model combined with live
// transcript accumulation, in-band tool invocation and gapless playback
// scheduling, layered on top of a caller-supplied recipe step list.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/souschef/voice-core/core/audio"
	"github.com/souschef/voice-core/core/events"
	"github.com/souschef/voice-core/core/live"
	"github.com/souschef/voice-core/core/live/gemini"
	"github.com/souschef/voice-core/core/substitutions"
)

const (
	defaultVoice      = "Zephyr"
	reconnectBackoff  = 2 * time.Second
	defaultTickPeriod = time.Second
)

// Session is the state machine that owns one connection to the remote model
// and orchestrates capture, playback, transcripts, timers and tools. All
// controller-owned state is mutated by a single serialized event loop;
// exactly one voice session is active at a time.
type Session struct {
	recipe Recipe

	liveClient live.Client
	device     CaptureDevice
	sink       PlaybackSink
	clock      Clock
	lookup     substitutions.Lookup
	notifier   Notifier

	model             string
	voice             string
	systemInstruction string
	policy            OutboundPolicy
	autoReconnect     bool
	reconnectDelay    time.Duration
	toolTimeout       time.Duration
	tickInterval      time.Duration
	extraTools        []Tool

	emit           eventEmitter
	connectOptions []ConnectOption

	timers *timerSet

	closeOnce sync.Once

	mu          sync.Mutex
	state       State
	stepIndex   int
	baseContext context.Context

	// Connection-scoped; rebuilt on every Connect.
	eventsCh     chan func()
	connDone     chan struct{}
	connCancel   context.CancelFunc
	liveSession  live.Session
	capture      *capturePipeline
	scheduler    *playbackScheduler
	accumulator  *transcriptAccumulator
	dispatcher   *toolDispatcher
	tornDown     bool
	retried      bool
	reconnecting bool
}

// New creates a session for one recipe. The session starts in
// StateConnecting; call Connect to open it.
func New(recipe Recipe, opts ...Option) *Session {
	s := &Session{
		recipe:         recipe,
		liveClient:     gemini.NewClient(),
		lookup:         substitutions.NewGeminiLookup(),
		notifier:       noopNotifier{},
		voice:          defaultVoice,
		policy:         DropOldest,
		autoReconnect:  true,
		reconnectDelay: reconnectBackoff,
		toolTimeout:    defaultToolTimeout,
		tickInterval:   defaultTickPeriod,
		emit:           noopEventEmitter,
		timers:         newTimerSet(),
		state:          StateConnecting,
		baseContext:    context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect acquires the microphone, opens the remote session and starts the
// event loop. On success the session transitions to StateListening. On
// failure the session stays in StateConnecting awaiting an explicit retry;
// microphone refusal is reported as ErrPermissionDenied, handshake failure
// as a ConnectionError.
func (s *Session) Connect(ctx context.Context, opts ...ConnectOption) error {
	ctx, span := tracer.Start(ctx, "connect cooking session")
	defer span.End()

	s.mu.Lock()
	switch s.state {
	case StateClosed:
		s.mu.Unlock()
		return fmt.Errorf("session closed")
	case StateConnecting, StateErrored:
	default:
		s.mu.Unlock()
		return fmt.Errorf("session already connected")
	}

	options := ConnectOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if len(opts) > 0 {
		s.connectOptions = opts
		s.emit = newCallbackEventEmitter(options)
	}
	s.baseContext = ctx
	// A caller-initiated Connect restores the single automatic retry; the
	// reconnect goroutine's own Connect must not.
	if !s.reconnecting {
		s.retried = false
	}

	if s.device == nil || s.sink == nil {
		s.mu.Unlock()
		return fmt.Errorf("no audio capability configured")
	}

	connCtx, connCancel := context.WithCancel(ctx)
	capture := newCapturePipeline(s.policy)
	accumulator := newTranscriptAccumulator()
	dispatcher := newToolDispatcher(s.toolTimeout)
	for _, tool := range s.builtinTools() {
		dispatcher.register(tool)
	}
	for _, tool := range s.extraTools {
		dispatcher.register(tool)
	}

	eventsCh := make(chan func(), 64)
	connDone := make(chan struct{})

	s.eventsCh = eventsCh
	s.connDone = connDone
	s.connCancel = connCancel
	s.capture = capture
	s.accumulator = accumulator
	s.dispatcher = dispatcher
	s.tornDown = false
	s.mu.Unlock()

	// Microphone first: no point opening the remote session without audio.
	if err := s.device.Start(connCtx, capture.PushBlock); err != nil {
		connCancel()
		recordedErr := fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return recordedErr
	}

	scheduler := newPlaybackScheduler(s.resolveClock(), s.sink, func() {
		s.enqueue(func() { s.handlePlaybackDrained() })
	})

	liveSession, err := s.liveClient.Connect(connCtx, s.sessionConfig(dispatcher), live.Callbacks{
		OnUserTranscript: func(text string) {
			s.enqueue(func() { s.emit(events.NewUserTranscriptUpdated(accumulator.AppendUser(text))) })
		},
		OnModelTranscript: func(text string) {
			s.enqueue(func() { s.emit(events.NewModelTranscriptUpdated(accumulator.AppendModel(text))) })
		},
		OnTurnComplete: func() {
			s.enqueue(func() { s.handleTurnComplete() })
		},
		OnToolCalls: func(calls []live.ToolCall) {
			s.enqueue(func() { s.handleToolCalls(calls) })
		},
		OnAudioChunk: func(payload string) {
			s.enqueue(func() { s.handleAudioChunk(payload) })
		},
		OnInterrupted: func() {
			s.enqueue(func() { s.handleInterrupted() })
		},
		OnError: func(err error) {
			s.enqueue(func() { s.handleRemoteGone(err) })
		},
		OnClosed: func(err error) {
			s.enqueue(func() { s.handleRemoteClosed(err) })
		},
	})
	if err != nil {
		s.device.Stop()
		connCancel()
		recordedErr := &ConnectionError{Stage: "handshake", Err: err}
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		s.setState(StateErrored)
		s.setState(StateConnecting)
		return recordedErr
	}

	s.mu.Lock()
	s.liveSession = liveSession
	s.scheduler = scheduler
	s.mu.Unlock()

	go s.run(connCtx, eventsCh, connDone)
	go capture.Pump(connCtx, liveSession.SendAudioChunk)

	s.setState(StateListening)
	return nil
}

func (s *Session) sessionConfig(dispatcher *toolDispatcher) live.Config {
	instruction := s.systemInstruction
	if instruction == "" {
		instruction = defaultSystemInstruction(s.recipe)
	}

	return live.Config{
		Model:             s.model,
		Voice:             s.voice,
		SystemInstruction: instruction,
		Tools:             dispatcher.descriptors(),
		InputEncoding:     audio.CaptureEncoding(),
		OutputEncoding:    audio.PlaybackEncoding(),
		TranscribeInput:   true,
		TranscribeOutput:  true,
	}
}

func (s *Session) resolveClock() Clock {
	if s.clock != nil {
		return s.clock
	}
	if sinkClock, ok := s.sink.(Clock); ok {
		return sinkClock
	}

	start := time.Now()
	return ClockFunc(func() time.Duration { return time.Since(start) })
}

// run is the single serialized event loop. Every mutation of controller
// state flows through here, one event at a time.
func (s *Session) run(ctx context.Context, eventsCh chan func(), connDone chan struct{}) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-connDone:
			return
		case handle := <-eventsCh:
			handle()
		case <-ticker.C:
			s.handleTimerTick()
		}
	}
}

// enqueue places an event on the loop, dropping it if the connection is
// already torn down.
func (s *Session) enqueue(handle func()) {
	s.mu.Lock()
	eventsCh, connDone := s.eventsCh, s.connDone
	s.mu.Unlock()

	if eventsCh == nil {
		return
	}
	select {
	case <-connDone:
	case eventsCh <- handle:
	}
}

// Close stops capture, aborts playback, stops the timer tick loop and
// releases the remote connection and hardware handles. Idempotent and safe
// to call from any state, including concurrently with an in-flight tool
// call.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.teardownConn()
		if s.sink != nil {
			s.sink.Close()
		}
		s.setState(StateClosed)
	})
}

// teardownConn releases connection-scoped resources. Safe when nothing is
// connected and safe to call twice per connection.
func (s *Session) teardownConn() {
	s.mu.Lock()
	if s.tornDown {
		s.mu.Unlock()
		return
	}
	s.tornDown = true
	capture := s.capture
	scheduler := s.scheduler
	liveSession := s.liveSession
	connCancel := s.connCancel
	connDone := s.connDone
	s.liveSession = nil
	s.mu.Unlock()

	if capture != nil {
		capture.Close()
	}
	if s.device != nil {
		if err := s.device.Stop(); err != nil {
			log.Println("Warning: failed to stop capture device:", err)
		}
	}
	if scheduler != nil {
		scheduler.Abort()
	}
	s.timers.Clear()
	if liveSession != nil {
		liveSession.Close()
	}
	if connDone != nil {
		close(connDone)
	}
	if connCancel != nil {
		connCancel()
	}
}

// State returns the current controller state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	previous := s.state
	s.state = next
	emit := s.emit
	s.mu.Unlock()

	if previous != next {
		emit(events.NewStateChanged(previous.String(), next.String()))
	}
}

// Recipe returns the step list the session drives.
func (s *Session) Recipe() Recipe { return s.recipe }

// CurrentStep returns the zero-based current step index.
func (s *Session) CurrentStep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepIndex
}

// SelectStep moves the current step directly, zero-based, for UI-driven
// navigation. Out-of-range indices are ignored.
func (s *Session) SelectStep(stepIndex int) {
	if stepIndex < 0 || stepIndex >= s.recipe.TotalSteps() {
		return
	}
	s.setStep(stepIndex)
}

func (s *Session) setStep(stepIndex int) {
	s.mu.Lock()
	changed := s.stepIndex != stepIndex
	s.stepIndex = stepIndex
	emit := s.emit
	s.mu.Unlock()

	if changed {
		emit(events.NewStepChanged(stepIndex, s.recipe.TotalSteps()))
	}
}

// Timers returns a snapshot of the active countdown timers.
func (s *Session) Timers() []Timer { return s.timers.Snapshot() }

func (s *Session) builtinTools() []Tool {
	return []Tool{
		NewTool(toolNameNavigate,
			"Navigate the recipe to the given step. Steps are numbered from 1.",
			func(_ context.Context, params struct {
				StepNumber int `json:"stepNumber" jsonschema:"description=1-based step number to move to"`
			}) (string, error) {
				s.navigateToStep(params.StepNumber)
				return "", nil
			}),
		NewTool(toolNameSetTimer,
			"Create a countdown timer, e.g. for simmering or resting.",
			func(_ context.Context, params struct {
				DurationSeconds int    `json:"durationSeconds" jsonschema:"description=timer length in seconds"`
				Label           string `json:"label" jsonschema:"description=short human-readable timer label"`
			}) (string, error) {
				s.startTimer(params.Label, params.DurationSeconds)
				return "", nil
			}),
		NewAsyncTool(toolNameSubstitute,
			"Look up practical substitutes for an ingredient in the current recipe.",
			func(ctx context.Context, params struct {
				Ingredient string `json:"ingredient" jsonschema:"description=ingredient to replace"`
			}) (string, error) {
				return s.lookup.Substitute(ctx, params.Ingredient, s.recipe.Title)
			}),
	}
}

// navigateToStep validates the 1-based step number and silently no-ops
// out-of-range values; a wrong step request from the model is non-fatal.
func (s *Session) navigateToStep(stepNumber int) {
	if stepNumber < 1 || stepNumber > s.recipe.TotalSteps() {
		log.Println("Warning: ignoring navigation to out-of-range step", stepNumber)
		return
	}
	s.setStep(stepNumber - 1)
}

func (s *Session) startTimer(label string, durationSeconds int) {
	timer := s.timers.Add(label, durationSeconds)
	s.emit(events.NewTimerStarted(timer.ID, timer.Label, timer.RemainingSeconds))
}

// Event-loop handlers. Only the run loop invokes these.

func (s *Session) handleAudioChunk(payload string) {
	s.mu.Lock()
	scheduler := s.scheduler
	s.mu.Unlock()
	if scheduler == nil {
		return
	}

	if err := scheduler.Enqueue(payload); err != nil {
		var decodeErr *audio.DecodeError
		if errors.As(err, &decodeErr) {
			log.Println("Warning: dropping malformed audio chunk:", err)
			return
		}
		log.Println("Warning: failed to schedule audio chunk:", err)
		return
	}

	if s.State() != StateSpeaking {
		s.setState(StateSpeaking)
	}
}

// handleInterrupted drops the stale remainder of the model's reply when the
// user barges in.
func (s *Session) handleInterrupted() {
	s.mu.Lock()
	scheduler := s.scheduler
	s.mu.Unlock()
	if scheduler == nil {
		return
	}

	scheduler.Abort()
	if s.State() == StateSpeaking {
		s.setState(StateListening)
	}
}

func (s *Session) handlePlaybackDrained() {
	if s.State() == StateSpeaking {
		s.setState(StateListening)
	}
}

func (s *Session) handleTurnComplete() {
	turn := s.accumulator.FlushTurn(time.Now())
	s.emit(events.NewTurnCompleted(turn))
	// Clear the live display snapshots alongside the reset.
	s.emit(events.NewUserTranscriptUpdated(""))
	s.emit(events.NewModelTranscriptUpdated(""))

	if s.State() == StateProcessing {
		s.setState(StateListening)
	}
}

// handleToolCalls executes one inbound batch. Synchronous handlers run
// inline, blocking further inbound processing only for this batch;
// asynchronous handlers run off the loop and report their results when they
// complete. Every call id produces exactly one result.
func (s *Session) handleToolCalls(calls []live.ToolCall) {
	if s.State() == StateListening {
		s.setState(StateProcessing)
	}

	s.mu.Lock()
	dispatcher := s.dispatcher
	baseContext := s.baseContext
	s.mu.Unlock()
	if dispatcher == nil {
		return
	}

	syncResults := []live.ToolResult{}
	for _, call := range calls {
		s.emit(events.NewToolCallStarted(call.ID, call.Name))

		if tool, ok := dispatcher.lookup(call.Name); ok && tool.async {
			go func(call live.ToolCall) {
				result, execErr := dispatcher.execute(baseContext, call)
				s.enqueue(func() { s.finishToolCall(result, execErr) })
			}(call)
			continue
		}

		result, execErr := dispatcher.execute(baseContext, call)
		s.emitToolOutcome(result, execErr)
		syncResults = append(syncResults, result)
	}

	s.sendToolResults(syncResults...)
}

func (s *Session) finishToolCall(result live.ToolResult, execErr error) {
	s.emitToolOutcome(result, execErr)
	s.sendToolResults(result)
}

func (s *Session) emitToolOutcome(result live.ToolResult, execErr error) {
	if execErr != nil {
		s.emit(events.NewToolCallFailed(result.ID, result.Name, execErr.Error()))
		return
	}
	s.emit(events.NewToolCallCompleted(result.ID, result.Name, result.Payload))
}

func (s *Session) sendToolResults(results ...live.ToolResult) {
	if len(results) == 0 {
		return
	}

	s.mu.Lock()
	liveSession := s.liveSession
	s.mu.Unlock()
	if liveSession == nil {
		return
	}

	if err := liveSession.SendToolResults(results...); err != nil {
		log.Println("Warning: failed to send tool results:", err)
	}
}

func (s *Session) handleTimerTick() {
	updated, finished := s.timers.Tick()
	for _, timer := range updated {
		s.emit(events.NewTimerUpdated(timer.ID, timer.Label, timer.RemainingSeconds))
	}
	for _, timer := range finished {
		s.emit(events.NewTimerFinished(timer.ID, timer.Label))
		s.notifier.Notify(fmt.Sprintf("Timer %q is finished!", timer.Label))
	}
}

// handleRemoteGone covers mid-session transport errors reported before the
// stream closes.
func (s *Session) handleRemoteGone(err error) {
	logger.Warn("live session error", "error", err)
	s.handleRemoteClosed(fmt.Errorf("%w: %v", ErrUnexpectedClose, err))
}

// handleRemoteClosed tears down all resources and returns the controller to
// StateConnecting. With auto-reconnect enabled, one retry is attempted after
// a short backoff; anything beyond that is the caller's policy.
func (s *Session) handleRemoteClosed(err error) {
	s.mu.Lock()
	alreadyDown := s.tornDown
	s.mu.Unlock()
	if alreadyDown {
		return
	}

	if err == nil {
		err = ErrUnexpectedClose
	}

	s.setState(StateErrored)
	s.teardownConn()

	reason := err.Error()
	s.emit(events.NewConnectionLost(reason))
	s.notifier.Notify("The sous chef is temporarily unavailable. Please try again in a moment.")
	s.setState(StateConnecting)

	s.mu.Lock()
	shouldRetry := s.autoReconnect && !s.retried
	s.retried = true
	delay := s.reconnectDelay
	baseContext := s.baseContext
	connectOptions := s.connectOptions
	s.mu.Unlock()

	if !shouldRetry {
		return
	}
	go func() {
		time.Sleep(delay)
		if s.State() != StateConnecting {
			return
		}
		s.mu.Lock()
		s.reconnecting = true
		s.mu.Unlock()
		err := s.Connect(baseContext, connectOptions...)
		s.mu.Lock()
		s.reconnecting = false
		s.mu.Unlock()
		if err != nil {
			log.Println("Warning: automatic reconnect failed:", err)
		}
	}()
}
