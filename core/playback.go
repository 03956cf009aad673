package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/souschef/voice-core/core/audio"
)

// playbackScheduler turns inbound encoded chunks into gapless, correctly
// timed acoustic output. Each new buffer's start is pinned to the end of the
// previously scheduled one, or to "now" if the queue had drained, so
// playback never gaps or overlaps regardless of network arrival timing.
type playbackScheduler struct {
	clock Clock
	sink  PlaybackSink

	mu            sync.Mutex
	nextStartTime time.Duration
	active        map[string]struct{}

	// onDrained fires when the active set becomes empty, outside the lock.
	onDrained func()
}

func newPlaybackScheduler(clock Clock, sink PlaybackSink, onDrained func()) *playbackScheduler {
	return &playbackScheduler{
		clock:     clock,
		sink:      sink,
		active:    map[string]struct{}{},
		onDrained: onDrained,
	}
}

// Enqueue decodes one transport chunk and schedules it back-to-back with the
// previously scheduled audio. Returns an *audio.DecodeError for malformed
// payloads; the caller drops the chunk and the cursor is left untouched so
// the next well-formed chunk still lines up.
func (s *playbackScheduler) Enqueue(payload string) error {
	samples, err := audio.DecodeChunk(payload)
	if err != nil {
		return err
	}

	buffer := PlaybackBuffer{
		Samples:    audio.Normalize(samples),
		SampleRate: audio.PlaybackSampleRate,
	}

	s.mu.Lock()
	startAt := s.clock.Now()
	if s.nextStartTime > startAt {
		startAt = s.nextStartTime
	}
	s.nextStartTime = startAt + buffer.Duration()

	handle := uuid.NewString()
	s.active[handle] = struct{}{}
	s.mu.Unlock()

	if err := s.sink.Schedule(buffer, startAt, func() { s.bufferDone(handle) }); err != nil {
		s.bufferDone(handle)
		return err
	}
	return nil
}

func (s *playbackScheduler) bufferDone(handle string) {
	s.mu.Lock()
	if _, ok := s.active[handle]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.active, handle)
	drained := len(s.active) == 0
	s.mu.Unlock()

	if drained && s.onDrained != nil {
		s.onDrained()
	}
}

// ActiveCount reports how many buffers are scheduled or playing.
func (s *playbackScheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// Abort drops every scheduled buffer and resets the start-time cursor. Used
// on close and on remote interruption.
func (s *playbackScheduler) Abort() {
	s.mu.Lock()
	s.active = map[string]struct{}{}
	s.nextStartTime = 0
	s.mu.Unlock()

	s.sink.Flush()
}
