package session

import (
	"context"
	"time"
)

// CaptureDevice abstracts a platform audio input. Implementations deliver
// fixed-size blocks of float samples in [-1, 1] from a hardware callback.
// The scheduling and accumulation logic never touches a platform API
// directly, so it can be exercised with synthetic sources.
type CaptureDevice interface {
	// Start acquires the device and begins delivering blocks. A refusal to
	// grant access is reported as an error.
	Start(ctx context.Context, onBlock func(samples []float32, channels int)) error
	// Stop releases the device. Must be safe to call twice.
	Stop() error
}

// PlaybackBuffer is one decoded block of synthesized speech, normalized to
// float32 at the playback sample rate.
type PlaybackBuffer struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the acoustic length of the buffer.
func (b PlaybackBuffer) Duration() time.Duration {
	if b.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}

// PlaybackSink abstracts a platform audio output that accepts buffers with
// explicit start times on a monotonic clock shared with Clock.
type PlaybackSink interface {
	// Schedule queues a buffer to begin playing exactly at startAt. onDone
	// is invoked once the buffer has finished playing (or was flushed).
	Schedule(buffer PlaybackBuffer, startAt time.Duration, onDone func()) error
	// Flush drops all scheduled and playing buffers, invoking their onDone
	// callbacks.
	Flush()
	// Close releases the output device. Must be safe to call twice.
	Close() error
}

// Clock is the monotonic timebase playback scheduling is pinned to.
type Clock interface {
	Now() time.Duration
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Duration

func (f ClockFunc) Now() time.Duration { return f() }

// Notifier is the fire-and-forget notification surface for timer-finished
// and connection-lost messages.
type Notifier interface {
	Notify(message string)
}

type noopNotifier struct{}

func (noopNotifier) Notify(string) {}
