//go:build cgo

package miniaudio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gen2brain/malgo"

	session "github.com/souschef/voice-core/core"
	"github.com/souschef/voice-core/core/audio"
)

// Playback is the malgo speaker device. Buffers carry explicit start times
// on the device's own sample clock, so scheduling is immune to callback
// jitter: a buffer begins on the exact output frame its start time maps to.
type Playback struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig

	mu     sync.Mutex
	cursor int64 // frames rendered since start
	queue  []*queuedBuffer
}

type queuedBuffer struct {
	samples    []float32
	startFrame int64
	offset     int
	onDone     func()
}

func (p *Playback) init(audioContext *malgo.AllocatedContext) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	sampleRate := uint32(audio.PlaybackSampleRate)
	channels := 1
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	p.config = malgo.DefaultDeviceConfig(malgo.Playback)
	p.config.SampleRate = sampleRate
	p.config.Playback.Format = format
	p.config.Playback.Channels = uint32(channels)
	p.config.Alsa.NoMMap = 1
	p.config.PeriodSizeInFrames = sampleRate / 10 // ~100ms of audio
	p.config.Periods = 4

	p.audioContext = audioContext

	var err error
	if p.device, err = malgo.InitDevice(
		p.audioContext.Context,
		p.config,
		malgo.DeviceCallbacks{Data: p.render(bytesPerFrame)},
	); err != nil {
		return err
	}

	return nil
}

func (p *Playback) start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.device == nil {
		return fmt.Errorf("device not initialized")
	}

	if err := p.device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}
	return nil
}

// Now returns the device sample clock: the acoustic time of the next frame
// to be rendered.
func (p *Playback) Now() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return framesToDuration(p.cursor)
}

// Schedule queues a buffer to begin on the output frame startAt maps to.
// Buffers scheduled in the past begin immediately, skipping the missed
// frames so later buffers stay aligned.
func (p *Playback) Schedule(buffer session.PlaybackBuffer, startAt time.Duration, onDone func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.device == nil {
		return fmt.Errorf("device not initialized")
	}

	p.queue = append(p.queue, &queuedBuffer{
		samples:    buffer.Samples,
		startFrame: durationToFrames(startAt),
		onDone:     onDone,
	})
	return nil
}

// Flush drops every queued buffer, invoking their completion callbacks.
func (p *Playback) Flush() {
	p.mu.Lock()
	dropped := p.queue
	p.queue = nil
	p.mu.Unlock()

	for _, buffer := range dropped {
		if buffer.onDone != nil {
			buffer.onDone()
		}
	}
}

// Close stops and releases the device. Safe to call twice.
func (p *Playback) Close() error {
	p.Flush()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.device == nil {
		return nil
	}

	if p.device.IsStarted() {
		if err := p.device.Stop(); err != nil {
			return fmt.Errorf("failed to stop playback device: %w", err)
		}
	}
	p.device.Uninit()
	p.device = nil
	return nil
}

func (p *Playback) render(bytesPerFrame int) malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		for i := range pOutput {
			pOutput[i] = 0
		}

		p.mu.Lock()
		start := p.cursor
		end := start + int64(frameCount)
		p.cursor = end

		var finished []func()
		remaining := p.queue[:0]
		for _, buffer := range p.queue {
			position := buffer.startFrame + int64(buffer.offset)
			if position >= end {
				remaining = append(remaining, buffer)
				continue
			}
			if position < start {
				// Late buffer, drop the frames the clock already passed.
				buffer.offset += int(start - position)
				position = start
			}

			for frame := position; frame < end && buffer.offset < len(buffer.samples); frame++ {
				writeSampleLE(pOutput, int(frame-start)*bytesPerFrame, buffer.samples[buffer.offset])
				buffer.offset++
			}

			if buffer.offset >= len(buffer.samples) {
				if buffer.onDone != nil {
					finished = append(finished, buffer.onDone)
				}
				continue
			}
			remaining = append(remaining, buffer)
		}
		p.queue = remaining
		p.mu.Unlock()

		if len(finished) > 0 {
			go func() {
				for _, onDone := range finished {
					onDone()
				}
			}()
		}
	}
}

func writeSampleLE(pOutput []byte, at int, sample float32) {
	value := float64(sample)
	if value > 1 {
		value = 1
	} else if value < -1 {
		value = -1
	}
	binary.LittleEndian.PutUint16(pOutput[at:], uint16(int16(math.Round(value*32767))))
}

func framesToDuration(frames int64) time.Duration {
	return time.Duration(frames) * time.Second / time.Duration(audio.PlaybackSampleRate)
}

func durationToFrames(d time.Duration) int64 {
	return int64(d) * int64(audio.PlaybackSampleRate) / int64(time.Second)
}
