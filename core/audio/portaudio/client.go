//go:build cgo

// Package portaudio provides an alternative microphone backend built on
// PortAudio, for hosts where miniaudio's capture path misbehaves. Playback
// still goes through the default backend.
package portaudio

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/souschef/voice-core/core/audio"
)

const captureBlockFrames = 4096

// Client is a capture-only PortAudio device delivering fixed-size float
// blocks at the capture sample rate.
type Client struct {
	mu      sync.Mutex
	stream  *portaudio.Stream
	in      []float32
	stopped chan struct{}
}

func NewClient() (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	in := make([]float32, captureBlockFrames)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(audio.CaptureSampleRate), captureBlockFrames, in)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open PortAudio stream: %w", err)
	}

	return &Client{stream: stream, in: in}, nil
}

// Start begins the blocking read loop on its own goroutine and delivers one
// block per buffer-full of frames.
func (c *Client) Start(ctx context.Context, onBlock func(samples []float32, channels int)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream == nil {
		return fmt.Errorf("stream closed")
	}
	if c.stopped != nil {
		return nil
	}

	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start PortAudio stream: %w", err)
	}

	stopped := make(chan struct{})
	c.stopped = stopped

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-stopped:
				return
			default:
			}

			if err := c.stream.Read(); err != nil {
				log.Println("Warning: failed to read from PortAudio stream:", err)
				continue
			}

			block := make([]float32, len(c.in))
			copy(block, c.in)
			onBlock(block, 1)
		}
	}()

	return nil
}

// Stop ends the read loop and stops the stream. Safe to call twice.
func (c *Client) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped == nil {
		return nil
	}
	close(c.stopped)
	c.stopped = nil

	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop PortAudio stream: %w", err)
	}
	return nil
}

// Close releases the stream and the PortAudio runtime.
func (c *Client) Close() {
	_ = c.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream != nil {
		c.stream.Close()
		c.stream = nil
		portaudio.Terminate()
	}
}
