//go:build cgo

// Package miniaudio provides the default hardware audio backend, built on
// malgo. It exposes a 16 kHz float capture device and a 24 kHz playback sink
// whose sample counter doubles as the monotonic playback clock.
package miniaudio

import (
	"fmt"
	"log"

	"github.com/gen2brain/malgo"
)

type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext

	capture  *Capture
	playback *Playback
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) {},
	)
	if err != nil {
		log.Fatalf("malgo InitContext failed: %v", err)
	}

	client := Client{
		audioContext: audioCtx,
		capture:      &Capture{},
		playback:     &Playback{},
	}

	if err := client.playback.init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}
	if err := client.playback.start(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}

	if err := client.capture.init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize capture device: %w", err)
	}

	return &client, nil
}

// Capture returns the microphone side of the backend.
func (c *Client) Capture() *Capture { return c.capture }

// Playback returns the speaker side of the backend.
func (c *Client) Playback() *Playback { return c.playback }

func (c *Client) Close() {
	_ = c.capture.uninit()
	_ = c.playback.Close()
	_ = c.audioContext.Uninit()
	c.audioContext.Free()
}
