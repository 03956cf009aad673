package session

import (
	"context"
	"testing"
	"time"

	"github.com/souschef/voice-core/core/audio"
)

func captureBlock(marker int16, samples int) []float32 {
	block := make([]float32, samples)
	block[0] = float32(marker) / 32768.0
	return block
}

func TestCapturePipelineEncodesBlocks(t *testing.T) {
	p := newCapturePipeline(DropOldest)
	defer p.Close()

	p.PushBlock([]float32{0.5, -0.5, 1.0, -1.0}, 1)

	payload := <-p.out
	samples, err := audio.DecodeChunk(payload)
	if err != nil {
		t.Fatalf("failed to decode queued payload: %v", err)
	}
	expected := []int16{16384, -16384, 32767, -32767}
	if len(samples) != len(expected) {
		t.Fatalf("expected %d samples, got %d", len(expected), len(samples))
	}
	for i, sample := range samples {
		if sample != expected[i] {
			t.Errorf("sample %d: expected %d, got %d", i, expected[i], sample)
		}
	}
}

func TestCapturePipelineDownmixesStereo(t *testing.T) {
	p := newCapturePipeline(DropOldest)
	defer p.Close()

	p.PushBlock([]float32{1.0, 0.0, -1.0, 0.0}, 2)

	samples, err := audio.DecodeChunk(<-p.out)
	if err != nil {
		t.Fatalf("failed to decode queued payload: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 mono samples, got %d", len(samples))
	}
	if samples[0] != 16384 || samples[1] != -16384 {
		t.Errorf("expected averaged channels, got %v", samples)
	}
}

func TestCapturePipelineDropsOldestWhenFull(t *testing.T) {
	p := newCapturePipeline(DropOldest)
	defer p.Close()

	for marker := int16(0); marker <= int16(outboundQueueSize); marker++ {
		p.PushBlock(captureBlock(marker, 4), 1)
	}

	if len(p.out) != outboundQueueSize {
		t.Fatalf("expected a full queue of %d, got %d", outboundQueueSize, len(p.out))
	}

	samples, err := audio.DecodeChunk(<-p.out)
	if err != nil {
		t.Fatalf("failed to decode queued payload: %v", err)
	}
	if samples[0] != 1 {
		t.Errorf("expected the oldest frame dropped, head marker 1, got %d", samples[0])
	}
}

func TestCapturePipelinePumpForwardsInOrder(t *testing.T) {
	p := newCapturePipeline(DropOldest)
	defer p.Close()

	p.PushBlock(captureBlock(1, 4), 1)
	p.PushBlock(captureBlock(2, 4), 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sent := make(chan string, 4)
	go p.Pump(ctx, func(mimeType, payload string) error {
		if mimeType != audio.CaptureEncoding().MimeType() {
			t.Errorf("unexpected mime type %q", mimeType)
		}
		sent <- payload
		return nil
	})

	markers := []int16{}
	for len(markers) < 2 {
		select {
		case payload := <-sent:
			samples, err := audio.DecodeChunk(payload)
			if err != nil {
				t.Fatalf("failed to decode forwarded payload: %v", err)
			}
			markers = append(markers, samples[0])
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for forwarded frames")
		}
	}
	if markers[0] != 1 || markers[1] != 2 {
		t.Errorf("expected capture order preserved, got %v", markers)
	}
}

func TestCapturePipelineCloseIsIdempotent(t *testing.T) {
	p := newCapturePipeline(BlockOnFull)
	p.Close()
	p.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i <= outboundQueueSize; i++ {
			p.PushBlock(captureBlock(0, 4), 1)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("push blocked after close")
	}
}
