package session

import (
	"context"
	"log"
	"sync"

	"github.com/souschef/voice-core/core/audio"
)

// OutboundPolicy selects what happens when the outbound frame channel is
// full.
type OutboundPolicy int

const (
	// DropOldest discards the oldest queued frame to make room. Keeps
	// latency bounded at the cost of losing the stalest audio.
	DropOldest OutboundPolicy = iota
	// BlockOnFull blocks the hardware callback until the channel drains.
	BlockOnFull
)

// outboundQueueSize bounds in-flight capture frames: 32 frames of 4096
// samples at 16 kHz is roughly eight seconds of audio.
const outboundQueueSize = 32

// capturePipeline turns hardware callback blocks into transport-ready
// encoded chunks: downmix to mono, quantize to PCM16, text-encode and queue
// for the sender goroutine.
type capturePipeline struct {
	encoding audio.EncodingInfo
	policy   OutboundPolicy

	out  chan string
	done chan struct{}

	closeOnce sync.Once
}

func newCapturePipeline(policy OutboundPolicy) *capturePipeline {
	return &capturePipeline{
		encoding: audio.CaptureEncoding(),
		policy:   policy,
		out:      make(chan string, outboundQueueSize),
		done:     make(chan struct{}),
	}
}

// PushBlock processes one hardware callback block. One encode per block, no
// further intra-pipeline buffering beyond the outbound queue.
func (p *capturePipeline) PushBlock(samples []float32, channels int) {
	mono := audio.DownmixMono(samples, channels)
	frame := audio.Frame{
		Samples:    audio.Quantize(mono),
		SampleRate: p.encoding.SampleRate,
		Channels:   1,
	}
	payload := audio.EncodeChunk(frame)

	if p.policy == BlockOnFull {
		select {
		case p.out <- payload:
		case <-p.done:
		}
		return
	}

	for {
		select {
		case <-p.done:
			return
		case p.out <- payload:
			return
		default:
		}

		select {
		case <-p.out:
			log.Println("Warning: outbound audio queue full, dropping oldest frame")
		default:
		}
	}
}

// Pump forwards queued chunks to send until the context ends or the pipeline
// closes. Frames are sent in capture order.
func (p *capturePipeline) Pump(ctx context.Context, send func(mimeType, payload string) error) {
	mimeType := p.encoding.MimeType()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case payload := <-p.out:
			if err := send(mimeType, payload); err != nil {
				log.Println("Warning: failed to send capture frame:", err)
			}
		}
	}
}

// Close stops accepting blocks and wakes the pump. Safe to call twice.
func (p *capturePipeline) Close() {
	p.closeOnce.Do(func() { close(p.done) })
}
