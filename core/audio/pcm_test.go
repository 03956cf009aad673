package audio

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"
)

func TestQuantizeClampsAndRounds(t *testing.T) {
	got := Quantize([]float32{0, 1, -1, 2, -2, 0.5})

	if got[0] != 0 {
		t.Fatalf("expected silence to quantize to 0, got %d", got[0])
	}
	if got[1] != 32767 {
		t.Fatalf("expected full scale to quantize to 32767, got %d", got[1])
	}
	if got[2] != -32767 {
		t.Fatalf("expected negative full scale to quantize to -32767, got %d", got[2])
	}
	if got[3] != 32767 || got[4] != -32767 {
		t.Fatalf("expected out-of-range samples to clamp, got %d and %d", got[3], got[4])
	}
	if got[5] != 16384 {
		t.Fatalf("expected 0.5 to round to 16384, got %d", got[5])
	}
}

func TestNormalizeDividesBy32768(t *testing.T) {
	got := Normalize([]int16{0, -32768, 16384})

	if got[0] != 0 {
		t.Fatalf("expected 0, got %f", got[0])
	}
	if got[1] != -1 {
		t.Fatalf("expected -1, got %f", got[1])
	}
	if got[2] != 0.5 {
		t.Fatalf("expected 0.5, got %f", got[2])
	}
}

func TestDownmixMonoAveragesChannels(t *testing.T) {
	got := DownmixMono([]float32{0.2, 0.4, -0.5, 0.5}, 2)

	if len(got) != 2 {
		t.Fatalf("expected 2 mono samples, got %d", len(got))
	}
	if diff := got[0] - 0.3; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("expected first sample to average to 0.3, got %f", got[0])
	}
	if got[1] != 0 {
		t.Fatalf("expected second sample to cancel to 0, got %f", got[1])
	}
}

func TestEncodeDecodeChunkRoundTrip(t *testing.T) {
	frame := Frame{Samples: []int16{0, 1, -1, 32767, -32768}, SampleRate: CaptureSampleRate, Channels: 1}

	decoded, err := DecodeChunk(EncodeChunk(frame))
	if err != nil {
		t.Fatalf("expected chunk to decode, got %v", err)
	}
	if len(decoded) != len(frame.Samples) {
		t.Fatalf("expected %d samples, got %d", len(frame.Samples), len(decoded))
	}
	for i, s := range frame.Samples {
		if decoded[i] != s {
			t.Fatalf("expected sample %d to be %d, got %d", i, s, decoded[i])
		}
	}
}

func TestDecodeChunkRejectsMalformedPayloads(t *testing.T) {
	var decodeErr *DecodeError

	if _, err := DecodeChunk("not base64!!"); !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError for invalid base64, got %v", err)
	}
	if _, err := DecodeChunk(base64.StdEncoding.EncodeToString([]byte{0x01})); !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError for odd byte count, got %v", err)
	}
}

func TestFrameDuration(t *testing.T) {
	frame := Frame{Samples: make([]int16, PlaybackSampleRate/2), SampleRate: PlaybackSampleRate, Channels: 1}

	if got := frame.Duration(); got != 500*time.Millisecond {
		t.Fatalf("expected half-second frame, got %v", got)
	}
}
