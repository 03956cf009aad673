package audio

import (
	"encoding/base64"
	"fmt"
	"math"
)

// DecodeError marks a malformed inbound audio payload. A single bad chunk is
// droppable without tearing the session down, so callers should treat this as
// non-fatal.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to decode audio chunk (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to decode audio chunk (%s)", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Quantize converts float samples in [-1, 1] to signed 16-bit integers.
// Out-of-range input is clamped before scaling.
func Quantize(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		out[i] = int16(math.Round(float64(s) * 32767))
	}
	return out
}

// Normalize converts signed 16-bit samples back to float32 in [-1, 1).
func Normalize(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32768.0
	}
	return out
}

// DownmixMono averages interleaved multi-channel samples into a mono block.
// Mono input is returned unchanged.
func DownmixMono(samples []float32, channels int) []float32 {
	if channels <= 1 {
		return samples
	}

	frames := len(samples) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		sum := float32(0)
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}

// EncodeChunk serializes a PCM16 frame into the transport-safe base64 payload
// used by the live session, little-endian sample order.
func EncodeChunk(frame Frame) string {
	raw := make([]byte, len(frame.Samples)*2)
	for i, s := range frame.Samples {
		raw[i*2] = byte(s)
		raw[i*2+1] = byte(uint16(s) >> 8)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

// DecodeChunk parses a transport payload back into PCM16 samples.
func DecodeChunk(payload string) ([]int16, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &DecodeError{Reason: "invalid base64", Err: err}
	}
	if len(raw)%2 != 0 {
		return nil, &DecodeError{Reason: "odd byte count"}
	}

	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(uint16(raw[i*2]) | uint16(raw[i*2+1])<<8)
	}
	return samples, nil
}
