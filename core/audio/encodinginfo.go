package audio

import (
	"strconv"
	"time"
)

const (
	// CaptureSampleRate is the sample rate the remote session expects for
	// microphone audio.
	CaptureSampleRate = 16000
	// PlaybackSampleRate is the sample rate the remote session produces
	// synthesized speech at.
	PlaybackSampleRate = 24000

	DefaultFormat = "linear16"
)

// CaptureEncoding returns the encoding used for outbound microphone frames.
func CaptureEncoding() EncodingInfo {
	return EncodingInfo{SampleRate: CaptureSampleRate, Channels: 1, Format: encodingFormat(DefaultFormat)}
}

// PlaybackEncoding returns the encoding used for inbound speech frames.
func PlaybackEncoding() EncodingInfo {
	return EncodingInfo{SampleRate: PlaybackSampleRate, Channels: 1, Format: encodingFormat(DefaultFormat)}
}

type EncodingInfo struct {
	SampleRate int
	Channels   int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

// MimeType returns the media type tag used by the live transport for this
// encoding, e.g. "audio/pcm;rate=16000".
func (e EncodingInfo) MimeType() string {
	switch e.Format {
	case EncodingLinear16:
		return "audio/pcm;rate=" + strconv.Itoa(e.SampleRate)
	}
	return "application/octet-stream"
}

type encodingFormat string

func (e encodingFormat) Name() string { return string(e) }

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
	EncodingLinear16 encodingFormat = "linear16"
)

// Frame is a fixed block of PCM16 samples at a known rate and channel count.
// Frames are immutable once produced.
type Frame struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Duration returns the acoustic length of the frame.
func (f Frame) Duration() time.Duration {
	if f.SampleRate == 0 || f.Channels == 0 {
		return 0
	}
	frames := len(f.Samples) / f.Channels
	return time.Duration(float64(frames) / float64(f.SampleRate) * float64(time.Second))
}
