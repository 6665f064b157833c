// ABOUTME: Audio type definitions
// ABOUTME: Defines audio formats, normalized sample buffers and codec errors
package audio

import (
	"errors"
	"math"
	"time"
)

const (
	// 16-bit PCM scale constants. Decoding divides by Int16Scale; encoding
	// multiplies negative samples by Int16Scale and positive ones by MaxInt16.
	Int16Scale = 32768.0
	MaxInt16   = 32767.0

	// BytesPerSample is the width of one 16-bit PCM sample
	BytesPerSample = 2

	// FadeDuration is the click-suppression ramp applied at both buffer edges
	FadeDuration = 50 * time.Millisecond

	// MIMETypeWAV is the content type of encoded WAV blobs
	MIMETypeWAV = "audio/wav"
)

var (
	// ErrDecode reports a malformed base64 payload
	ErrDecode = errors.New("malformed audio payload")

	// ErrEmptyAudio reports that synthesis produced no audio payload
	ErrEmptyAudio = errors.New("synthesis returned no audio")

	// ErrInvalidFormat reports an unusable sample rate, channel count or codec
	ErrInvalidFormat = errors.New("invalid audio format")
)

// Format describes audio stream format
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// SampleBuffer holds decoded audio as normalized float samples, one slice per
// channel. Every channel has the same number of frames. A buffer is not
// modified after it is returned by a decoder.
type SampleBuffer struct {
	SampleRate int
	channels   [][]float32
}

// NewSampleBuffer creates a buffer with channelCount channels of frameCount
// zeroed samples each
func NewSampleBuffer(sampleRate, channelCount, frameCount int) *SampleBuffer {
	if channelCount < 1 {
		channelCount = 1
	}
	if frameCount < 0 {
		frameCount = 0
	}

	channels := make([][]float32, channelCount)
	for c := range channels {
		channels[c] = make([]float32, frameCount)
	}

	return &SampleBuffer{
		SampleRate: sampleRate,
		channels:   channels,
	}
}

// NumChannels returns the channel count
func (b *SampleBuffer) NumChannels() int {
	return len(b.channels)
}

// FrameCount returns the number of samples in each channel
func (b *SampleBuffer) FrameCount() int {
	if len(b.channels) == 0 {
		return 0
	}
	return len(b.channels[0])
}

// Channel returns the samples of channel c. The slice is shared with the
// buffer and must be treated as read-only by callers.
func (b *SampleBuffer) Channel(c int) []float32 {
	return b.channels[c]
}

// Duration returns the playback length of the buffer
func (b *SampleBuffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.FrameCount()) * time.Second / time.Duration(b.SampleRate)
}

// Format returns the 16-bit PCM format describing this buffer
func (b *SampleBuffer) Format() Format {
	return Format{
		Codec:      "pcm",
		SampleRate: b.SampleRate,
		Channels:   b.NumChannels(),
		BitDepth:   16,
	}
}

// Release drops the sample storage of a superseded buffer. The channel count
// is kept so the buffer still reports a consistent, empty shape.
func (b *SampleBuffer) Release() {
	for c := range b.channels {
		b.channels[c] = nil
	}
}

// FadeSamples returns the length in frames of the click-suppression ramp at
// the given sample rate
func FadeSamples(sampleRate int) int {
	return sampleRate * int(FadeDuration/time.Millisecond) / 1000
}

// SampleFromInt16 normalizes a 16-bit sample to [-1.0, 1.0)
func SampleFromInt16(sample int16) float64 {
	return float64(sample) / Int16Scale
}

// SampleToInt16 clamps a normalized sample to [-1, 1] and quantizes it with
// the asymmetric 16-bit scale, truncating toward zero
func SampleToInt16(sample float64) int16 {
	if math.IsNaN(sample) {
		return 0
	}
	if sample > 1 {
		sample = 1
	} else if sample < -1 {
		sample = -1
	}

	if sample < 0 {
		return int16(sample * Int16Scale)
	}
	return int16(sample * MaxInt16)
}
