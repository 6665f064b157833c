// ABOUTME: PCM audio decoder
// ABOUTME: Decodes 16-bit little-endian PCM to faded, normalized sample buffers
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/vocalize-studio/vocalize-go/pkg/audio"
)

// PCMDecoder decodes raw 16-bit PCM at a fixed rate and channel count
type PCMDecoder struct {
	sampleRate int
	channels   int
}

// NewPCM creates a new PCM decoder
func NewPCM(format audio.Format) (Decoder, error) {
	if format.Codec != "pcm" {
		return nil, fmt.Errorf("invalid codec for PCM decoder: %s", format.Codec)
	}

	if format.BitDepth != 0 && format.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16)", format.BitDepth)
	}

	if format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", audio.ErrInvalidFormat, format.SampleRate)
	}

	return &PCMDecoder{
		sampleRate: format.SampleRate,
		channels:   format.Channels,
	}, nil
}

// Decode converts PCM bytes to a sample buffer
func (d *PCMDecoder) Decode(data []byte) (*audio.SampleBuffer, error) {
	return DecodePCM(data, d.sampleRate, d.channels)
}

// Close releases resources
func (d *PCMDecoder) Close() error {
	return nil
}

// DecodePCM converts interleaved 16-bit little-endian PCM into a sample
// buffer and applies a linear 50ms fade at both ends to suppress clicks.
//
// A trailing odd byte and any incomplete final frame are dropped. A channel
// count below 1 is treated as mono. Input too short for a single frame
// yields an empty buffer, not an error.
func DecodePCM(data []byte, sampleRate, channels int) (*audio.SampleBuffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", audio.ErrInvalidFormat, sampleRate)
	}
	if channels < 1 {
		channels = 1
	}

	usable := len(data) - len(data)%audio.BytesPerSample
	frameCount := usable / audio.BytesPerSample / channels
	buf := audio.NewSampleBuffer(sampleRate, channels, frameCount)

	fadeSamples := audio.FadeSamples(sampleRate)

	for c := 0; c < channels; c++ {
		out := buf.Channel(c)
		for i := 0; i < frameCount; i++ {
			pos := (i*channels + c) * audio.BytesPerSample
			sample := audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(data[pos:])))
			out[i] = float32(sample * fadeGain(i, frameCount, fadeSamples))
		}
	}

	return buf, nil
}

// fadeGain returns the ramp multiplier for frame i. The fade-in window is
// checked first, so on buffers shorter than two windows the fade-out only
// applies to frames past the fade-in.
func fadeGain(i, frameCount, fadeSamples int) float64 {
	if i < fadeSamples {
		return float64(i) / float64(fadeSamples)
	} else if i > frameCount-fadeSamples {
		return float64(frameCount-i) / float64(fadeSamples)
	}
	return 1
}

// int16Buffer normalizes interleaved int16 samples without any fade shaping
func int16Buffer(samples []int16, sampleRate, channels int) *audio.SampleBuffer {
	frameCount := len(samples) / channels
	buf := audio.NewSampleBuffer(sampleRate, channels, frameCount)
	for c := 0; c < channels; c++ {
		out := buf.Channel(c)
		for i := 0; i < frameCount; i++ {
			out[i] = float32(audio.SampleFromInt16(samples[i*channels+c]))
		}
	}
	return buf
}
