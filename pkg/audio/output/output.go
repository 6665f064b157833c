// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for audio playback backends
package output

import (
	"context"

	"github.com/vocalize-studio/vocalize-go/pkg/audio"
)

// Output represents an audio output device
type Output interface {
	// Open initializes the output device
	Open(sampleRate, channels int) error

	// Write plays a sample buffer (blocks until written)
	Write(buf *audio.SampleBuffer) error

	// Drain blocks until written audio has been played or ctx ends
	Drain(ctx context.Context) error

	// Close releases output resources
	Close() error
}

// applyVolume returns a copy of buf scaled by volume (0-100) and mute state
// with clipping protection
func applyVolume(buf *audio.SampleBuffer, volume int, muted bool) *audio.SampleBuffer {
	multiplier := getVolumeMultiplier(volume, muted)

	result := audio.NewSampleBuffer(buf.SampleRate, buf.NumChannels(), buf.FrameCount())
	for c := 0; c < buf.NumChannels(); c++ {
		src, dst := buf.Channel(c), result.Channel(c)
		for i, sample := range src {
			scaled := sample * float32(multiplier)

			if scaled > 1 {
				scaled = 1
			} else if scaled < -1 {
				scaled = -1
			}

			dst[i] = scaled
		}
	}

	return result
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}

// clampVolume keeps volume within 0-100
func clampVolume(volume int) int {
	if volume < 0 {
		return 0
	}
	if volume > 100 {
		return 100
	}
	return volume
}
