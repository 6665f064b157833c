// ABOUTME: PCM audio encoder
// ABOUTME: Encodes sample buffers to headerless 16-bit little-endian PCM
package encode

import (
	"fmt"

	"github.com/vocalize-studio/vocalize-go/pkg/audio"
)

// PCMEncoder encodes raw PCM audio
type PCMEncoder struct{}

// NewPCM creates a new PCM encoder
func NewPCM(format audio.Format) (Encoder, error) {
	if format.Codec != "pcm" {
		return nil, fmt.Errorf("invalid codec for PCM encoder: %s", format.Codec)
	}

	if format.BitDepth != 0 && format.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16)", format.BitDepth)
	}

	return &PCMEncoder{}, nil
}

// Encode converts a sample buffer to interleaved PCM bytes
func (e *PCMEncoder) Encode(buf *audio.SampleBuffer) ([]byte, error) {
	return EncodePCM(buf), nil
}

// Close releases resources
func (e *PCMEncoder) Close() error {
	return nil
}

// EncodePCM quantizes buf to interleaved 16-bit little-endian PCM
func EncodePCM(buf *audio.SampleBuffer) []byte {
	output := make([]byte, buf.FrameCount()*buf.NumChannels()*audio.BytesPerSample)
	interleave(output, buf)
	return output
}
