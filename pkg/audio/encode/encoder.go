// ABOUTME: Encoder interface definition
// ABOUTME: Common interface and codec dispatch for all audio encoders
package encode

import (
	"fmt"

	"github.com/vocalize-studio/vocalize-go/pkg/audio"
)

// Encoder encodes sample buffers to various formats
type Encoder interface {
	// Encode converts a sample buffer to encoded audio data
	Encode(buf *audio.SampleBuffer) ([]byte, error)

	// Close releases encoder resources
	Close() error
}

// New creates an encoder for the codec named in format
func New(format audio.Format) (Encoder, error) {
	switch format.Codec {
	case "wav":
		return NewWAV(format)
	case "pcm":
		return NewPCM(format)
	default:
		return nil, fmt.Errorf("%w: unsupported codec: %s", audio.ErrInvalidFormat, format.Codec)
	}
}

// interleave quantizes buf frame by frame in channel order into dst, which
// must hold FrameCount*NumChannels*2 bytes
func interleave(dst []byte, buf *audio.SampleBuffer) {
	numChannels := buf.NumChannels()
	pos := 0
	for i := 0; i < buf.FrameCount(); i++ {
		for c := 0; c < numChannels; c++ {
			sample := audio.SampleToInt16(float64(buf.Channel(c)[i]))
			dst[pos] = byte(sample)
			dst[pos+1] = byte(uint16(sample) >> 8)
			pos += audio.BytesPerSample
		}
	}
}
