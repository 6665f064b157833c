// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes complete MP3 files to normalized stereo sample buffers
package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/vocalize-studio/vocalize-go/pkg/audio"
)

// mp3 decoder output is always 16-bit stereo
const mp3Channels = 2

// MP3Decoder decodes MP3 audio
type MP3Decoder struct{}

// NewMP3 creates a new MP3 decoder
func NewMP3(format audio.Format) (Decoder, error) {
	if format.Codec != "mp3" {
		return nil, fmt.Errorf("invalid codec for MP3 decoder: %s", format.Codec)
	}

	return &MP3Decoder{}, nil
}

// Decode converts a complete MP3 file to a sample buffer
func (d *MP3Decoder) Decode(data []byte) (*audio.SampleBuffer, error) {
	return DecodeMP3(data)
}

// Close releases decoder resources
func (d *MP3Decoder) Close() error {
	return nil
}

// DecodeMP3 decodes a complete MP3 file. No fade is applied: imported
// recordings are kept as recorded.
func DecodeMP3(data []byte) (*audio.SampleBuffer, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	// Read decoded PCM data (int16 as bytes)
	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	if len(pcm) == 0 {
		return nil, fmt.Errorf("mp3 stream contains no audio frames")
	}

	numSamples := len(pcm) / audio.BytesPerSample
	numSamples -= numSamples % mp3Channels
	samples := make([]int16, numSamples)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}

	return int16Buffer(samples, decoder.SampleRate(), mp3Channels), nil
}
