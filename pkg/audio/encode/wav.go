// ABOUTME: WAV audio encoder
// ABOUTME: Encodes sample buffers to canonical 16-bit RIFF/WAVE files
package encode

import (
	"encoding/binary"
	"fmt"

	"github.com/vocalize-studio/vocalize-go/pkg/audio"
)

const (
	// HeaderSize is the size of the canonical WAV header in bytes
	HeaderSize = 44

	// FormatPCM is the WAVE audio format code for uncompressed PCM
	FormatPCM = 1

	bitsPerSample = 16
	fmtChunkSize  = 16
)

// WAVEncoder encodes WAV files
type WAVEncoder struct{}

// NewWAV creates a new WAV encoder
func NewWAV(format audio.Format) (Encoder, error) {
	if format.Codec != "wav" {
		return nil, fmt.Errorf("invalid codec for WAV encoder: %s", format.Codec)
	}

	if format.BitDepth != 0 && format.BitDepth != bitsPerSample {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16)", format.BitDepth)
	}

	return &WAVEncoder{}, nil
}

// Encode converts a sample buffer to a WAV file
func (e *WAVEncoder) Encode(buf *audio.SampleBuffer) ([]byte, error) {
	return EncodeWAV(buf), nil
}

// Close releases resources
func (e *WAVEncoder) Close() error {
	return nil
}

// EncodeWAV writes buf as a 16-bit PCM WAV file: a 44-byte header followed
// by interleaved little-endian samples
func EncodeWAV(buf *audio.SampleBuffer) []byte {
	numChannels := buf.NumChannels()
	dataSize := buf.FrameCount() * numChannels * audio.BytesPerSample
	totalLength := HeaderSize + dataSize

	output := make([]byte, totalLength)
	le := binary.LittleEndian

	// RIFF header
	copy(output[0:4], "RIFF")
	le.PutUint32(output[4:8], uint32(totalLength-8))
	copy(output[8:12], "WAVE")

	// fmt subchunk
	copy(output[12:16], "fmt ")
	le.PutUint32(output[16:20], fmtChunkSize)
	le.PutUint16(output[20:22], FormatPCM)
	le.PutUint16(output[22:24], uint16(numChannels))
	le.PutUint32(output[24:28], uint32(buf.SampleRate))
	le.PutUint32(output[28:32], uint32(buf.SampleRate*audio.BytesPerSample*numChannels))
	le.PutUint16(output[32:34], uint16(numChannels*audio.BytesPerSample))
	le.PutUint16(output[34:36], bitsPerSample)

	// data subchunk
	copy(output[36:40], "data")
	le.PutUint32(output[40:44], uint32(totalLength-HeaderSize))

	interleave(output[HeaderSize:], buf)

	return output
}
