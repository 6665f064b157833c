// ABOUTME: WAV audio decoder
// ABOUTME: Reads RIFF/WAVE PCM files into normalized sample buffers via go-audio
package decode

import (
	"bytes"
	"fmt"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/vocalize-studio/vocalize-go/pkg/audio"
)

// WAVDecoder decodes WAV files
type WAVDecoder struct{}

// NewWAV creates a new WAV decoder
func NewWAV(format audio.Format) (Decoder, error) {
	if format.Codec != "wav" {
		return nil, fmt.Errorf("invalid codec for WAV decoder: %s", format.Codec)
	}

	return &WAVDecoder{}, nil
}

// Decode converts a complete WAV file to a sample buffer
func (d *WAVDecoder) Decode(data []byte) (*audio.SampleBuffer, error) {
	return DecodeWAV(data)
}

// Close releases decoder resources
func (d *WAVDecoder) Close() error {
	return nil
}

// DecodeWAV reads a 16-bit or 24-bit integer PCM WAV file. Sample values are
// normalized by the full negative range of their bit depth, so 16-bit data
// decodes exactly as DecodePCM would before fading.
func DecodeWAV(data []byte) (*audio.SampleBuffer, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid WAV file", audio.ErrInvalidFormat)
	}

	if decoder.WavAudioFormat != 1 {
		return nil, fmt.Errorf("%w: unsupported WAV audio format: %d", audio.ErrInvalidFormat, decoder.WavAudioFormat)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth != 16 && bitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", bitDepth)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav decode error: %w", err)
	}
	return fromIntBuffer(pcm, bitDepth)
}

// fromIntBuffer deinterleaves go-audio integer samples into a sample buffer
func fromIntBuffer(pcm *goaudio.IntBuffer, bitDepth int) (*audio.SampleBuffer, error) {
	if pcm.Format == nil {
		return nil, fmt.Errorf("%w: WAV file has no format chunk", audio.ErrInvalidFormat)
	}
	channels := pcm.Format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("%w: WAV file declares %d channels", audio.ErrInvalidFormat, channels)
	}

	scale := float64(int(1) << (bitDepth - 1))
	frameCount := len(pcm.Data) / channels
	buf := audio.NewSampleBuffer(pcm.Format.SampleRate, channels, frameCount)
	for c := 0; c < channels; c++ {
		out := buf.Channel(c)
		for i := 0; i < frameCount; i++ {
			out[i] = float32(float64(pcm.Data[i*channels+c]) / scale)
		}
	}

	return buf, nil
}
