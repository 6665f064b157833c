// ABOUTME: Tests for WAV decoder
// ABOUTME: Tests reading encoder output back and rejecting invalid files
package decode_test

import (
	"errors"
	"testing"

	"github.com/vocalize-studio/vocalize-go/pkg/audio"
	"github.com/vocalize-studio/vocalize-go/pkg/audio/decode"
	"github.com/vocalize-studio/vocalize-go/pkg/audio/encode"
)

func TestDecodeWAV_RoundTrip(t *testing.T) {
	buf := audio.NewSampleBuffer(24000, 2, 4)
	left, right := buf.Channel(0), buf.Channel(1)
	copy(left, []float32{0, 0.5, -0.5, -1})
	copy(right, []float32{1, -0.25, 0.25, 0})

	decoded, err := decode.DecodeWAV(encode.EncodeWAV(buf))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if decoded.SampleRate != 24000 {
		t.Errorf("expected sample rate 24000, got %d", decoded.SampleRate)
	}
	if decoded.NumChannels() != 2 {
		t.Fatalf("expected 2 channels, got %d", decoded.NumChannels())
	}
	if decoded.FrameCount() != 4 {
		t.Fatalf("expected 4 frames, got %d", decoded.FrameCount())
	}

	// Positive samples lose at most one quantization step
	const step = 1.0 / 32768.0
	for c := 0; c < 2; c++ {
		for i, want := range buf.Channel(c) {
			got := decoded.Channel(c)[i]
			diff := float64(got - want)
			if diff < -step || diff > step {
				t.Errorf("channel %d frame %d: expected %v, got %v", c, i, want, got)
			}
		}
	}

	// Negative samples are exact
	if decoded.Channel(0)[3] != -1 {
		t.Errorf("expected exact -1, got %v", decoded.Channel(0)[3])
	}
}

func TestDecodeWAV_Invalid(t *testing.T) {
	buf, err := decode.DecodeWAV([]byte("RIFF....not really a wave file"))
	if err == nil {
		t.Fatal("expected error for invalid WAV, got nil")
	}
	if buf != nil {
		t.Error("expected nil buffer on error")
	}
	if !errors.Is(err, audio.ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestWAVDecoderViaMIME(t *testing.T) {
	format, err := decode.FormatFromMIME("audio/wav", 24000)
	if err != nil {
		t.Fatalf("mime lookup failed: %v", err)
	}

	decoder, err := decode.New(format)
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}
	defer decoder.Close()

	src := audio.NewSampleBuffer(16000, 1, 1600)
	decoded, err := decoder.Decode(encode.EncodeWAV(src))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if decoded.Duration().Milliseconds() != 100 {
		t.Errorf("expected 100ms of audio, got %v", decoded.Duration())
	}
}
