// ABOUTME: Tests for PCM decoder
// ABOUTME: Tests normalization, frame counting and click-suppression fade
package decode

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/vocalize-studio/vocalize-go/pkg/audio"
)

// pcmBytes packs int16 samples as little-endian bytes
func pcmBytes(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// constantPCM returns frameCount frames of value on every channel
func constantPCM(value int16, frameCount, channels int) []byte {
	samples := make([]int16, frameCount*channels)
	for i := range samples {
		samples[i] = value
	}
	return pcmBytes(samples...)
}

func TestNewPCM(t *testing.T) {
	format := audio.Format{
		Codec:      "pcm",
		SampleRate: 24000,
		Channels:   1,
		BitDepth:   16,
	}

	decoder, err := NewPCM(format)
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	if decoder == nil {
		t.Fatal("expected decoder to be created")
	}
}

func TestNewPCM_InvalidCodec(t *testing.T) {
	format := audio.Format{
		Codec:      "opus",
		SampleRate: 24000,
		Channels:   1,
		BitDepth:   16,
	}

	decoder, err := NewPCM(format)
	if err == nil {
		t.Fatal("expected error for invalid codec, got nil")
	}

	if decoder != nil {
		t.Fatal("expected decoder to be nil for invalid codec")
	}

	expectedError := "invalid codec for PCM decoder: opus"
	if err.Error() != expectedError {
		t.Errorf("expected error %q, got %q", expectedError, err.Error())
	}
}

func TestNewPCM_UnsupportedBitDepth(t *testing.T) {
	format := audio.Format{
		Codec:      "pcm",
		SampleRate: 24000,
		Channels:   1,
		BitDepth:   24,
	}

	decoder, err := NewPCM(format)
	if err == nil {
		t.Fatal("expected error for unsupported bit depth, got nil")
	}

	if decoder != nil {
		t.Fatal("expected decoder to be nil for unsupported bit depth")
	}

	expectedError := "unsupported bit depth: 24 (supported: 16)"
	if err.Error() != expectedError {
		t.Errorf("expected error %q, got %q", expectedError, err.Error())
	}
}

func TestNewPCM_InvalidSampleRate(t *testing.T) {
	_, err := NewPCM(audio.Format{Codec: "pcm", SampleRate: 0, BitDepth: 16})
	if !errors.Is(err, audio.ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestDecodePCM_EmptyInput(t *testing.T) {
	buf, err := DecodePCM([]byte{}, 24000, 1)
	if err != nil {
		t.Fatalf("decode failed with empty input: %v", err)
	}

	if buf.FrameCount() != 0 {
		t.Errorf("expected 0 frames from empty input, got %d", buf.FrameCount())
	}
	if buf.NumChannels() != 1 {
		t.Errorf("expected 1 channel, got %d", buf.NumChannels())
	}
	if buf.SampleRate != 24000 {
		t.Errorf("expected sample rate 24000, got %d", buf.SampleRate)
	}
}

func TestDecodePCM_FrameCount(t *testing.T) {
	tests := []struct {
		name     string
		bytes    int
		channels int
		expected int
	}{
		{"single byte", 1, 1, 0},
		{"one sample", 2, 1, 1},
		{"odd length mono", 7, 1, 3},
		{"even length mono", 8, 1, 4},
		{"stereo", 8, 2, 2},
		{"stereo incomplete frame", 10, 2, 2},
		{"stereo odd", 11, 2, 2},
		{"three channels", 12, 3, 2},
		{"zero channels treated as mono", 6, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := DecodePCM(make([]byte, tt.bytes), 24000, tt.channels)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if buf.FrameCount() != tt.expected {
				t.Errorf("expected %d frames, got %d", tt.expected, buf.FrameCount())
			}
			for c := 0; c < buf.NumChannels(); c++ {
				if len(buf.Channel(c)) != tt.expected {
					t.Errorf("channel %d has %d samples, want %d", c, len(buf.Channel(c)), tt.expected)
				}
			}
		})
	}
}

func TestDecodePCM_InvalidSampleRate(t *testing.T) {
	buf, err := DecodePCM(pcmBytes(1, 2, 3), 0, 1)
	if err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if buf != nil {
		t.Error("expected nil buffer on error")
	}
	if !errors.Is(err, audio.ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestDecodePCM_FadeBoundaries(t *testing.T) {
	const sampleRate = 24000
	const fade = 1200
	const frames = 4800
	const raw = int16(16384)

	buf, err := DecodePCM(constantPCM(raw, frames, 1), sampleRate, 1)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	samples := buf.Channel(0)
	unfaded := float64(raw) / 32768.0

	if samples[0] != 0 {
		t.Errorf("frame 0 should be silent, got %v", samples[0])
	}

	if got := float64(samples[fade]); math.Abs(got-unfaded) > 1e-6 {
		t.Errorf("frame %d should be unfaded %v, got %v", fade, unfaded, got)
	}

	// Halfway through the fade-in
	if got := float64(samples[fade/2]); math.Abs(got-unfaded*0.5) > 1e-6 {
		t.Errorf("frame %d expected %v, got %v", fade/2, unfaded*0.5, got)
	}

	// Last fade-in frame is just below full amplitude
	if got := float64(samples[fade-1]); math.Abs(got-unfaded*float64(fade-1)/fade) > 1e-6 {
		t.Errorf("frame %d expected %v, got %v", fade-1, unfaded*float64(fade-1)/fade, got)
	}

	// frameCount - fade is the last unfaded frame
	if got := float64(samples[frames-fade]); math.Abs(got-unfaded) > 1e-6 {
		t.Errorf("frame %d should be unfaded, got %v", frames-fade, got)
	}

	// Fade-out gain is (frameCount - i) / fade
	i := frames - fade + 1
	want := unfaded * float64(frames-i) / fade
	if got := float64(samples[i]); math.Abs(got-want) > 1e-6 {
		t.Errorf("frame %d expected %v, got %v", i, want, got)
	}

	last := float64(samples[frames-1])
	if want := unfaded / fade; math.Abs(last-want) > 1e-6 {
		t.Errorf("last frame expected %v, got %v", want, last)
	}
}

func TestDecodePCM_Normalization(t *testing.T) {
	// 48000 frames at 24kHz leaves the middle untouched by the fade
	const frames = 48000
	const mid = frames / 2

	tests := []struct {
		name     string
		raw      int16
		expected float64
	}{
		{"min", -32768, -1.0},
		{"max", 32767, 32767.0 / 32768.0},
		{"zero", 0, 0},
		{"half", 16384, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := DecodePCM(constantPCM(tt.raw, frames, 1), 24000, 1)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			got := buf.Channel(0)[mid]
			if got != float32(tt.expected) {
				t.Errorf("expected %v, got %v", float32(tt.expected), got)
			}
			if got >= 1.0 {
				t.Errorf("sample reached %v, must stay below 1.0", got)
			}
		})
	}
}

func TestDecodePCM_ChannelsFadeIndependently(t *testing.T) {
	const frames = 4000
	samples := make([]int16, frames*2)
	for i := 0; i < frames; i++ {
		samples[i*2] = 8192    // left
		samples[i*2+1] = -8192 // right
	}

	buf, err := DecodePCM(pcmBytes(samples...), 16000, 2)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if buf.NumChannels() != 2 {
		t.Fatalf("expected 2 channels, got %d", buf.NumChannels())
	}

	left, right := buf.Channel(0), buf.Channel(1)
	for i := 0; i < frames; i++ {
		if left[i] != -right[i] {
			t.Fatalf("frame %d: channels faded differently (%v vs %v)", i, left[i], right[i])
		}
	}

	// 16kHz fade window is 800 frames
	if left[800] != 0.25 {
		t.Errorf("expected unfaded left sample 0.25 at frame 800, got %v", left[800])
	}
	if left[0] != 0 || right[0] != 0 {
		t.Errorf("expected silent first frame, got %v / %v", left[0], right[0])
	}
}

func TestDecodePCM_ShortBufferNeverFullAmplitude(t *testing.T) {
	// 2000 frames is shorter than two 1200-frame fade windows
	const frames = 2000
	buf, err := DecodePCM(constantPCM(32767, frames, 1), 24000, 1)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	full := float32(32767.0 / 32768.0)
	for i, s := range buf.Channel(0) {
		if s >= full {
			t.Fatalf("frame %d reached full amplitude %v", i, s)
		}
	}

	// Frames after the fade-in fall through to the fade-out branch
	i := 1500
	want := float32(32767.0 / 32768.0 * float64(frames-i) / 1200)
	if got := buf.Channel(0)[i]; math.Abs(float64(got-want)) > 1e-6 {
		t.Errorf("frame %d expected %v, got %v", i, want, got)
	}
}

func TestDecodePCM_FourSampleScenario(t *testing.T) {
	buf, err := DecodePCM(pcmBytes(0, 16384, -16384, 0), 24000, 1)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if buf.FrameCount() != 4 {
		t.Fatalf("expected 4 frames, got %d", buf.FrameCount())
	}

	// Every frame is inside the fade-in window: gain is i/1200
	expected := []float64{0, 0.5 / 1200, -0.5 * 2 / 1200, 0}
	for i, want := range expected {
		if got := float64(buf.Channel(0)[i]); math.Abs(got-want) > 1e-7 {
			t.Errorf("frame %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestPCMDecoderMatchesDecodePCM(t *testing.T) {
	decoder, err := NewPCM(audio.Format{Codec: "pcm", SampleRate: 16000, Channels: 1, BitDepth: 16})
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}
	defer decoder.Close()

	input := constantPCM(1000, 2000, 1)
	got, err := decoder.Decode(input)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	want, _ := DecodePCM(input, 16000, 1)

	if got.FrameCount() != want.FrameCount() {
		t.Fatalf("frame count mismatch: %d vs %d", got.FrameCount(), want.FrameCount())
	}
	for i := range want.Channel(0) {
		if got.Channel(0)[i] != want.Channel(0)[i] {
			t.Fatalf("frame %d mismatch: %v vs %v", i, got.Channel(0)[i], want.Channel(0)[i])
		}
	}
}
