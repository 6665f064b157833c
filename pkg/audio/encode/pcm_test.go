// ABOUTME: Unit tests for PCM encoder
// ABOUTME: Tests quantization, interleaving and encoder construction
package encode

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/vocalize-studio/vocalize-go/pkg/audio"
)

func TestNewPCM(t *testing.T) {
	tests := []struct {
		name        string
		format      audio.Format
		wantErr     bool
		errContains string
	}{
		{
			name: "valid 16-bit PCM",
			format: audio.Format{
				Codec:      "pcm",
				SampleRate: 24000,
				Channels:   1,
				BitDepth:   16,
			},
			wantErr: false,
		},
		{
			name: "invalid codec",
			format: audio.Format{
				Codec:      "opus",
				SampleRate: 24000,
				Channels:   1,
				BitDepth:   16,
			},
			wantErr:     true,
			errContains: "invalid codec",
		},
		{
			name: "unsupported bit depth",
			format: audio.Format{
				Codec:      "pcm",
				SampleRate: 24000,
				Channels:   1,
				BitDepth:   24,
			},
			wantErr:     true,
			errContains: "unsupported bit depth",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoder, err := NewPCM(tt.format)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NewPCM() expected error, got nil")
				} else if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("NewPCM() error = %v, want error containing %v", err, tt.errContains)
				}
			} else {
				if err != nil {
					t.Errorf("NewPCM() unexpected error = %v", err)
				}
				if encoder == nil {
					t.Errorf("NewPCM() returned nil encoder")
				}
			}
		})
	}
}

func TestPCMEncoder_Encode(t *testing.T) {
	encoder, err := NewPCM(audio.Format{Codec: "pcm", BitDepth: 16})
	if err != nil {
		t.Fatalf("NewPCM() failed: %v", err)
	}
	defer encoder.Close()

	buf := audio.NewSampleBuffer(24000, 1, 7)
	copy(buf.Channel(0), []float32{0, 1, -1, 0.5, -0.5, 2, -2})

	output, err := encoder.Encode(buf)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	// Check output size: 2 bytes per sample for 16-bit
	if len(output) != 14 {
		t.Fatalf("Encode() output size = %d, want 14", len(output))
	}

	expected := []int16{0, 32767, -32768, 16383, -16384, 32767, -32768}
	for i, want := range expected {
		actual := int16(binary.LittleEndian.Uint16(output[i*2:]))
		if actual != want {
			t.Errorf("Sample %d: got %d, want %d", i, actual, want)
		}
	}
}

func TestEncodePCM_Interleaves(t *testing.T) {
	buf := audio.NewSampleBuffer(16000, 3, 2)
	copy(buf.Channel(0), []float32{0.5, -0.5})
	copy(buf.Channel(1), []float32{-1, 1})
	copy(buf.Channel(2), []float32{0, 0.25})

	output := EncodePCM(buf)

	// frame 0: ch0, ch1, ch2; frame 1: ch0, ch1, ch2
	expected := []int16{16383, -32768, 0, -16384, 32767, 8191}
	if len(output) != len(expected)*2 {
		t.Fatalf("expected %d bytes, got %d", len(expected)*2, len(output))
	}
	for i, want := range expected {
		actual := int16(binary.LittleEndian.Uint16(output[i*2:]))
		if actual != want {
			t.Errorf("Sample %d: got %d, want %d", i, actual, want)
		}
	}
}

func TestEncodePCM_Empty(t *testing.T) {
	output := EncodePCM(audio.NewSampleBuffer(24000, 2, 0))
	if len(output) != 0 {
		t.Errorf("expected empty output, got %d bytes", len(output))
	}
}

func TestPCMEncoder_Close(t *testing.T) {
	encoder, err := NewPCM(audio.Format{Codec: "pcm", BitDepth: 16})
	if err != nil {
		t.Fatalf("NewPCM() failed: %v", err)
	}

	err = encoder.Close()
	if err != nil {
		t.Errorf("Close() unexpected error = %v", err)
	}
}
