// ABOUTME: Tests for the offline tone synthesizer
// ABOUTME: Tests payload length, pitch and empty text handling
package synth

import (
	"context"
	"errors"
	"testing"

	"github.com/vocalize-studio/vocalize-go/internal/voice"
	"github.com/vocalize-studio/vocalize-go/pkg/audio"
	"github.com/vocalize-studio/vocalize-go/pkg/audio/decode"
)

func TestToneLength(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		rate   float64
		frames int
	}{
		{"short text clamps to minimum", "Hi", 1, 24000 / 4},
		{"sixty ms per rune", "Hello world!", 1, 12 * 24000 * 60 / 1000},
		{"double rate halves", "Hello world!", 2, 6 * 24000 * 60 / 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := voice.DefaultSettings()
			settings.Rate = tt.rate

			payload, err := NewTone(24000).Synthesize(context.Background(), Request{Text: tt.text, Settings: settings})
			if err != nil {
				t.Fatalf("Synthesize failed: %v", err)
			}
			raw, err := audio.DecodeBase64(payload)
			if err != nil {
				t.Fatalf("DecodeBase64 failed: %v", err)
			}
			if got := len(raw) / audio.BytesPerSample; got != tt.frames {
				t.Errorf("expected %d frames, got %d", tt.frames, got)
			}
		})
	}
}

func TestToneDecodes(t *testing.T) {
	payload, err := NewTone(16000).Synthesize(context.Background(), Request{Text: "Testing the tone", Settings: voice.DefaultSettings()})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	raw, _ := audio.DecodeBase64(payload)

	buf, err := decode.DecodePCM(raw, 16000, 1)
	if err != nil {
		t.Fatalf("DecodePCM failed: %v", err)
	}

	var peak float32
	for _, s := range buf.Channel(0) {
		peak = max(peak, s, -s)
	}
	if peak < 0.25 || peak > 0.31 {
		t.Errorf("expected peak near 0.3, got %v", peak)
	}
}

func TestToneDialogue(t *testing.T) {
	payload, err := NewTone(24000).Synthesize(context.Background(), Request{
		Speakers: testSpeakers(),
		Dialogue: []voice.DialogueLine{{SpeakerID: "a", Text: "Hello"}, {SpeakerID: "b", Text: "there"}},
	})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if payload == "" {
		t.Error("expected audio")
	}
}

func TestToneErrors(t *testing.T) {
	_, err := NewTone(24000).Synthesize(context.Background(), Request{Text: "   ", Settings: voice.DefaultSettings()})
	if !errors.Is(err, audio.ErrEmptyAudio) {
		t.Errorf("expected ErrEmptyAudio, got %v", err)
	}

	_, err = NewTone(0).Synthesize(context.Background(), Request{Text: "hi", Settings: voice.DefaultSettings()})
	if !errors.Is(err, audio.ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewTone(24000).Synthesize(ctx, Request{Text: "hi"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
