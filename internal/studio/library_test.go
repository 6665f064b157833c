// ABOUTME: Tests for the studio voice library
// ABOUTME: Tests presets, ratings, favorites, gallery order and clones
package studio

import (
	"context"
	"errors"
	"testing"

	"github.com/vocalize-studio/vocalize-go/internal/synth"
	"github.com/vocalize-studio/vocalize-go/internal/voice"
	"github.com/vocalize-studio/vocalize-go/pkg/audio"
	"github.com/vocalize-studio/vocalize-go/pkg/audio/encode"
)

type fakeAnalyzer struct {
	analysis synth.Analysis
	calls    int
}

func (f *fakeAnalyzer) AnalyzeVoice(ctx context.Context, samples []synth.Sample) (synth.Analysis, error) {
	f.calls++
	return f.analysis, nil
}

// wavSample builds a one second mono WAV sample
func wavSample(t *testing.T) synth.Sample {
	t.Helper()
	buf := audio.NewSampleBuffer(16000, 1, 16000)
	for i := range buf.Channel(0) {
		buf.Channel(0)[i] = 0.1
	}
	return synth.Sample{
		Data:     audio.EncodeBase64(encode.EncodeWAV(buf)),
		MIMEType: "audio/wav",
		FileName: "take1.wav",
	}
}

func TestPresets(t *testing.T) {
	s, _ := newTestStudio(t, &fakeSynth{}, nil)
	ctx := context.Background()

	if _, err := s.SavePreset(ctx, "  ", voice.DefaultSettings()); err == nil {
		t.Error("expected error for blank name")
	}
	bad := voice.DefaultSettings()
	bad.Volume = 2
	if _, err := s.SavePreset(ctx, "Loud", bad); err == nil {
		t.Error("expected error for invalid settings")
	}

	wise := voice.DefaultSettings()
	wise.Emotion = voice.Wise
	first, err := s.SavePreset(ctx, "Wise", wise)
	if err != nil {
		t.Fatalf("SavePreset failed: %v", err)
	}
	if _, err := s.SavePreset(ctx, "Default", voice.DefaultSettings()); err != nil {
		t.Fatalf("SavePreset failed: %v", err)
	}

	presets, _ := s.Presets(ctx)
	if len(presets) != 2 || presets[0].Name != "Wise" || presets[0].Settings.Emotion != voice.Wise {
		t.Fatalf("unexpected presets %+v", presets)
	}

	if err := s.DeletePreset(ctx, first.ID); err != nil {
		t.Fatalf("DeletePreset failed: %v", err)
	}
	if err := s.DeletePreset(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	presets, _ = s.Presets(ctx)
	if len(presets) != 1 || presets[0].Name != "Default" {
		t.Errorf("unexpected presets after delete %+v", presets)
	}
}

func TestRate(t *testing.T) {
	s, _ := newTestStudio(t, &fakeSynth{}, nil)
	ctx := context.Background()

	for _, rating := range []int{0, 6} {
		if err := s.Rate(ctx, "Kore", rating); err == nil {
			t.Errorf("expected error for rating %d", rating)
		}
	}
	if err := s.Rate(ctx, "Kore", 4); err != nil {
		t.Fatalf("Rate failed: %v", err)
	}
	if err := s.Rate(ctx, "Kore", 5); err != nil {
		t.Fatalf("Rate failed: %v", err)
	}

	ratings, _ := s.Ratings(ctx)
	if ratings["Kore"] != 5 {
		t.Errorf("expected latest rating, got %v", ratings)
	}
}

func TestToggleFavorite(t *testing.T) {
	s, _ := newTestStudio(t, &fakeSynth{}, nil)
	ctx := context.Background()

	on, err := s.ToggleFavorite(ctx, "Puck")
	if err != nil || !on {
		t.Fatalf("expected favorite on, got %v %v", on, err)
	}
	on, err = s.ToggleFavorite(ctx, "Puck")
	if err != nil || on {
		t.Fatalf("expected favorite off, got %v %v", on, err)
	}
	favorites, _ := s.Favorites(ctx)
	if len(favorites) != 0 {
		t.Errorf("expected no favorites, got %v", favorites)
	}
}

func TestVoicesOrder(t *testing.T) {
	s, _ := newTestStudio(t, &fakeSynth{}, nil)
	ctx := context.Background()

	s.Rate(ctx, "Charon", 5)
	s.Rate(ctx, "Puck", 3)
	s.countUsage(ctx, []string{"Fenrir", "Fenrir", "Leda"})
	s.ToggleFavorite(ctx, "Vega")
	clone, err := s.AddClone(ctx, "My Voice", "bright alto", []synth.Sample{wavSample(t)})
	if err != nil {
		t.Fatalf("AddClone failed: %v", err)
	}

	tests := []struct {
		order string
		first []string
	}{
		{SortDefault, []string{"Vega", clone.ID, "Aoede"}},
		{SortHighestRated, []string{"Vega", "Charon", "Puck"}},
		{SortMostUsed, []string{"Vega", "Fenrir", "Leda"}},
		{SortNameAsc, []string{"Vega", "Achird", "Alnilam"}},
		{SortNameDesc, []string{"Vega", "Zephyr", "Vindemiatrix"}},
	}

	for _, tt := range tests {
		t.Run(tt.order, func(t *testing.T) {
			voices, err := s.Voices(ctx, tt.order)
			if err != nil {
				t.Fatalf("Voices failed: %v", err)
			}
			if len(voices) != len(voice.Names)+1 {
				t.Fatalf("expected %d voices, got %d", len(voice.Names)+1, len(voices))
			}
			for i, id := range tt.first {
				if voices[i].ID != id {
					t.Errorf("position %d: expected %s, got %s", i, id, voices[i].ID)
				}
			}
		})
	}

	if _, err := s.Voices(ctx, "loudest"); err == nil {
		t.Error("expected error for unknown order")
	}
}

func TestAddClone(t *testing.T) {
	fs := &fakeSynth{payload: pcmPayload(1, 2, 3)}
	s, _ := newTestStudio(t, fs, nil)
	ctx := context.Background()

	clone, err := s.AddClone(ctx, "Narrator", "warm baritone", []synth.Sample{wavSample(t), wavSample(t)})
	if err != nil {
		t.Fatalf("AddClone failed: %v", err)
	}
	if clone.Samples != 2 || clone.Duration != 2 {
		t.Errorf("expected 2 samples totalling 2s, got %+v", clone)
	}

	r, err := s.Render(ctx, Request{Text: "Hello", Voice: clone.ID})
	if err != nil {
		t.Fatalf("Render with clone failed: %v", err)
	}
	req := fs.last()
	if req.Mode() != synth.ModeClone || req.CloneProfile != "warm baritone" {
		t.Errorf("expected clone request, got %+v", req)
	}
	if r.Voice != "Narrator" {
		t.Errorf("expected clone name in render, got %s", r.Voice)
	}

	if _, err := s.Preview(ctx, clone.ID); err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if got := fs.last().Text; got != "Initializing Narrator vector profile. Studio synthesis active." {
		t.Errorf("unexpected preview text %q", got)
	}

	if err := s.RemoveClone(ctx, clone.ID); err != nil {
		t.Fatalf("RemoveClone failed: %v", err)
	}
	if _, err := s.Render(ctx, Request{Text: "Hello", Voice: clone.ID}); !errors.Is(err, ErrUnknownVoice) {
		t.Errorf("expected ErrUnknownVoice after removal, got %v", err)
	}
}

func TestAddCloneSamples(t *testing.T) {
	s, _ := newTestStudio(t, &fakeSynth{}, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		sample synth.Sample
	}{
		{"bad base64", synth.Sample{Data: "%%%", MIMEType: "audio/wav"}},
		{"unsupported type", synth.Sample{Data: "AAAA", MIMEType: "video/mp4"}},
		{"not a wav", synth.Sample{Data: "AAAA", MIMEType: "audio/wav"}},
		{"empty pcm", synth.Sample{Data: "", MIMEType: "audio/L16;rate=16000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.AddClone(ctx, "Bad", "profile", []synth.Sample{tt.sample}); err == nil {
				t.Error("expected error")
			}
		})
	}

	pcm := synth.Sample{Data: pcmPayload(make([]int16, 8000)...), MIMEType: "audio/L16;rate=16000"}
	clone, err := s.AddClone(ctx, "Raw", "profile", []synth.Sample{pcm})
	if err != nil {
		t.Fatalf("AddClone with PCM failed: %v", err)
	}
	if clone.Duration != 0.5 {
		t.Errorf("expected 0.5s, got %v", clone.Duration)
	}

	if _, err := s.AddClone(ctx, "None", "profile", nil); err == nil {
		t.Error("expected error without samples")
	}
}

func TestAddCloneAnalyzer(t *testing.T) {
	s, _ := newTestStudio(t, &fakeSynth{}, nil)
	ctx := context.Background()

	if _, err := s.AddClone(ctx, "Anon", "", []synth.Sample{wavSample(t)}); err == nil {
		t.Error("expected error without profile or analyzer")
	}

	analyzer := &fakeAnalyzer{analysis: synth.Analysis{Profile: "crisp tenor", Confidence: 91}}
	s.analyzer = analyzer

	clone, err := s.AddClone(ctx, "Anon", "", []synth.Sample{wavSample(t)})
	if err != nil {
		t.Fatalf("AddClone failed: %v", err)
	}
	if analyzer.calls != 1 || clone.Profile != "crisp tenor" || clone.Confidence != 91 {
		t.Errorf("unexpected clone %+v", clone)
	}
}
