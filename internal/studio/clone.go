// ABOUTME: Cloned voices for the studio
// ABOUTME: Validates recorded samples and stores voice fingerprints for reuse
package studio

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vocalize-studio/vocalize-go/internal/store"
	"github.com/vocalize-studio/vocalize-go/internal/synth"
	"github.com/vocalize-studio/vocalize-go/pkg/audio"
	"github.com/vocalize-studio/vocalize-go/pkg/audio/decode"
)

// Clone is a saved voice fingerprint
type Clone struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Profile    string    `json:"profile"`
	Confidence float64   `json:"confidence,omitempty"`
	Samples    int       `json:"samples"`
	Duration   float64   `json:"duration"` // seconds of sample audio
	CreatedAt  time.Time `json:"created_at"`
}

// Clones returns saved clones in creation order
func (s *Studio) Clones(ctx context.Context) ([]Clone, error) {
	var clones []Clone
	if _, err := s.store.GetJSON(ctx, store.KeyClones, &clones); err != nil {
		return nil, err
	}
	return clones, nil
}

func (s *Studio) clone(ctx context.Context, id string) (Clone, error) {
	clones, err := s.Clones(ctx)
	if err != nil {
		return Clone{}, err
	}
	for _, c := range clones {
		if c.ID == id {
			return c, nil
		}
	}
	return Clone{}, fmt.Errorf("%w: %s", ErrUnknownVoice, id)
}

// AddClone validates samples and saves a clone. Without a profile the
// analyzer derives one from the samples.
func (s *Studio) AddClone(ctx context.Context, name, profile string, samples []synth.Sample) (Clone, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Clone{}, fmt.Errorf("%w: clone name is required", ErrInvalid)
	}
	if len(samples) == 0 {
		return Clone{}, fmt.Errorf("%w: at least one voice sample is required", ErrInvalid)
	}

	var total time.Duration
	for _, sample := range samples {
		d, err := sampleDuration(sample, s.Settings().SampleRate)
		if err != nil {
			return Clone{}, fmt.Errorf("%w: sample %s: %w", ErrInvalid, sample.FileName, err)
		}
		total += d
	}

	clone := Clone{
		ID:        "clone-" + uuid.New().String(),
		Name:      name,
		Profile:   strings.TrimSpace(profile),
		Samples:   len(samples),
		Duration:  total.Seconds(),
		CreatedAt: time.Now(),
	}

	if clone.Profile == "" {
		if s.analyzer == nil {
			return Clone{}, fmt.Errorf("%w: a voice profile is required when no analyzer is configured", ErrInvalid)
		}
		analysis, err := s.analyzer.AnalyzeVoice(ctx, samples)
		if err != nil {
			return Clone{}, fmt.Errorf("%w: voice analysis: %w", ErrSynthesis, err)
		}
		clone.Profile = analysis.Profile
		clone.Confidence = analysis.Confidence
	}

	s.libMu.Lock()
	defer s.libMu.Unlock()

	clones, err := s.Clones(ctx)
	if err != nil {
		return Clone{}, err
	}
	clones = append(clones, clone)
	if err := s.store.PutJSON(ctx, store.KeyClones, clones); err != nil {
		return Clone{}, err
	}

	log.Printf("Saved clone %s (%s) from %d samples, %.1fs", clone.Name, clone.ID, clone.Samples, clone.Duration)
	s.events.publish(Event{Type: EventLibraryUpdate, Payload: map[string]string{"clone": clone.ID}})
	return clone, nil
}

// RemoveClone deletes a saved clone
func (s *Studio) RemoveClone(ctx context.Context, id string) error {
	s.libMu.Lock()
	defer s.libMu.Unlock()

	clones, err := s.Clones(ctx)
	if err != nil {
		return err
	}
	kept := clones[:0]
	for _, c := range clones {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(clones) {
		return fmt.Errorf("clone %s: %w", id, ErrNotFound)
	}
	return s.store.PutJSON(ctx, store.KeyClones, kept)
}

// sampleDuration decodes a sample to prove it is usable audio
func sampleDuration(sample synth.Sample, defaultRate int) (time.Duration, error) {
	raw, err := audio.DecodeBase64(sample.Data)
	if err != nil {
		return 0, err
	}
	format, err := decode.FormatFromMIME(sample.MIMEType, defaultRate)
	if err != nil {
		return 0, err
	}
	dec, err := decode.New(format)
	if err != nil {
		return 0, err
	}
	defer dec.Close()

	buf, err := dec.Decode(raw)
	if err != nil {
		return 0, err
	}
	if buf.FrameCount() == 0 {
		return 0, audio.ErrEmptyAudio
	}
	return buf.Duration(), nil
}
