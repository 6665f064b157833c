// ABOUTME: Builds studio collaborators from configuration
// ABOUTME: Selects the synthesis engine and settings defaults shared by both commands
package config

import (
	"fmt"

	"github.com/vocalize-studio/vocalize-go/internal/studio"
	"github.com/vocalize-studio/vocalize-go/internal/synth"
)

// Engine is the set of studio collaborators a synthesis engine provides
type Engine struct {
	Synth     synth.Synthesizer
	Analyzer  studio.Analyzer
	Assistant studio.Assistant
}

// Engine builds the configured synthesizer wrapped in retries. Analyzer and
// Assistant are nil for the tone engine, which has no text model.
func (cfg Config) Engine() (Engine, error) {
	switch cfg.Synth.Engine {
	case EngineTone:
		return Engine{Synth: synth.NewTone(cfg.Studio.SampleRate)}, nil

	case EngineGemini:
		g, err := synth.NewGemini(synth.GeminiConfig{
			APIKey:       cfg.Synth.Gemini.APIKey,
			BaseURL:      cfg.Synth.Gemini.BaseURL,
			SpeechModel:  cfg.Synth.Gemini.SpeechModel,
			TextModel:    cfg.Synth.Gemini.TextModel,
			PlannerModel: cfg.Synth.Gemini.PlannerModel,
			Timeout:      cfg.Synth.Gemini.Timeout,
		})
		if err != nil {
			return Engine{}, fmt.Errorf("failed to create gemini synthesizer: %w", err)
		}
		return Engine{
			Synth:     synth.NewRetry(g, cfg.Synth.Retries+1, cfg.Synth.Backoff),
			Analyzer:  g,
			Assistant: g,
		}, nil

	default:
		return Engine{}, fmt.Errorf("unknown synthesis engine %q", cfg.Synth.Engine)
	}
}

// StudioDefaults returns the studio settings used until the user saves their own
func (cfg Config) StudioDefaults() studio.Settings {
	settings := studio.DefaultSettings()
	settings.SampleRate = cfg.Studio.SampleRate
	settings.AutoPlay = cfg.Studio.AutoPlay
	return settings
}
