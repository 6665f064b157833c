// ABOUTME: Studio application layer
// ABOUTME: Owns render state, studio settings and the voice library behind the server and CLI
package studio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/vocalize-studio/vocalize-go/internal/export"
	"github.com/vocalize-studio/vocalize-go/internal/store"
	"github.com/vocalize-studio/vocalize-go/internal/synth"
	"github.com/vocalize-studio/vocalize-go/pkg/audio/output"
)

// Errors returned by studio operations
var (
	ErrInvalid         = errors.New("invalid request")
	ErrSynthesis       = errors.New("synthesis failed")
	ErrNoRender        = errors.New("nothing has been rendered yet")
	ErrNoOutput        = errors.New("no audio output configured")
	ErrUnknownVoice    = errors.New("unknown voice")
	ErrScriptTooLong   = errors.New("script exceeds studio buffer")
	ErrTooManySpeakers = errors.New("too many speakers")
	ErrNotFound        = store.ErrNotFound
)

// Supported export formats
const (
	FormatWAV       = "wav"
	QualityLossless = "lossless"
)

// Settings are the studio-wide preferences
type Settings struct {
	AutoPlay      bool   `json:"autoPlay" yaml:"auto_play"`
	SampleRate    int    `json:"sampleRate" yaml:"sample_rate"`
	ExportFormat  string `json:"exportFormat" yaml:"export_format"`
	ExportQuality string `json:"exportQuality" yaml:"export_quality"`
}

// DefaultSettings returns the settings a fresh studio starts with
func DefaultSettings() Settings {
	return Settings{
		AutoPlay:      true,
		SampleRate:    24000,
		ExportFormat:  FormatWAV,
		ExportQuality: QualityLossless,
	}
}

// Validate checks the settings can be honored
func (s Settings) Validate() error {
	if s.SampleRate != 16000 && s.SampleRate != 24000 {
		return fmt.Errorf("unsupported sample rate %d (supported: 16000, 24000)", s.SampleRate)
	}
	if s.ExportFormat != FormatWAV {
		return fmt.Errorf("unsupported export format %q (supported: wav)", s.ExportFormat)
	}
	if s.ExportQuality != "" && s.ExportQuality != QualityLossless {
		return fmt.Errorf("unsupported export quality %q for wav", s.ExportQuality)
	}
	return nil
}

// Analyzer derives a voice fingerprint from recorded samples
type Analyzer interface {
	AnalyzeVoice(ctx context.Context, samples []synth.Sample) (synth.Analysis, error)
}

// Config wires a studio to its collaborators. Output, Analyzer and
// Assistant are optional.
type Config struct {
	Synth     synth.Synthesizer
	Store     *store.Store
	Exporter  *export.Exporter
	Output    output.Output
	Analyzer  Analyzer
	Assistant Assistant

	// Defaults apply when the store holds no saved settings
	Defaults Settings
}

// Studio renders speech and keeps the library of presets, ratings and clones
type Studio struct {
	synth     synth.Synthesizer
	store     *store.Store
	exporter  *export.Exporter
	output    output.Output
	analyzer  Analyzer
	assistant Assistant
	events    *broadcaster

	mu       sync.Mutex
	settings Settings
	current  *Render
	playing  *Render

	playMu sync.Mutex
	// libMu serializes read-modify-write of library keys
	libMu sync.Mutex
}

// New creates a studio and loads saved settings from the store
func New(ctx context.Context, cfg Config) (*Studio, error) {
	if cfg.Synth == nil {
		return nil, fmt.Errorf("studio requires a synthesizer")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("studio requires a store")
	}
	if cfg.Exporter == nil {
		return nil, fmt.Errorf("studio requires an exporter")
	}

	settings := cfg.Defaults
	if settings == (Settings{}) {
		settings = DefaultSettings()
	}

	var saved Settings
	ok, err := cfg.Store.GetJSON(ctx, store.KeySettings, &saved)
	if err != nil {
		log.Printf("Ignoring unreadable saved settings: %v", err)
	} else if ok {
		if err := saved.Validate(); err != nil {
			log.Printf("Ignoring invalid saved settings: %v", err)
		} else {
			settings = saved
		}
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid studio settings: %w", err)
	}

	return &Studio{
		synth:     cfg.Synth,
		store:     cfg.Store,
		exporter:  cfg.Exporter,
		output:    cfg.Output,
		analyzer:  cfg.Analyzer,
		assistant: cfg.Assistant,
		events:    newBroadcaster(),
		settings:  settings,
	}, nil
}

// Settings returns the current studio settings
func (s *Studio) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings validates and persists new studio settings
func (s *Studio) UpdateSettings(ctx context.Context, settings Settings) error {
	if settings.ExportQuality == "" {
		settings.ExportQuality = QualityLossless
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := s.store.PutJSON(ctx, store.KeySettings, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	log.Printf("Studio settings updated: %dHz, autoplay=%v", settings.SampleRate, settings.AutoPlay)
	s.events.publish(Event{Type: EventSettingsUpdate, Payload: settings})
	return nil
}

// Persistent reports whether studio state survives a restart
func (s *Studio) Persistent() bool {
	return s.store.Persistent()
}

// HasOutput reports whether renders can be played
func (s *Studio) HasOutput() bool {
	return s.output != nil
}

// Subscribe returns a feed of studio events and a function to stop it
func (s *Studio) Subscribe() (<-chan Event, func()) {
	return s.events.subscribe()
}

// Close stops playback resources and ends every subscription
func (s *Studio) Close() error {
	s.events.close()
	if s.output != nil {
		return s.output.Close()
	}
	return nil
}
