// ABOUTME: Render pipeline for the studio
// ABOUTME: Turns synthesized PCM into faded buffers, exported WAV files and history
package studio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vocalize-studio/vocalize-go/internal/store"
	"github.com/vocalize-studio/vocalize-go/internal/synth"
	"github.com/vocalize-studio/vocalize-go/internal/voice"
	"github.com/vocalize-studio/vocalize-go/pkg/audio"
	"github.com/vocalize-studio/vocalize-go/pkg/audio/decode"
	"github.com/vocalize-studio/vocalize-go/pkg/audio/encode"
)

const (
	// WordLimit caps the words in one script
	WordLimit = 2000

	// MaxSpeakers caps the speakers in one dialogue
	MaxSpeakers = 10

	wordsPerMinute   = 140
	historyTextLimit = 30
	multiVoiceName   = "Studio"
)

// Request asks the studio for a render. Voice may be a studio voice or a
// clone ID; nil Settings use the defaults.
type Request struct {
	Text     string               `json:"text,omitempty"`
	Voice    string               `json:"voice,omitempty"`
	Settings *voice.Settings      `json:"settings,omitempty"`
	Speakers []voice.Speaker      `json:"speakers,omitempty"`
	Dialogue []voice.DialogueLine `json:"dialogue,omitempty"`
}

// Render is one finished render
type Render struct {
	ID        string
	CreatedAt time.Time
	Mode      synth.Mode
	Text      string
	Voice     string
	Preview   bool

	// Buffer is released once a newer render replaces this one and playback
	// has finished. WAV and the summary fields stay valid.
	Buffer     *audio.SampleBuffer
	WAV        []byte
	// Source is the synthesizer's PCM before the edge fade, trimmed to whole
	// samples. Studios rendering on behalf of another decode it themselves.
	Source     []byte
	Path       string
	SampleRate int
	Duration   time.Duration
}

// PCM returns the faded 16-bit samples carried by the WAV file
func (r *Render) PCM() []byte {
	return r.WAV[encode.HeaderSize:]
}

// Info summarizes the render for clients
func (r *Render) Info() RenderInfo {
	return RenderInfo{
		ID:         r.ID,
		Mode:       string(r.Mode),
		Voice:      r.Voice,
		Text:       r.Text,
		SampleRate: r.SampleRate,
		Duration:   r.Duration.Seconds(),
		Path:       r.Path,
		Preview:    r.Preview,
	}
}

// Stats describes the size of a script
type Stats struct {
	Words     int  `json:"words"`
	Seconds   int  `json:"seconds"`
	OverLimit bool `json:"over_limit"`
}

// ScriptStats counts the words of a request and estimates its spoken length
func ScriptStats(req Request) Stats {
	text := req.Text
	rate := 1.0
	if req.Settings != nil && req.Settings.Rate > 0 {
		rate = req.Settings.Rate
	}
	if len(req.Dialogue) > 0 {
		lines := make([]string, 0, len(req.Dialogue))
		for _, line := range req.Dialogue {
			lines = append(lines, line.Text)
		}
		text = strings.Join(lines, " ")
	}

	words := len(strings.Fields(text))
	return Stats{
		Words:     words,
		Seconds:   int(math.Round(float64(words) / wordsPerMinute / rate * 60)),
		OverLimit: words > WordLimit,
	}
}

// job is a resolved request ready for synthesis
type job struct {
	req       synth.Request
	voiceID   string
	voiceName string
	usage     []string
	preview   bool
}

// resolve maps a studio request onto a synthesis request
func (s *Studio) resolve(ctx context.Context, req Request) (*job, error) {
	if ScriptStats(req).OverLimit {
		return nil, fmt.Errorf("%w: more than %d words", ErrScriptTooLong, WordLimit)
	}
	if len(req.Speakers) > MaxSpeakers {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrTooManySpeakers, len(req.Speakers), MaxSpeakers)
	}

	settings := voice.DefaultSettings()
	if req.Settings != nil {
		settings = *req.Settings
	}

	j := &job{req: synth.Request{
		Text:     req.Text,
		Settings: settings,
		Speakers: req.Speakers,
		Dialogue: req.Dialogue,
	}}

	if len(req.Dialogue) > 0 {
		for _, sp := range req.Speakers {
			if err := sp.Settings.Validate(); err != nil {
				return nil, fmt.Errorf("%w: speaker %s: %w", ErrInvalid, sp.Name, err)
			}
			j.usage = append(j.usage, string(sp.Voice))
		}
		j.voiceName = multiVoiceName
	} else {
		if err := settings.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		if err := s.resolveVoice(ctx, j, req.Voice); err != nil {
			return nil, err
		}
		j.usage = []string{j.voiceID}
	}

	if err := j.req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return j, nil
}

// resolveVoice points the job at a studio voice or a saved clone
func (s *Studio) resolveVoice(ctx context.Context, j *job, id string) error {
	if id == "" {
		id = string(voice.Zephyr)
	}
	if name, ok := voice.Parse(id); ok {
		j.req.Voice = name
		j.voiceID = string(name)
		j.voiceName = string(name)
		return nil
	}

	clone, err := s.clone(ctx, id)
	if err != nil {
		return err
	}
	j.req.CloneProfile = clone.Profile
	j.req.Voice = voice.Zephyr
	j.voiceID = clone.ID
	j.voiceName = clone.Name
	return nil
}

// Render synthesizes a request, exports it and records it in history
func (s *Studio) Render(ctx context.Context, req Request) (*Render, error) {
	j, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, j)
}

// Preview renders a short introduction in a voice with default settings. It
// is not recorded in history.
func (s *Studio) Preview(ctx context.Context, voiceID string) (*Render, error) {
	j := &job{
		req:     synth.Request{Settings: voice.DefaultSettings()},
		preview: true,
	}
	if err := s.resolveVoice(ctx, j, voiceID); err != nil {
		return nil, err
	}
	j.req.Text = fmt.Sprintf("Initializing %s vector profile. Studio synthesis active.", j.voiceName)
	j.usage = []string{j.voiceID}
	return s.run(ctx, j)
}

func (s *Studio) run(ctx context.Context, j *job) (*Render, error) {
	settings := s.Settings()
	mode := j.req.Mode()

	s.events.publish(Event{Type: EventRenderStart, Payload: map[string]string{"mode": string(mode), "voice": j.voiceName}})
	render, err := s.synthesize(ctx, j, settings.SampleRate)
	if err != nil {
		log.Printf("Render failed (%s, %s): %v", mode, j.voiceName, err)
		s.events.publish(Event{Type: EventRenderError, Payload: ErrorInfo{Mode: string(mode), Voice: j.voiceName, Error: err.Error()}})
		return nil, err
	}

	if !j.preview {
		if err := s.record(ctx, render); err != nil {
			log.Printf("Failed to record history: %v", err)
		}
	}

	s.mu.Lock()
	prev := s.current
	s.current = render
	if prev != nil && prev != s.playing {
		prev.Buffer.Release()
	}
	s.mu.Unlock()

	if err := s.countUsage(ctx, j.usage); err != nil {
		log.Printf("Failed to count usage: %v", err)
	}

	log.Printf("Render %s complete: %s, %.2fs at %dHz", render.ID, render.Voice, render.Duration.Seconds(), render.SampleRate)
	s.events.publish(Event{Type: EventRenderComplete, Payload: render.Info()})

	if settings.AutoPlay && s.output != nil {
		go func() {
			if err := s.Play(context.Background()); err != nil {
				log.Printf("Auto play failed: %v", err)
			}
		}()
	}

	return render, nil
}

// synthesize calls the synthesizer and runs the codec pipeline
func (s *Studio) synthesize(ctx context.Context, j *job, sampleRate int) (*Render, error) {
	payload, err := s.synth.Synthesize(ctx, j.req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSynthesis, err)
	}
	if payload == "" {
		return nil, audio.ErrEmptyAudio
	}

	raw, err := audio.DecodeBase64(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSynthesis, err)
	}
	raw = raw[:len(raw)-len(raw)%audio.BytesPerSample]
	buf, err := decode.DecodePCM(raw, sampleRate, 1)
	if err != nil {
		return nil, err
	}
	if buf.FrameCount() == 0 {
		return nil, fmt.Errorf("payload holds no complete samples: %w", audio.ErrEmptyAudio)
	}

	wav := encode.EncodeWAV(buf)
	path, err := s.exporter.Save(wav)
	if err != nil {
		return nil, err
	}

	return &Render{
		ID:         uuid.New().String(),
		CreatedAt:  time.Now(),
		Mode:       j.req.Mode(),
		Text:       historyText(j.req),
		Voice:      j.voiceName,
		Preview:    j.preview,
		Buffer:     buf,
		WAV:        wav,
		Source:     raw,
		Path:       path,
		SampleRate: buf.SampleRate,
		Duration:   buf.Duration(),
	}, nil
}

// historyText is the full text for single renders and the truncated first
// line for dialogue
func historyText(req synth.Request) string {
	if len(req.Dialogue) == 0 {
		return req.Text
	}
	first := []rune(req.Dialogue[0].Text)
	if len(first) > historyTextLimit {
		first = first[:historyTextLimit]
	}
	return string(first) + "..."
}

// record adds a render to history and deletes files no longer referenced
func (s *Studio) record(ctx context.Context, r *Render) error {
	dropped, err := s.store.AddHistory(ctx, store.Item{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Mode:      string(r.Mode),
		Text:      r.Text,
		Voice:     r.Voice,
		Path:      r.Path,
		Duration:  r.Duration.Seconds(),
	})
	if err != nil {
		return err
	}

	for _, item := range dropped {
		s.releaseFile(ctx, item.Path, r.Path)
	}
	s.events.publish(Event{Type: EventHistoryUpdate})
	return nil
}

// releaseFile removes an exported file unless a render still points at it
func (s *Studio) releaseFile(ctx context.Context, path string, keep ...string) {
	if path == "" {
		return
	}
	for _, k := range keep {
		if k == path {
			return
		}
	}

	s.mu.Lock()
	inUse := (s.current != nil && s.current.Path == path) || (s.playing != nil && s.playing.Path == path)
	s.mu.Unlock()
	if inUse {
		return
	}

	items, err := s.store.History(ctx, 0)
	if err != nil {
		log.Printf("Keeping %s, history unavailable: %v", path, err)
		return
	}
	for _, item := range items {
		if item.Path == path {
			return
		}
	}

	if err := s.exporter.Remove(path); err != nil {
		log.Printf("Failed to remove export %s: %v", path, err)
	}
}

// Current returns the latest render
func (s *Studio) Current() (*Render, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNoRender
	}
	return s.current, nil
}

// Play sends the latest render to the audio output and blocks until the
// output has played it
func (s *Studio) Play(ctx context.Context) error {
	if s.output == nil {
		return ErrNoOutput
	}

	s.playMu.Lock()
	defer s.playMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	render := s.current
	s.playing = render
	s.mu.Unlock()
	if render == nil {
		return ErrNoRender
	}

	defer func() {
		s.mu.Lock()
		s.playing = nil
		if s.current != render {
			render.Buffer.Release()
		}
		s.mu.Unlock()
	}()

	buf := render.Buffer
	if err := s.output.Open(buf.SampleRate, buf.NumChannels()); err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}
	if err := s.output.Write(buf); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	if err := s.output.Drain(ctx); err != nil {
		return fmt.Errorf("playback interrupted: %w", err)
	}

	s.events.publish(Event{Type: EventPlaybackDone, Payload: map[string]string{"id": render.ID}})
	return nil
}

// History returns recent renders, newest first
func (s *Studio) History(ctx context.Context, limit int) ([]store.Item, error) {
	return s.store.History(ctx, limit)
}

// RemoveHistory deletes a history entry and its export when unused
func (s *Studio) RemoveHistory(ctx context.Context, id string) error {
	item, err := s.store.RemoveHistory(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("history item %s: %w", id, ErrNotFound)
		}
		return err
	}

	s.releaseFile(ctx, item.Path)
	s.events.publish(Event{Type: EventHistoryUpdate})
	return nil
}
