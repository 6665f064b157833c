// ABOUTME: Offline tone synthesizer
// ABOUTME: Renders a sine tone sized to the text so the studio runs without a network
package synth

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/vocalize-studio/vocalize-go/internal/voice"
	"github.com/vocalize-studio/vocalize-go/pkg/audio"
	"github.com/vocalize-studio/vocalize-go/pkg/audio/encode"
)

const (
	toneRuneDuration = 60 * time.Millisecond
	toneMinDuration  = 250 * time.Millisecond
	toneMaxDuration  = 30 * time.Second
	toneAmplitude    = 0.3
)

var pitchFrequencies = map[voice.Pitch]float64{
	voice.PitchVeryLow:  130.81,
	voice.PitchLow:      174.61,
	voice.PitchNormal:   220.0,
	voice.PitchHigh:     293.66,
	voice.PitchVeryHigh: 392.0,
}

// Tone implements Synthesizer without a remote service. Output is mono
// 16-bit PCM at SampleRate.
type Tone struct {
	SampleRate int
}

// NewTone creates an offline synthesizer
func NewTone(sampleRate int) *Tone {
	return &Tone{SampleRate: sampleRate}
}

// Synthesize renders a tone whose length follows the spoken text
func (t *Tone) Synthesize(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if t.SampleRate <= 0 {
		return "", fmt.Errorf("%w: sample rate must be positive", audio.ErrInvalidFormat)
	}

	text, settings := toneScript(req)
	runes := len([]rune(strings.TrimSpace(text)))
	if runes == 0 {
		return "", fmt.Errorf("nothing to say: %w", audio.ErrEmptyAudio)
	}

	rate := settings.Rate
	if rate <= 0 {
		rate = 1
	}
	duration := time.Duration(float64(time.Duration(runes)*toneRuneDuration) / rate)
	duration = max(toneMinDuration, min(duration, toneMaxDuration))

	freq, ok := pitchFrequencies[settings.Pitch]
	if !ok {
		freq = pitchFrequencies[voice.PitchNormal]
	}
	amplitude := toneAmplitude * settings.Volume

	frames := int(int64(t.SampleRate) * int64(duration) / int64(time.Second))
	buf := audio.NewSampleBuffer(t.SampleRate, 1, frames)
	samples := buf.Channel(0)
	for i := range samples {
		phase := 2 * math.Pi * freq * float64(i) / float64(t.SampleRate)
		samples[i] = float32(amplitude * math.Sin(phase))
	}

	return audio.EncodeBase64(encode.EncodePCM(buf)), nil
}

// toneScript flattens a request into the text and settings that shape the tone
func toneScript(req Request) (string, voice.Settings) {
	if req.Mode() != ModeMulti {
		return req.Text, req.Settings
	}

	lines := make([]string, 0, len(req.Dialogue))
	for _, line := range req.Dialogue {
		lines = append(lines, line.Text)
	}
	settings := voice.DefaultSettings()
	if len(req.Speakers) > 0 {
		settings = req.Speakers[0].Settings
	}
	return strings.Join(lines, " "), settings
}
