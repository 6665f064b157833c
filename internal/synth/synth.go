// ABOUTME: Speech synthesis contract
// ABOUTME: Defines the Synthesizer interface and request shapes for remote TTS services
package synth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vocalize-studio/vocalize-go/internal/voice"
)

// Mode is the kind of synthesis a request asks for
type Mode string

const (
	ModeSingle Mode = "single"
	ModeMulti  Mode = "multi"
	ModeClone  Mode = "clone"
)

// ErrTooFewSpeakers is returned for dialogue requests with fewer than two speakers
var ErrTooFewSpeakers = errors.New("multi-speaker synthesis requires at least 2 speakers")

// Request describes one synthesis call
type Request struct {
	Text         string
	Voice        voice.Name
	Settings     voice.Settings
	Speakers     []voice.Speaker
	Dialogue     []voice.DialogueLine
	CloneProfile string
}

// Mode derives the synthesis mode: dialogue wins over clone, clone over single
func (r Request) Mode() Mode {
	if len(r.Dialogue) > 0 {
		return ModeMulti
	}
	if r.CloneProfile != "" {
		return ModeClone
	}
	return ModeSingle
}

// Validate checks the request has something to say
func (r Request) Validate() error {
	switch r.Mode() {
	case ModeMulti:
		for i, line := range r.Dialogue {
			if strings.TrimSpace(line.Text) == "" {
				return fmt.Errorf("dialogue line %d is empty", i)
			}
		}
		if len(r.Speakers) < 2 {
			return ErrTooFewSpeakers
		}
	default:
		if strings.TrimSpace(r.Text) == "" {
			return fmt.Errorf("text is required")
		}
	}
	return nil
}

// Synthesizer converts a request into base64-encoded 16-bit PCM.
// Concrete implementations wrap a remote service or generate audio locally.
type Synthesizer interface {
	// Synthesize returns the audio payload, or audio.ErrEmptyAudio when the
	// service answered without one
	Synthesize(ctx context.Context, req Request) (string, error)
}

// Plan is a studio configuration proposed from a natural-language
// instruction. Mode is single or multi.
type Plan struct {
	Mode        Mode                 `json:"mode"`
	SingleText  string               `json:"singleText,omitempty"`
	Dialogue    []voice.DialogueLine `json:"dialogue,omitempty"`
	Speakers    []voice.Speaker      `json:"speakers,omitempty"`
	Settings    voice.Settings       `json:"settings"`
	Explanation string               `json:"explanation"`
}

// StatusError reports a non-success HTTP response from a synthesis service
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("synthesis service error %d: %s", e.Code, e.Body)
}

// Temporary reports whether the request is worth retrying
func (e *StatusError) Temporary() bool {
	return e.Code == 429 || e.Code >= 500
}
