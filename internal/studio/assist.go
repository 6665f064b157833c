// ABOUTME: Script tools backed by the text model
// ABOUTME: Phonetic breakdowns, voice-over summaries and instruction-driven studio plans
package studio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vocalize-studio/vocalize-go/internal/synth"
	"github.com/vocalize-studio/vocalize-go/internal/voice"
)

// ErrUnsupported is returned when the synthesis engine has no text model
var ErrUnsupported = errors.New("not supported by this synthesis engine")

// Assistant answers text prompts about a script
type Assistant interface {
	Phonetic(ctx context.Context, text string) (string, error)
	Summarize(ctx context.Context, text string) (string, error)
	Architect(ctx context.Context, instruction string, mode synth.Mode, text string) (synth.Plan, error)
}

// Plan is a proposed script with an explanation of the change. Request can
// be passed to Render as is.
type Plan struct {
	Mode        string  `json:"mode"`
	Explanation string  `json:"explanation"`
	Request     Request `json:"request"`
}

// Phonetic returns an IPA breakdown of text
func (s *Studio) Phonetic(ctx context.Context, text string) (string, error) {
	if err := s.checkText(text); err != nil {
		return "", err
	}
	out, err := s.assistant.Phonetic(ctx, text)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSynthesis, err)
	}
	return out, nil
}

// Summarize condenses text into a voice-over script
func (s *Studio) Summarize(ctx context.Context, text string) (string, error) {
	if err := s.checkText(text); err != nil {
		return "", err
	}
	out, err := s.assistant.Summarize(ctx, text)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSynthesis, err)
	}
	return out, nil
}

// Architect asks the text model to rework the current script following
// instruction. Single plans keep the current voice.
func (s *Studio) Architect(ctx context.Context, instruction string, current Request) (Plan, error) {
	if s.assistant == nil {
		return Plan{}, ErrUnsupported
	}
	if strings.TrimSpace(instruction) == "" {
		return Plan{}, fmt.Errorf("%w: instruction is required", ErrInvalid)
	}

	mode := synth.ModeSingle
	text := current.Text
	if len(current.Dialogue) > 0 {
		mode = synth.ModeMulti
		lines := make([]string, 0, len(current.Dialogue))
		for _, line := range current.Dialogue {
			lines = append(lines, line.Text)
		}
		text = strings.Join(lines, "\n")
	}

	p, err := s.assistant.Architect(ctx, instruction, mode, text)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %w", ErrSynthesis, err)
	}

	settings := p.Settings
	plan := Plan{Mode: string(p.Mode), Explanation: p.Explanation}
	if p.Mode == synth.ModeMulti {
		speakers := p.Speakers
		if len(speakers) > MaxSpeakers {
			speakers = speakers[:MaxSpeakers]
		}
		for i := range speakers {
			if !voice.Valid(speakers[i].Voice) {
				speakers[i].Voice = voice.Zephyr
			}
		}
		plan.Request = Request{Settings: &settings, Speakers: speakers, Dialogue: p.Dialogue}
		return plan, nil
	}

	plan.Request = Request{Text: p.SingleText, Voice: current.Voice, Settings: &settings}
	if strings.TrimSpace(plan.Request.Text) == "" {
		plan.Request.Text = current.Text
	}
	return plan, nil
}

// checkText rejects text the assistant should not be sent
func (s *Studio) checkText(text string) error {
	if s.assistant == nil {
		return ErrUnsupported
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text is required", ErrInvalid)
	}
	if len(strings.Fields(text)) > WordLimit {
		return fmt.Errorf("%w: more than %d words", ErrScriptTooLong, WordLimit)
	}
	return nil
}
