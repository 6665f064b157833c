// ABOUTME: Prompt assembly for speech synthesis requests
// ABOUTME: Builds single, cloned, multi-speaker and studio-planning prompts
package synth

import (
	"fmt"
	"strings"

	"github.com/vocalize-studio/vocalize-go/internal/voice"
)

// singlePrompt prefixes the text with the delivery instruction
func singlePrompt(req Request) string {
	return voice.Instruction(req.Settings, req.Voice, "") + "Text: " + req.Text
}

// clonePrompt carries the voice fingerprint ahead of the delivery instruction.
// Cloned voices have no personality descriptor of their own.
func clonePrompt(req Request) string {
	instruction := voice.Instruction(req.Settings, "", "")
	return fmt.Sprintf("[VOICE_CLONE_INSTRUCTION: %s] %s Text: %s", req.CloneProfile, instruction, req.Text)
}

// activeSpeakers returns the two speakers the service can voice
func activeSpeakers(speakers []voice.Speaker) ([]voice.Speaker, error) {
	if len(speakers) < 2 {
		return nil, ErrTooFewSpeakers
	}
	return speakers[:2], nil
}

// dialoguePrompt scripts the conversation. Lines from speakers outside the
// active pair are voiced by the first active speaker.
func dialoguePrompt(active []voice.Speaker, lines []voice.DialogueLine) string {
	body := make([]string, 0, len(lines))
	for _, line := range lines {
		speaker := active[0]
		for _, s := range active {
			if s.ID == line.SpeakerID {
				speaker = s
				break
			}
		}

		name := speaker.Name
		if name == "" {
			name = "Speaker"
		}
		instruction := voice.Instruction(speaker.Settings, speaker.Voice, line.EmotionOverride)
		body = append(body, fmt.Sprintf("%s: [INSTRUCTION: %s] %s", name, instruction, line.Text))
	}

	return fmt.Sprintf("TTS the following conversation between %s and %s:\n\n%s",
		active[0].Name, active[1].Name, strings.Join(body, "\n"))
}

// architectPrompt asks the text model to reconfigure the studio from an
// instruction and the current script
func architectPrompt(instruction string, mode Mode, text string) string {
	names := make([]string, 0, len(voice.Names))
	for _, n := range voice.Names {
		names = append(names, string(n))
	}

	return fmt.Sprintf(`You are the Neural Orchestrator for Vocalize Studio. Based on the User's instruction, reconfigure the entire studio state.

User Instruction: %q
Current Studio Context: Mode: %s, Text: %q

Rules:
1. If the user wants a dialogue, set mode to 'multi' and provide 'dialogue' and 'speakers'.
2. Available voices: %s.
3. Emotions: %s.
4. Limit speakers to 10 for management, but optimize for 2 primary neural profiles.

Output JSON format:
{
  "mode": "single" | "multi",
  "singleText": "string (if single mode)",
  "dialogue": [{"speakerId": "1", "text": "...", "emotionOverride": "..."}],
  "speakers": [{"id": "1", "name": "...", "voice": "...", "settings": {"rate": 1, "pitch": "normal", "emotion": "neutral", "volume": 1, "accentStrength": 0.2}}],
  "settings": {"rate": 1, "pitch": "normal", "emotion": "neutral"},
  "explanation": "brief description of what you changed"
}`, instruction, mode, text, strings.Join(names, ", "), strings.Join(emotionNames(), ", "))
}

func emotionNames() []string {
	out := make([]string, 0, len(voice.Emotions))
	for _, e := range voice.Emotions {
		out = append(out, string(e))
	}
	return out
}
