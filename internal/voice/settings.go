// ABOUTME: Speech settings and delivery instructions
// ABOUTME: Builds the natural-language prompt prefix from tuning parameters
package voice

import (
	"fmt"
	"strconv"
)

// Emotion selects the delivery tone
type Emotion string

const (
	Neutral       Emotion = "neutral"
	Happy         Emotion = "happy"
	Sad           Emotion = "sad"
	Angry         Emotion = "angry"
	Fearful       Emotion = "fearful"
	Surprised     Emotion = "surprised"
	Disgusted     Emotion = "disgusted"
	Sarcastic     Emotion = "sarcastic"
	Whispering    Emotion = "whispering"
	Shouting      Emotion = "shouting"
	Nostalgic     Emotion = "nostalgic"
	Wise          Emotion = "wise"
	Fragile       Emotion = "fragile"
	Shaky         Emotion = "shaky"
	Friendly      Emotion = "friendly"
	Authoritative Emotion = "authoritative"
)

// Emotions lists every emotion in declaration order
var Emotions = []Emotion{
	Neutral, Happy, Sad, Angry, Fearful, Surprised, Disgusted, Sarcastic,
	Whispering, Shouting, Nostalgic, Wise, Fragile, Shaky, Friendly, Authoritative,
}

var emotionPrompts = map[Emotion]string{
	Neutral:       "in a natural, balanced tone",
	Happy:         "with a bright, joyful, and cheerful energy",
	Sad:           "with a heavy, melancholic, and downcast tone",
	Angry:         "with a sharp, intense, and aggressive edge",
	Fearful:       "with a shaky, anxious, and panicked quality",
	Surprised:     "with a sudden, wide-eyed, and high-pitched energy",
	Disgusted:     "with a repulsed, condescending, and bitter tone",
	Sarcastic:     "with a dry, mocking, and cynical inflection",
	Whispering:    "in a soft, hushed, and secretive whisper",
	Shouting:      "at a high volume with a forceful, projective energy",
	Nostalgic:     "in a reflective, warm, and slightly sentimental tone",
	Wise:          "in a calm, deep, and highly experienced manner",
	Fragile:       "in a thin, gentle, and vulnerable tone",
	Shaky:         "with a quivering, unsteady, and old quality",
	Friendly:      "in a welcoming, approachable, and warm tone",
	Authoritative: "with a commanding, steady, and professional power",
}

// Prompt returns the delivery phrase for the emotion. Unknown emotions use
// the neutral phrase.
func (e Emotion) Prompt() string {
	if p, ok := emotionPrompts[e]; ok {
		return p
	}
	return emotionPrompts[Neutral]
}

// Valid reports whether e is a known emotion
func (e Emotion) Valid() bool {
	_, ok := emotionPrompts[e]
	return ok
}

// Pitch is a coarse pitch level
type Pitch string

const (
	PitchVeryLow  Pitch = "very low"
	PitchLow      Pitch = "low"
	PitchNormal   Pitch = "normal"
	PitchHigh     Pitch = "high"
	PitchVeryHigh Pitch = "very high"
)

// Valid reports whether p is a known pitch level
func (p Pitch) Valid() bool {
	switch p {
	case PitchVeryLow, PitchLow, PitchNormal, PitchHigh, PitchVeryHigh:
		return true
	}
	return false
}

// Settings tunes how a line is delivered
type Settings struct {
	Rate           float64 `json:"rate" yaml:"rate"`
	Pitch          Pitch   `json:"pitch" yaml:"pitch"`
	Emotion        Emotion `json:"emotion" yaml:"emotion"`
	Volume         float64 `json:"volume" yaml:"volume"`                   // 0 to 1.5
	AccentStrength float64 `json:"accentStrength" yaml:"accent_strength"` // 0 to 1
}

// DefaultSettings returns neutral delivery at normal speed
func DefaultSettings() Settings {
	return Settings{
		Rate:           1,
		Pitch:          PitchNormal,
		Emotion:        Neutral,
		Volume:         1,
		AccentStrength: 0.2,
	}
}

// Validate checks that every field is within its range
func (s Settings) Validate() error {
	if s.Rate < 0.5 || s.Rate > 2 {
		return fmt.Errorf("rate must be in [0.5, 2], got %v", s.Rate)
	}
	if !s.Pitch.Valid() {
		return fmt.Errorf("unknown pitch: %q", s.Pitch)
	}
	if !s.Emotion.Valid() {
		return fmt.Errorf("unknown emotion: %q", s.Emotion)
	}
	if s.Volume < 0 || s.Volume > 1.5 {
		return fmt.Errorf("volume must be in [0, 1.5], got %v", s.Volume)
	}
	if s.AccentStrength < 0 || s.AccentStrength > 1 {
		return fmt.Errorf("accent strength must be in [0, 1], got %v", s.AccentStrength)
	}
	return nil
}

// Instruction renders the delivery prompt for settings spoken by name. A
// non-empty override replaces the settings' emotion.
func Instruction(s Settings, name Name, override Emotion) string {
	personality := Lookup(name).Personality

	rateDesc := "normal speed"
	if s.Rate != 1 {
		rateDesc = strconv.FormatFloat(s.Rate, 'f', -1, 64) + "x speed"
	}

	emotion := s.Emotion
	if override != "" {
		emotion = override
	}

	accentDesc := "with a natural, subtle accent"
	if s.AccentStrength > 0.5 {
		accentDesc = "with a strong regional accent"
	}

	volumeDesc := "at normal volume"
	if s.Volume > 1.2 {
		volumeDesc = "loudly"
	} else if s.Volume < 0.8 {
		volumeDesc = "softly"
	}

	return fmt.Sprintf("Speak %s%s %s at a %s with a %s pitch and %s. ",
		emotion.Prompt(), personality, volumeDesc, rateDesc, s.Pitch, accentDesc)
}

// Speaker is one voice in a multi-speaker dialogue
type Speaker struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Voice    Name     `json:"voice"`
	Settings Settings `json:"settings"`
}

// DialogueLine is one line of a multi-speaker script
type DialogueLine struct {
	SpeakerID       string  `json:"speakerId"`
	Text            string  `json:"text"`
	EmotionOverride Emotion `json:"emotionOverride,omitempty"`
}
