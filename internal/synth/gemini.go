// ABOUTME: Gemini generateContent client for speech synthesis
// ABOUTME: Sends prompts with voice configuration and extracts inline PCM audio
package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/vocalize-studio/vocalize-go/internal/voice"
	"github.com/vocalize-studio/vocalize-go/pkg/audio"
)

const (
	// DefaultGeminiURL is the public Generative Language API endpoint
	DefaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultSpeechModel renders audio
	DefaultSpeechModel = "gemini-2.5-flash-preview-tts"

	// DefaultTextModel answers text and analysis prompts
	DefaultTextModel = "gemini-3-flash-preview"

	// DefaultPlannerModel reconfigures the studio from instructions
	DefaultPlannerModel = "gemini-3.1-pro-preview"

	defaultTimeout = 90 * time.Second
)

// GeminiConfig holds Gemini client configuration
type GeminiConfig struct {
	APIKey       string
	BaseURL      string
	SpeechModel  string
	TextModel    string
	PlannerModel string
	Timeout      time.Duration
}

// Gemini implements Synthesizer using the Gemini generateContent endpoint
type Gemini struct {
	config GeminiConfig
	client *http.Client
}

// NewGemini creates a Gemini client. If APIKey is empty, GEMINI_API_KEY and
// then API_KEY are read from the environment.
func NewGemini(config GeminiConfig) (*Gemini, error) {
	if config.APIKey == "" {
		config.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if config.APIKey == "" {
		config.APIKey = os.Getenv("API_KEY")
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is missing")
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultGeminiURL
	}
	if config.SpeechModel == "" {
		config.SpeechModel = DefaultSpeechModel
	}
	if config.TextModel == "" {
		config.TextModel = DefaultTextModel
	}
	if config.PlannerModel == "" {
		config.PlannerModel = DefaultPlannerModel
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	return &Gemini{
		config: config,
		client: &http.Client{},
	}, nil
}

// Wire types for the generateContent API

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type speakerVoiceConfig struct {
	Speaker     string      `json:"speaker"`
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type multiSpeakerVoiceConfig struct {
	SpeakerVoiceConfigs []speakerVoiceConfig `json:"speakerVoiceConfigs"`
}

type speechConfig struct {
	VoiceConfig             *voiceConfig             `json:"voiceConfig,omitempty"`
	MultiSpeakerVoiceConfig *multiSpeakerVoiceConfig `json:"multiSpeakerVoiceConfig,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	ResponseMIMEType   string        `json:"responseMimeType,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// inlineAudio returns the first inline data payload of the first candidate
func (r *generateResponse) inlineAudio() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	for _, p := range r.Candidates[0].Content.Parts {
		if p.InlineData != nil && p.InlineData.Data != "" {
			return p.InlineData.Data
		}
	}
	return ""
}

// text concatenates the text parts of the first candidate
func (r *generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func prebuilt(name voice.Name) *voiceConfig {
	return &voiceConfig{PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: string(name)}}
}

// Synthesize renders the request to base64 PCM
func (g *Gemini) Synthesize(ctx context.Context, req Request) (string, error) {
	var prompt string
	speech := &speechConfig{}

	switch req.Mode() {
	case ModeMulti:
		active, err := activeSpeakers(req.Speakers)
		if err != nil {
			return "", err
		}
		prompt = dialoguePrompt(active, req.Dialogue)
		configs := make([]speakerVoiceConfig, 0, len(active))
		for _, s := range active {
			configs = append(configs, speakerVoiceConfig{
				Speaker:     s.Name,
				VoiceConfig: *prebuilt(voice.Lookup(s.Voice).Base),
			})
		}
		speech.MultiSpeakerVoiceConfig = &multiSpeakerVoiceConfig{SpeakerVoiceConfigs: configs}
	case ModeClone:
		prompt = clonePrompt(req)
		speech.VoiceConfig = prebuilt(voice.Zephyr)
	default:
		prompt = singlePrompt(req)
		speech.VoiceConfig = prebuilt(voice.Lookup(req.Voice).Base)
	}

	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig:       speech,
		},
	}

	log.Printf("Synthesizing %s speech with %s (%d prompt characters)", req.Mode(), g.config.SpeechModel, len([]rune(prompt)))
	startTime := time.Now()

	resp, err := g.generate(ctx, g.config.SpeechModel, body)
	if err != nil {
		return "", err
	}

	data := resp.inlineAudio()
	if data == "" {
		return "", fmt.Errorf("%s synthesis: %w", req.Mode(), audio.ErrEmptyAudio)
	}

	log.Printf("Synthesis completed in %.2fs (%d base64 bytes)", time.Since(startTime).Seconds(), len(data))
	return data, nil
}

// Phonetic returns an IPA breakdown of text
func (g *Gemini) Phonetic(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf("Convert the following text into a high-fidelity phonetic breakdown using the International Phonetic Alphabet (IPA). Stress syllables clearly. Text: %q", text)
	resp, err := g.generate(ctx, g.config.TextModel, generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}
	return resp.text(), nil
}

// Summarize condenses text into a voice-over script
func (g *Gemini) Summarize(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf("Provide a concise, high-impact summary of the following text suitable for a voice-over script. Retain the core emotion and key information. Text: %q", text)
	resp, err := g.generate(ctx, g.config.TextModel, generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}
	if s := resp.text(); s != "" {
		return s, nil
	}
	return "Summary unavailable.", nil
}

// Architect turns an instruction into a new studio plan. mode and text
// describe the script currently loaded.
func (g *Gemini) Architect(ctx context.Context, instruction string, mode Mode, text string) (Plan, error) {
	resp, err := g.generate(ctx, g.config.PlannerModel, generateRequest{
		Contents:         []content{{Parts: []part{{Text: architectPrompt(instruction, mode, text)}}}},
		GenerationConfig: &generationConfig{ResponseMIMEType: "application/json"},
	})
	if err != nil {
		return Plan{}, err
	}

	answer := resp.text()
	if strings.TrimSpace(answer) == "" {
		answer = "{}"
	}
	plan := Plan{Settings: voice.DefaultSettings()}
	if err := json.Unmarshal([]byte(answer), &plan); err != nil {
		return Plan{}, fmt.Errorf("failed to parse orchestrator response: %w", err)
	}

	if plan.Mode != ModeMulti {
		plan.Mode = ModeSingle
	}
	plan.Settings = completeSettings(plan.Settings)
	for i := range plan.Speakers {
		plan.Speakers[i].Settings = completeSettings(plan.Speakers[i].Settings)
	}
	return plan, nil
}

// completeSettings fills fields a model answer left out with defaults
func completeSettings(s voice.Settings) voice.Settings {
	def := voice.DefaultSettings()
	if s == (voice.Settings{}) {
		return def
	}
	if s.Rate <= 0 {
		s.Rate = def.Rate
	}
	if s.Pitch == "" {
		s.Pitch = def.Pitch
	}
	if s.Emotion == "" {
		s.Emotion = def.Emotion
	}
	return s
}

// Sample is a recorded voice sample sent for analysis
type Sample struct {
	Data     string `json:"data"` // base64
	MIMEType string `json:"mimeType"`
	FileName string `json:"fileName"`
}

// Analysis is the voice fingerprint derived from samples
type Analysis struct {
	Profile    string  `json:"profile"`
	Confidence float64 `json:"confidence"`
}

// AnalyzeVoice derives an averaged voice fingerprint from samples. An
// unparseable model answer yields a standard profile with low confidence.
func (g *Gemini) AnalyzeVoice(ctx context.Context, samples []Sample) (Analysis, error) {
	if len(samples) == 0 {
		return Analysis{}, fmt.Errorf("no voice samples provided")
	}

	parts := make([]part, 0, len(samples)+1)
	for _, s := range samples {
		parts = append(parts, part{InlineData: &inlineData{MIMEType: s.MIMEType, Data: s.Data}})
	}
	parts = append(parts, part{Text: "Analyze these voice samples meticulously. Synthesize an averaged voice fingerprint. Return JSON with 'profile' (string) and 'confidence' (number 0-100)."})

	resp, err := g.generate(ctx, g.config.TextModel, generateRequest{
		Contents:         []content{{Parts: parts}},
		GenerationConfig: &generationConfig{ResponseMIMEType: "application/json"},
	})
	if err != nil {
		return Analysis{}, err
	}

	var result Analysis
	if err := json.Unmarshal([]byte(resp.text()), &result); err != nil {
		log.Printf("Voice analysis returned unparseable JSON: %v", err)
		return Analysis{Profile: "Standard voice", Confidence: 70}, nil
	}
	if result.Profile == "" {
		result.Profile = "Standard voice"
	}
	if result.Confidence == 0 {
		result.Confidence = 85
	}
	return result, nil
}

// generate posts one generateContent call
func (g *Gemini) generate(ctx context.Context, model string, body generateRequest) (*generateResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// adopt timeout from ctx or fall back to the configured one
	reqCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(g.config.BaseURL, "/"), model)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.config.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode gemini response: %w", err)
	}
	return &out, nil
}
