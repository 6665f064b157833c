// ABOUTME: Studio configuration loaded from YAML and VOCALIZE_* environment variables
// ABOUTME: Flags from main are applied on top; Validate checks the merged result
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vocalize-studio/vocalize-go/internal/store"
)

// Synthesis engines
const (
	EngineGemini = "gemini"
	EngineTone   = "tone"
)

type ServerConfig struct {
	Port int  `yaml:"port"`
	MDNS bool `yaml:"mdns"`
}

type StudioConfig struct {
	SampleRate int    `yaml:"sample_rate"`
	AutoPlay   bool   `yaml:"auto_play"`
	ExportDir  string `yaml:"export_dir"`
}

type GeminiConfig struct {
	APIKey       string        `yaml:"api_key"`
	BaseURL      string        `yaml:"base_url"`
	SpeechModel  string        `yaml:"speech_model"`
	TextModel    string        `yaml:"text_model"`
	PlannerModel string        `yaml:"planner_model"`
	Timeout      time.Duration `yaml:"timeout"`
}

type SynthConfig struct {
	Engine  string        `yaml:"engine"` // gemini, tone
	Retries int           `yaml:"retries"`
	Backoff time.Duration `yaml:"backoff"`
	Gemini  GeminiConfig  `yaml:"gemini"`
}

type Config struct {
	Name   string       `yaml:"name"`
	Server ServerConfig `yaml:"server"`
	Store  store.Config `yaml:"store"`
	Studio StudioConfig `yaml:"studio"`
	Synth  SynthConfig  `yaml:"synth"`
}

func Default() Config {
	hostname, _ := os.Hostname()
	name := "Vocalize Studio"
	if hostname != "" {
		name = fmt.Sprintf("Vocalize Studio (%s)", hostname)
	}

	return Config{
		Name: name,
		Server: ServerConfig{
			Port: 8927,
			MDNS: true,
		},
		Store: store.Config{
			Retention: store.RetentionEphemeral,
		},
		Studio: StudioConfig{
			SampleRate: 24000,
			AutoPlay:   true,
		},
		Synth: SynthConfig{
			Engine:  EngineGemini,
			Retries: 2,
			Backoff: 500 * time.Millisecond,
			Gemini: GeminiConfig{
				Timeout: 90 * time.Second,
			},
		},
	}
}

// Load reads an optional YAML file over the defaults and applies
// environment overrides. The result is not validated so callers can layer
// flags first.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.Name, "VOCALIZE_NAME")
	overrideInt(&cfg.Server.Port, "VOCALIZE_PORT")
	overrideBool(&cfg.Server.MDNS, "VOCALIZE_MDNS")
	overrideString(&cfg.Store.Retention, "VOCALIZE_RETENTION")
	overrideString(&cfg.Store.Path, "VOCALIZE_DATA_PATH")
	overrideInt(&cfg.Studio.SampleRate, "VOCALIZE_SAMPLE_RATE")
	overrideBool(&cfg.Studio.AutoPlay, "VOCALIZE_AUTO_PLAY")
	overrideString(&cfg.Studio.ExportDir, "VOCALIZE_EXPORT_DIR")
	overrideString(&cfg.Synth.Engine, "VOCALIZE_SYNTH")
	overrideInt(&cfg.Synth.Retries, "VOCALIZE_RETRIES")
	overrideDuration(&cfg.Synth.Backoff, "VOCALIZE_RETRY_BACKOFF")
	overrideString(&cfg.Synth.Gemini.APIKey, "VOCALIZE_GEMINI_API_KEY")
	overrideString(&cfg.Synth.Gemini.BaseURL, "VOCALIZE_GEMINI_BASE_URL")
	overrideString(&cfg.Synth.Gemini.SpeechModel, "VOCALIZE_GEMINI_SPEECH_MODEL")
	overrideString(&cfg.Synth.Gemini.TextModel, "VOCALIZE_GEMINI_TEXT_MODEL")
	overrideString(&cfg.Synth.Gemini.PlannerModel, "VOCALIZE_GEMINI_PLANNER_MODEL")
	overrideDuration(&cfg.Synth.Gemini.Timeout, "VOCALIZE_GEMINI_TIMEOUT")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideDuration(target *time.Duration, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			*target = parsed
		}
	}
}

// Validate checks the merged configuration
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Name) == "" {
		return errors.New("name must not be empty")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return errors.New("server.port must be between 1 and 65535")
	}
	switch cfg.Store.Retention {
	case "", store.RetentionEphemeral:
	case store.RetentionPersistent:
		if cfg.Store.Path == "" {
			return errors.New("store.path must be set when retention=persistent")
		}
	default:
		return errors.New("store.retention must be one of ephemeral|persistent")
	}
	if cfg.Studio.SampleRate != 16000 && cfg.Studio.SampleRate != 24000 {
		return fmt.Errorf("studio.sample_rate must be 16000 or 24000, got %d", cfg.Studio.SampleRate)
	}
	switch cfg.Synth.Engine {
	case EngineGemini, EngineTone:
	default:
		return errors.New("synth.engine must be one of gemini|tone")
	}
	if cfg.Synth.Retries < 0 || cfg.Synth.Retries > 10 {
		return errors.New("synth.retries must be between 0 and 10")
	}
	if cfg.Synth.Backoff < 0 {
		return errors.New("synth.backoff must not be negative")
	}
	return nil
}
