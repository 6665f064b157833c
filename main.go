// ABOUTME: Entry point for the Vocalize Studio CLI
// ABOUTME: Parses CLI flags, renders a script and plays or saves the result
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/vocalize-studio/vocalize-go/internal/app"
	"github.com/vocalize-studio/vocalize-go/internal/config"
	"github.com/vocalize-studio/vocalize-go/internal/studio"
	"github.com/vocalize-studio/vocalize-go/internal/voice"
)

var (
	text       = flag.String("text", "", "Text to speak (default: remaining arguments)")
	voiceName  = flag.String("voice", "Zephyr", "Voice name or clone ID")
	emotion    = flag.String("emotion", string(voice.Neutral), "Delivery emotion")
	rate       = flag.Float64("rate", 1, "Speaking rate (0.5 to 2)")
	pitch      = flag.String("pitch", string(voice.PitchNormal), "Pitch: very low, low, normal, high, very high")
	volume     = flag.Float64("volume", 1, "Volume (0 to 1.5)")
	accent     = flag.Float64("accent", 0.5, "Accent strength (0 to 1)")
	sampleRate = flag.Int("sample-rate", 24000, "Render sample rate (16000 or 24000)")
	outPath    = flag.String("out", "", "Write the render to this WAV file")
	play       = flag.Bool("play", false, "Play the render through the speakers")
	offline    = flag.Bool("offline", false, "Render a test tone instead of calling a speech service")
	serverURL  = flag.String("server", "", "Render through a studio server (e.g. http://host:8927/api)")
	discover   = flag.Bool("discover", false, "Find a studio server over mDNS")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	configPath = flag.String("config", "", "YAML config file")
	logFile    = flag.String("log-file", "vocalize.log", "Log file path")
	debug      = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	script := *text
	if script == "" {
		script = strings.Join(flag.Args(), " ")
	}
	if strings.TrimSpace(script) == "" {
		fmt.Fprintln(os.Stderr, "usage: vocalize [flags] -text \"words to speak\"")
		flag.PrintDefaults()
		os.Exit(2)
	}

	settings := voice.Settings{
		Rate:           *rate,
		Pitch:          voice.Pitch(*pitch),
		Emotion:        voice.Emotion(*emotion),
		Volume:         *volume,
		AccentStrength: *accent,
	}
	if err := settings.Validate(); err != nil {
		log.Fatalf("Invalid delivery settings: %v", err)
	}

	if *debug {
		log.Printf("Debug logging enabled")
		log.Printf("[DEBUG] Engine %s at %dHz", cfg.Synth.Engine, cfg.Studio.SampleRate)
	}

	booth := app.New(app.Config{
		Studio:   cfg,
		Script:   studio.Request{Text: script, Voice: *voiceName, Settings: &settings},
		OutPath:  *outPath,
		Play:     *play,
		UseTUI:   useTUI,
		Offline:  *offline,
		Server:   *serverURL,
		Discover: *discover,
	})

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received %v signal, shutting down...", sig)
		booth.Stop()
	}()

	if err := booth.Run(); err != nil {
		if useTUI {
			fmt.Fprintf(os.Stderr, "vocalize: %v\n", err)
		}
		log.Fatalf("Render failed: %v", err)
	}
}

// applyFlags layers explicitly set flags over the loaded configuration
func applyFlags(cfg *config.Config) {
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "sample-rate":
			cfg.Studio.SampleRate = *sampleRate
		case "offline":
			if *offline {
				cfg.Synth.Engine = config.EngineTone
			}
		}
	})
}
