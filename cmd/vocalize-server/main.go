// ABOUTME: Entry point for the Vocalize Studio server
// ABOUTME: Parses CLI flags, builds the studio and serves its API
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vocalize-studio/vocalize-go/internal/config"
	"github.com/vocalize-studio/vocalize-go/internal/export"
	"github.com/vocalize-studio/vocalize-go/internal/server"
	"github.com/vocalize-studio/vocalize-go/internal/store"
	"github.com/vocalize-studio/vocalize-go/internal/studio"
	"github.com/vocalize-studio/vocalize-go/pkg/audio/output"
)

var (
	configPath = flag.String("config", "", "YAML config file")
	port       = flag.Int("port", 8927, "HTTP server port")
	name       = flag.String("name", "", "Studio friendly name (default: from config or hostname)")
	dataPath   = flag.String("data", "", "SQLite database path; enables persistent retention")
	exportDir  = flag.String("export-dir", "", "Directory for rendered WAV files")
	engine     = flag.String("synth", "", "Synthesis engine: gemini or tone")
	play       = flag.Bool("play", false, "Play renders on this machine's speakers")
	logFile    = flag.String("log-file", "vocalize-server.log", "Log file path")
	debug      = flag.Bool("debug", false, "Enable debug logging")
	noMDNS     = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
)

func main() {
	flag.Parse()

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer f.Close()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Log to both file and stdout
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "port":
			cfg.Server.Port = *port
		case "name":
			cfg.Name = *name
		case "data":
			cfg.Store.Path = *dataPath
			cfg.Store.Retention = store.RetentionPersistent
		case "export-dir":
			cfg.Studio.ExportDir = *exportDir
		case "synth":
			cfg.Synth.Engine = *engine
		case "no-mdns":
			cfg.Server.MDNS = !*noMDNS
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Starting %s on port %d (%s engine)", cfg.Name, cfg.Server.Port, cfg.Synth.Engine)
	if *debug {
		log.Printf("Debug logging enabled")
	}
	log.Printf("Logging to: %s", *logFile)

	ctx := context.Background()
	built, err := cfg.Engine()
	if err != nil {
		log.Fatalf("Failed to create synthesizer: %v", err)
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ex, err := export.New(cfg.Studio.ExportDir)
	if err != nil {
		log.Fatalf("Failed to create export directory: %v", err)
	}
	log.Printf("Renders are exported to %s", ex.Dir())

	var out output.Output
	if *play {
		out = output.NewOto()
	}

	sd, err := studio.New(ctx, studio.Config{
		Synth:     built.Synth,
		Store:     st,
		Exporter:  ex,
		Output:    out,
		Analyzer:  built.Analyzer,
		Assistant: built.Assistant,
		Defaults:  cfg.StudioDefaults(),
	})
	if err != nil {
		log.Fatalf("Failed to create studio: %v", err)
	}
	defer sd.Close()

	srv := server.New(server.Config{
		Port:       cfg.Server.Port,
		Name:       cfg.Name,
		EnableMDNS: cfg.Server.MDNS,
		Debug:      *debug,
		UseTUI:     useTUI,
	}, sd)

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received %v signal, shutting down gracefully...", sig)
		srv.Stop()
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Printf("Server stopped")
}
