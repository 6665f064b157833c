// ABOUTME: Render booth application orchestration for the studio CLI
// ABOUTME: Coordinates the synthesis engine, local studio, remote studios and the TUI
package app

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vocalize-studio/vocalize-go/internal/client"
	"github.com/vocalize-studio/vocalize-go/internal/config"
	"github.com/vocalize-studio/vocalize-go/internal/discovery"
	"github.com/vocalize-studio/vocalize-go/internal/export"
	"github.com/vocalize-studio/vocalize-go/internal/store"
	"github.com/vocalize-studio/vocalize-go/internal/studio"
	"github.com/vocalize-studio/vocalize-go/internal/synth"
	"github.com/vocalize-studio/vocalize-go/internal/ui"
	"github.com/vocalize-studio/vocalize-go/pkg/audio/output"
)

// Config holds booth configuration
type Config struct {
	Studio config.Config
	Script studio.Request

	OutPath  string // write the render as WAV here
	Play     bool
	UseTUI   bool
	Offline  bool   // render with the tone engine
	Server   string // remote studio API URL, e.g. http://host:8927/api
	Discover bool   // find a remote studio over mDNS

	DiscoverTimeout time.Duration
}

// Booth renders one script and lets the user replay or re-render it
type Booth struct {
	config     Config
	studio     *studio.Studio
	store      *store.Store
	export     *export.Exporter
	feed       *client.Client
	remote     *client.Remote
	remoteRate int
	tuiProg    *tea.Program
	ctx        context.Context
	cancel     context.CancelFunc
}

// New creates a new booth
func New(config Config) *Booth {
	if config.DiscoverTimeout <= 0 {
		config.DiscoverTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Booth{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Run renders the script and, with the TUI, keeps the booth open until the
// user quits
func (b *Booth) Run() error {
	defer b.close()

	if err := b.setup(); err != nil {
		return err
	}

	if !b.config.UseTUI {
		return b.renderOnce()
	}

	controls := ui.NewControls()
	b.tuiProg = ui.Run(controls)
	done := make(chan error, 1)
	go func() {
		_, err := b.tuiProg.Run()
		done <- err
	}()

	b.tuiProg.Send(b.scriptStatus())
	go b.forwardEvents()
	go func() {
		if err := b.render(); err != nil {
			log.Printf("Render failed: %v", err)
		}
	}()

	for {
		select {
		case action := <-controls.Actions:
			b.handleAction(action)
		case <-controls.Quit:
			return <-done
		case err := <-done:
			return err
		case <-b.ctx.Done():
			b.tuiProg.Quit()
			return <-done
		}
	}
}

// Stop ends the session
func (b *Booth) Stop() {
	b.cancel()
}

// setup picks the engine and builds the local studio
func (b *Booth) setup() error {
	cfg := b.config.Studio

	var engine config.Engine
	switch {
	case b.config.Offline:
		engine.Synth = synth.NewTone(cfg.Studio.SampleRate)
	case b.config.Server != "" || b.config.Discover:
		remote, err := b.connect()
		if err != nil {
			return err
		}
		engine.Synth = remote
	default:
		var err error
		if engine, err = cfg.Engine(); err != nil {
			return err
		}
	}

	st, err := store.Open(b.ctx, cfg.Store)
	if err != nil {
		return err
	}
	b.store = st

	ex, err := export.New(cfg.Studio.ExportDir)
	if err != nil {
		return err
	}
	b.export = ex

	var out output.Output
	if b.config.Play {
		out = output.NewOto()
	}

	// the booth decides when to play
	defaults := cfg.StudioDefaults()
	defaults.AutoPlay = false
	if b.remoteRate > 0 {
		// decode remote payloads at the rate the remote studio renders
		defaults.SampleRate = b.remoteRate
	}

	s, err := studio.New(b.ctx, studio.Config{
		Synth:     engine.Synth,
		Store:     st,
		Exporter:  ex,
		Output:    out,
		Analyzer:  engine.Analyzer,
		Assistant: engine.Assistant,
		Defaults:  defaults,
	})
	if err != nil {
		return err
	}
	b.studio = s
	if b.remote != nil {
		b.remote.ExpectSampleRate(s.Settings().SampleRate)
	}
	return nil
}

// connect finds the remote studio and follows its event feed
func (b *Booth) connect() (*client.Remote, error) {
	baseURL := b.config.Server
	if baseURL == "" {
		ctx, cancel := context.WithTimeout(b.ctx, b.config.DiscoverTimeout)
		defer cancel()

		log.Printf("Searching for studios on the local network...")
		mgr := discovery.NewManager(discovery.Config{ServiceName: b.config.Studio.Name})
		server, err := mgr.Find(ctx)
		if err != nil {
			return nil, err
		}
		log.Printf("Found studio %s at %s:%d", server.Name, server.Host, server.Port)
		baseURL = server.BaseURL()
	}

	remote, err := client.NewRemote(baseURL, b.config.Studio.Synth.Gemini.Timeout)
	if err != nil {
		return nil, err
	}
	info, err := remote.Info(b.ctx)
	if err != nil {
		return nil, fmt.Errorf("studio at %s is not answering: %w", baseURL, err)
	}
	log.Printf("Rendering through %s (%s, %dHz)", info.Name, info.Version, info.SampleRate)
	b.remote = remote
	if info.SampleRate == 16000 || info.SampleRate == 24000 {
		b.remoteRate = info.SampleRate
	}

	u, _ := url.Parse(baseURL)
	b.feed = client.NewClient(client.Config{ServerAddr: u.Host})
	if err := b.feed.Connect(); err != nil {
		// renders still work without the feed
		log.Printf("Studio event feed unavailable: %v", err)
		b.feed = nil
	}
	return remote, nil
}

// renderOnce renders, saves and plays the script without a TUI
func (b *Booth) renderOnce() error {
	if err := b.render(); err != nil {
		return err
	}
	if b.config.Play {
		return b.play()
	}
	return nil
}

// render runs the script through the studio and writes the requested file
func (b *Booth) render() error {
	ctx, cancel := context.WithTimeout(b.ctx, 2*time.Minute)
	defer cancel()

	r, err := b.studio.Render(ctx, b.config.Script)
	if err != nil {
		return err
	}
	log.Printf("Rendered %.1fs of %s at %dHz: %s", r.Duration.Seconds(), r.Voice, r.SampleRate, r.Path)

	if b.config.OutPath != "" {
		if err := os.WriteFile(b.config.OutPath, r.WAV, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", b.config.OutPath, err)
		}
		log.Printf("Saved render to %s", b.config.OutPath)
	}

	if b.config.Play && b.config.UseTUI {
		go func() {
			if err := b.play(); err != nil {
				log.Printf("Playback failed: %v", err)
			}
		}()
	}
	return nil
}

// play sends the current render to the speakers; Studio.Play returns once
// the output has drained
func (b *Booth) play() error {
	b.sendStatus(ui.StatusMsg{State: ui.StatePlaying})
	if err := b.studio.Play(b.ctx); err != nil {
		b.sendStatus(ui.StatusMsg{State: ui.StateFailed, Error: err.Error()})
		return err
	}
	return nil
}

// handleAction runs a TUI request off the UI goroutine
func (b *Booth) handleAction(action ui.Action) {
	switch action {
	case ui.ActionPlay:
		if !b.studio.HasOutput() {
			b.sendStatus(ui.StatusMsg{Error: studio.ErrNoOutput.Error()})
			return
		}
		go func() {
			if err := b.play(); err != nil {
				log.Printf("Playback failed: %v", err)
			}
		}()
	case ui.ActionRender:
		go func() {
			if err := b.render(); err != nil {
				log.Printf("Render failed: %v", err)
			}
		}()
	}
}

// forwardEvents mirrors studio events, and the remote feed if any, into the TUI
func (b *Booth) forwardEvents() {
	events, unsubscribe := b.studio.Subscribe()
	defer unsubscribe()

	var feed <-chan client.Event
	if b.feed != nil {
		feed = b.feed.Events
		connected := true
		b.sendStatus(ui.StatusMsg{Connected: &connected, ServerName: b.feed.Hello().Name})
	}

	for {
		select {
		case evt, ok := <-events:
			if !ok {
				return
			}
			b.tuiProg.Send(ui.EventMsg(evt))
		case _, ok := <-feed:
			if !ok {
				disconnected := false
				b.sendStatus(ui.StatusMsg{Connected: &disconnected})
				feed = nil
			}
		case <-b.ctx.Done():
			return
		}
	}
}

// scriptStatus describes the script for the TUI header
func (b *Booth) scriptStatus() ui.StatusMsg {
	script := b.config.Script
	msg := ui.StatusMsg{
		Engine: b.engineName(),
		Voice:  script.Voice,
		Words:  studio.ScriptStats(script).Words,
	}
	if msg.Voice == "" {
		msg.Voice = "Zephyr"
	}
	if len(script.Dialogue) > 0 {
		msg.Voice = fmt.Sprintf("Dialogue (%d speakers)", len(script.Speakers))
	}
	if script.Settings != nil {
		msg.Emotion = string(script.Settings.Emotion)
		msg.Rate = script.Settings.Rate
		msg.Pitch = string(script.Settings.Pitch)
	}
	return msg
}

func (b *Booth) engineName() string {
	switch {
	case b.config.Offline:
		return config.EngineTone
	case b.remote != nil:
		return "remote " + b.remote.BaseURL()
	default:
		return b.config.Studio.Synth.Engine
	}
}

func (b *Booth) sendStatus(msg ui.StatusMsg) {
	if b.tuiProg != nil {
		b.tuiProg.Send(msg)
	}
}

func (b *Booth) close() {
	b.cancel()
	if b.feed != nil {
		b.feed.Close()
	}
	if b.studio != nil {
		if err := b.studio.Close(); err != nil {
			log.Printf("Error closing studio: %v", err)
		}
	}
	if b.store == nil {
		return
	}
	persistent := b.store.Persistent()
	b.store.Close()

	// scratch renders go unless history points at them or the user chose the directory
	if b.export != nil && !persistent && b.config.Studio.Studio.ExportDir == "" {
		if err := b.export.Cleanup(); err != nil {
			log.Printf("Error removing renders: %v", err)
		}
	}
}
