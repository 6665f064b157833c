// ABOUTME: Bubbletea model for the render booth TUI
// ABOUTME: Defines render state, event handling and the booth view
package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vocalize-studio/vocalize-go/internal/studio"
)

// Booth states
const (
	StateIdle      = "idle"
	StateRendering = "rendering"
	StateReady     = "ready"
	StatePlaying   = "playing"
	StateFailed    = "failed"
)

// Model represents the TUI state
type Model struct {
	// Engine
	connected  bool
	serverName string
	engine     string

	// Script
	voice   string
	emotion string
	rate    float64
	pitch   string
	words   int

	// Render
	state      string
	renderID   string
	duration   float64
	sampleRate int
	path       string
	lastError  string

	// Stats
	renders  int
	failures int

	// Debug
	showDebug bool
	lastEvent string

	controls *Controls

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	case EventMsg:
		m.applyEvent(studio.Event(msg))
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderScript()
	s += m.renderResult()
	s += m.renderStats()

	if m.showDebug {
		s += m.renderDebug()
	}

	s += m.renderHelp()

	return s
}

// renderHeader renders the engine and booth state
func (m Model) renderHeader() string {
	engine := m.engine
	if m.serverName != "" {
		status := "disconnected"
		if m.connected {
			status = "connected"
		}
		engine = fmt.Sprintf("%s (%s)", m.serverName, status)
	}

	stateIcon := "·"
	switch m.state {
	case StateRendering:
		stateIcon = "…"
	case StateReady:
		stateIcon = "✓"
	case StatePlaying:
		stateIcon = "▶"
	case StateFailed:
		stateIcon = "✗"
	}

	return fmt.Sprintf(`┌─ Vocalize Studio ────────────────────────────────────┐
│ Engine: %-45s │
│ State:  %s %-43s │
├──────────────────────────────────────────────────────┤
`, truncate(engine, 45), stateIcon, m.state)
}

// renderScript renders the voice and delivery settings
func (m Model) renderScript() string {
	if m.voice == "" {
		return "│ No script                                            │\n"
	}

	s := fmt.Sprintf("│ Voice:    %-42s │\n", truncate(m.voice, 42))
	s += fmt.Sprintf("│ Delivery: %-42s │\n",
		truncate(fmt.Sprintf("%s, %s pitch, %.2fx", m.emotion, m.pitch, m.rate), 42))
	s += fmt.Sprintf("│ Words:    %-42d │\n", m.words)
	return s
}

// renderResult renders the last render or failure
func (m Model) renderResult() string {
	s := "│                                                      │\n"
	switch {
	case m.state == StateFailed:
		s += fmt.Sprintf("│ Error: %-45s │\n", truncate(m.lastError, 45))
	case m.renderID != "":
		s += fmt.Sprintf("│ Render: %.1fs at %dHz%-30s │\n", m.duration, m.sampleRate, "")
		s += fmt.Sprintf("│ File:   %-44s │\n", truncate(filepath.Base(m.path), 44))
		s += fmt.Sprintf("│ Length: [%s]%-32s │\n", renderBar(int(m.duration), 30, 10), "")
	default:
		s += "│ Nothing rendered yet                                 │\n"
	}
	return s
}

// renderStats renders session statistics
func (m Model) renderStats() string {
	return fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ Stats:  Renders: %d  Failures: %d%-19s │
│                                                      │
`, m.renders, m.failures, "")
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ p:Play  r:Render again  d:Debug  q:Quit              │
└──────────────────────────────────────────────────────┘
`
}

// renderDebug renders debug information
func (m Model) renderDebug() string {
	return fmt.Sprintf(`│ DEBUG:                                               │
│   Render ID:  %-39s │
│   Last event: %-39s │
`, truncate(m.renderID, 39), truncate(m.lastEvent, 39))
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.controls != nil {
			select {
			case m.controls.Quit <- QuitMsg{}:
			default:
			}
		}
		return m, tea.Quit
	case "p":
		if m.renderID != "" && m.state != StatePlaying && m.state != StateRendering {
			m.send(ActionPlay)
		}
	case "r":
		if m.state != StateRendering {
			m.send(ActionRender)
		}
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// send queues an action without blocking the UI
func (m Model) send(action Action) {
	if m.controls == nil {
		return
	}
	select {
	case m.controls.Actions <- action:
	default:
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Connected != nil {
		m.connected = *msg.Connected
	}
	if msg.ServerName != "" {
		m.serverName = msg.ServerName
	}
	if msg.Engine != "" {
		m.engine = msg.Engine
	}
	if msg.Voice != "" {
		m.voice = msg.Voice
		m.emotion = msg.Emotion
		m.rate = msg.Rate
		m.pitch = msg.Pitch
		m.words = msg.Words
	}
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.Error != "" {
		m.lastError = msg.Error
	}
}

// applyEvent follows the studio event feed
func (m *Model) applyEvent(evt studio.Event) {
	m.lastEvent = evt.Type

	switch evt.Type {
	case studio.EventRenderStart:
		m.state = StateRendering
		m.lastError = ""
	case studio.EventRenderComplete:
		info, ok := evt.Payload.(studio.RenderInfo)
		if !ok {
			return
		}
		m.renders++
		m.renderID = info.ID
		m.duration = info.Duration
		m.sampleRate = info.SampleRate
		m.path = info.Path
		m.state = StateReady
	case studio.EventRenderError:
		m.failures++
		m.state = StateFailed
		if info, ok := evt.Payload.(studio.ErrorInfo); ok {
			m.lastError = info.Error
		}
	case studio.EventPlaybackDone:
		if m.state == StatePlaying {
			m.state = StateReady
		}
	}
}

// StatusMsg updates TUI state
type StatusMsg struct {
	Connected  *bool
	ServerName string
	Engine     string
	Voice      string
	Emotion    string
	Rate       float64
	Pitch      string
	Words      int
	State      string
	Error      string
}

// EventMsg carries a studio event into the TUI
type EventMsg studio.Event

// Utility functions
func renderBar(value, max, width int) string {
	if max <= 0 {
		return strings.Repeat("░", width)
	}
	filled := min((value*width)/max, width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	r := []rune(s)
	if len(r) <= length {
		return s
	}
	return string(r[:length-3]) + "..."
}
