// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the render booth
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Action is a request from the booth to the render loop
type Action string

const (
	ActionPlay   Action = "play"
	ActionRender Action = "render"
)

// QuitMsg signals that the user left the booth
type QuitMsg struct{}

// Controls holds channels from the TUI back to the render loop
type Controls struct {
	Actions chan Action
	Quit    chan QuitMsg
}

// NewControls creates a new control handler
func NewControls() *Controls {
	return &Controls{
		Actions: make(chan Action, 10),
		Quit:    make(chan QuitMsg, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(controls *Controls) Model {
	return Model{
		state:    StateIdle,
		engine:   "local",
		controls: controls,
	}
}

// Run creates the TUI program; the caller starts it with p.Run
func Run(controls *Controls) *tea.Program {
	return tea.NewProgram(NewModel(controls), tea.WithAltScreen())
}
