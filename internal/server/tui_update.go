// ABOUTME: TUI update helpers for server
// ABOUTME: Functions to send studio state updates to TUI
package server

import "sort"

// status snapshots the server for the TUI
func (s *Server) status() ServerStatus {
	s.clientsMu.RLock()
	clients := make([]string, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, client.RemoteAddr)
	}
	s.clientsMu.RUnlock()
	sort.Strings(clients)

	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	return ServerStatus{
		Name:       s.config.Name,
		Port:       s.config.Port,
		SampleRate: s.studio.Settings().SampleRate,
		Clients:    clients,
		Renders:    s.renders,
		Failures:   s.failures,
		LastRender: s.lastRender,
	}
}

// updateTUI sends current server state to TUI
func (s *Server) updateTUI() {
	if s.tui == nil {
		return
	}
	s.tui.Update(s.status())
}
