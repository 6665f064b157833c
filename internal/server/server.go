// ABOUTME: Studio HTTP server
// ABOUTME: Serves the REST API and websocket event feed, advertises itself over mDNS
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vocalize-studio/vocalize-go/internal/discovery"
	"github.com/vocalize-studio/vocalize-go/internal/studio"
	"github.com/vocalize-studio/vocalize-go/internal/version"
)

// Config holds server configuration
type Config struct {
	Port       int
	Name       string
	EnableMDNS bool
	Debug      bool
	UseTUI     bool
}

// Server exposes a studio over HTTP
type Server struct {
	config   Config
	serverID string
	studio   *studio.Studio

	// WebSocket upgrader
	upgrader websocket.Upgrader

	// HTTP server
	httpServer *http.Server
	mux        *http.ServeMux

	// Event feed clients
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// Render stats for the TUI
	statsMu    sync.Mutex
	renders    int
	failures   int
	lastRender string

	// mDNS discovery
	mdnsManager *discovery.Manager

	// TUI
	tui       *ServerTUI
	startTime time.Time

	// Control
	stopChan   chan struct{}
	stopOnce   sync.Once
	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

// New creates a server for a studio and registers its routes
func New(config Config, st *studio.Studio) *Server {
	s := &Server{
		config:   config,
		serverID: uuid.New().String(),
		studio:   st,
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin != "" && config.Debug {
					log.Printf("[DEBUG] Accepting WebSocket from origin: %s", origin)
				}
				// studios run on trusted local networks
				return true
			},
		},
		clients:   make(map[string]*Client),
		startTime: time.Now(),
		stopChan:  make(chan struct{}),
	}
	s.routes()
	return s
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start runs the server until Stop is called, the TUI quits or the
// listener fails
func (s *Server) Start() error {
	if s.config.UseTUI {
		s.tui = NewServerTUI()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.tui.Start(s.config.Name, s.config.Port); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()

		// Give TUI time to initialize
		time.Sleep(100 * time.Millisecond)
	}

	log.Printf("Studio server starting: %s (ID: %s)", s.config.Name, s.serverID)

	if s.config.EnableMDNS {
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        s.config.Port,
			Version:     version.Version,
		})

		if err := s.mdnsManager.Advertise(); err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		} else {
			log.Printf("mDNS advertisement started")
		}
	}

	unsubscribe := s.startRelay()
	s.updateTUI()

	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Printf("Studio API listening on %s", addr)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	var serverErr error
	var tuiQuitChan <-chan struct{}
	if s.tui != nil {
		tuiQuitChan = s.tui.QuitChan()
	}

	select {
	case <-s.stopChan:
		log.Printf("Server shutting down...")
	case <-tuiQuitChan:
		log.Printf("TUI quit requested, shutting down...")
	case err := <-errChan:
		log.Printf("HTTP server error: %v", err)
		serverErr = err
	}

	// Mark server as shutting down to reject new connections
	s.shutdownMu.Lock()
	s.isShutdown = true
	s.shutdownMu.Unlock()

	if s.tui != nil {
		s.tui.Stop()
	}

	if s.mdnsManager != nil {
		s.mdnsManager.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	unsubscribe()
	s.closeClients()
	s.wg.Wait()
	log.Printf("Server stopped cleanly")

	if serverErr != nil {
		return fmt.Errorf("HTTP server failed: %w", serverErr)
	}
	return nil
}

// Stop stops the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// startRelay forwards studio events to websocket clients and the TUI. The
// returned function ends the relay.
func (s *Server) startRelay() func() {
	events, unsubscribe := s.studio.Subscribe()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.relayEvents(events)
	}()
	return unsubscribe
}

// relayEvents forwards studio events until the feed closes
func (s *Server) relayEvents(events <-chan studio.Event) {
	for evt := range events {
		switch evt.Type {
		case studio.EventRenderComplete:
			s.statsMu.Lock()
			s.renders++
			if info, ok := evt.Payload.(studio.RenderInfo); ok {
				s.lastRender = fmt.Sprintf("%s (%s, %.1fs)", info.Voice, info.Mode, info.Duration)
			}
			s.statsMu.Unlock()
		case studio.EventRenderError:
			s.statsMu.Lock()
			s.failures++
			s.statsMu.Unlock()
		}

		if s.config.Debug {
			log.Printf("[DEBUG] Studio event: %s", evt.Type)
		}
		s.broadcast(evt)
		s.updateTUI()
	}
}
