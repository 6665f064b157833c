// ABOUTME: Tests for the studio feed client
// ABOUTME: Tests connection, the hello handshake and event routing
package client

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vocalize-studio/vocalize-go/internal/protocol"
	"github.com/vocalize-studio/vocalize-go/internal/studio"
)

// feedServer serves a websocket that sends the given messages then waits
func feedServer(t *testing.T, messages ...protocol.Message) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, msg := range messages {
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestNewClient(t *testing.T) {
	client := NewClient(Config{ServerAddr: "localhost:8927"})
	if client == nil {
		t.Fatal("expected client to be created")
	}
	if client.config.Path != "/ws" {
		t.Errorf("expected default path /ws, got %s", client.config.Path)
	}
	if client.IsConnected() {
		t.Error("new client should not be connected")
	}
}

func TestClientReceivesEvents(t *testing.T) {
	hello := protocol.Message{Type: "server/hello", Payload: protocol.ServerHello{ServerID: "abc", Name: "Booth", Version: "0.3.0"}}
	render := protocol.Message{Type: studio.EventRenderComplete, Payload: studio.RenderInfo{ID: "r1", Voice: "Kore", Mode: "single"}}
	ts := feedServer(t, hello, render)

	client := NewClient(Config{ServerAddr: strings.TrimPrefix(ts.URL, "http://")})
	if err := client.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	if got := client.Hello(); got.Name != "Booth" || got.ServerID != "abc" {
		t.Errorf("unexpected hello %+v", got)
	}
	if !client.IsConnected() {
		t.Error("expected connected client")
	}

	select {
	case evt := <-client.Events:
		if evt.Type != studio.EventRenderComplete {
			t.Fatalf("expected %s, got %s", studio.EventRenderComplete, evt.Type)
		}
		var info studio.RenderInfo
		if err := evt.Decode(&info); err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if info.ID != "r1" || info.Voice != "Kore" {
			t.Errorf("unexpected payload %+v", info)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestClientRejectsMissingHello(t *testing.T) {
	ts := feedServer(t, protocol.Message{Type: studio.EventHistoryUpdate})

	client := NewClient(Config{ServerAddr: strings.TrimPrefix(ts.URL, "http://")})
	if err := client.Connect(); err == nil {
		client.Close()
		t.Fatal("expected handshake error")
	}
	if client.IsConnected() {
		t.Error("client should be closed after a failed handshake")
	}
}

func TestEventsCloseOnDisconnect(t *testing.T) {
	ts := feedServer(t, protocol.Message{Type: "server/hello", Payload: protocol.ServerHello{Name: "Booth"}})

	client := NewClient(Config{ServerAddr: strings.TrimPrefix(ts.URL, "http://")})
	if err := client.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	client.Close()

	select {
	case _, ok := <-client.Events:
		if ok {
			t.Error("expected closed event channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event channel not closed")
	}
}
