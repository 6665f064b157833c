// ABOUTME: WebSocket client for the studio event feed
// ABOUTME: Handles connection, the server hello and event routing
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vocalize-studio/vocalize-go/internal/protocol"
)

// Config holds feed client configuration
type Config struct {
	ServerAddr string // host:port
	Path       string // defaults to /ws
}

// Event is a studio event as it arrives on the feed. Payload is left raw
// so callers decode only the types they care about.
type Event struct {
	Type    string
	Payload json.RawMessage
}

// Decode unmarshals the event payload
func (e Event) Decode(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("event %s has no payload", e.Type)
	}
	return json.Unmarshal(e.Payload, v)
}

// Client follows a studio server's event feed
type Client struct {
	config Config
	conn   *websocket.Conn
	mu     sync.RWMutex

	// Events delivers feed messages after the hello
	Events chan Event

	// State
	hello     protocol.ServerHello
	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// wireMessage mirrors protocol.Message with a raw payload
type wireMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewClient creates a new feed client
func NewClient(config Config) *Client {
	if config.Path == "" {
		config.Path = "/ws"
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config: config,
		Events: make(chan Event, 32),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Connect dials the feed and waits for the server hello
func (c *Client) Connect() error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: c.config.Path}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.DialContext(c.ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.readMessages()
	return nil
}

// handshake reads the server/hello that opens every feed
func (c *Client) handshake() error {
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read server/hello: %w", err)
	}
	c.conn.SetReadDeadline(time.Time{}) // Clear deadline

	var msg wireMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("failed to parse server/hello: %w", err)
	}
	if msg.Type != "server/hello" {
		return fmt.Errorf("expected server/hello, got %s", msg.Type)
	}

	var hello protocol.ServerHello
	if err := json.Unmarshal(msg.Payload, &hello); err != nil {
		return fmt.Errorf("failed to parse server/hello: %w", err)
	}

	c.mu.Lock()
	c.hello = hello
	c.mu.Unlock()

	log.Printf("Connected to studio %s (%s)", hello.Name, hello.Version)
	return nil
}

// Hello returns the greeting the server sent on connect
func (c *Client) Hello() protocol.ServerHello {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hello
}

// readMessages routes feed messages until the connection drops. Events
// closes when it returns.
func (c *Client) readMessages() {
	defer close(c.Events)
	defer c.Close()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.ctx.Done():
			default:
				log.Printf("Read error: %v", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg wireMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Failed to parse feed message: %v", err)
			continue
		}

		select {
		case c.Events <- Event{Type: msg.Type, Payload: msg.Payload}:
		case <-c.ctx.Done():
			return
		}
	}
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.cancel()
		c.conn.Close()
		log.Printf("Connection closed")
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
