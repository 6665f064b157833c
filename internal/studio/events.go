// ABOUTME: Studio event feed
// ABOUTME: Fans out render and library events to websocket clients and the TUI
package studio

import (
	"log"
	"sync"
)

// Event types
const (
	EventRenderStart     = "render/start"
	EventRenderComplete  = "render/complete"
	EventRenderError     = "render/error"
	EventPlaybackDone    = "playback/complete"
	EventHistoryUpdate   = "history/update"
	EventSettingsUpdate  = "settings/update"
	EventLibraryUpdate   = "library/update"
	subscriberBufferSize = 32
)

// Event is one message on the studio feed
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// RenderInfo summarizes a render for event payloads
type RenderInfo struct {
	ID         string  `json:"id"`
	Mode       string  `json:"mode"`
	Voice      string  `json:"voice"`
	Text       string  `json:"text"`
	SampleRate int     `json:"sample_rate"`
	Duration   float64 `json:"duration"`
	Path       string  `json:"path,omitempty"`
	Preview    bool    `json:"preview,omitempty"`
}

// ErrorInfo is the payload of render/error
type ErrorInfo struct {
	Mode  string `json:"mode"`
	Voice string `json:"voice,omitempty"`
	Error string `json:"error"`
}

type broadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan Event)}
}

func (b *broadcaster) subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberBufferSize)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
		})
	}
}

// publish never blocks; slow subscribers miss events
func (b *broadcaster) publish(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			log.Printf("Subscriber %d is slow, dropping %s event", id, evt.Type)
		}
	}
}

func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}
