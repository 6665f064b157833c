// ABOUTME: Studio API wire types
// ABOUTME: Shared by the HTTP server, the websocket feed and the remote client
package protocol

import (
	"github.com/vocalize-studio/vocalize-go/internal/synth"
	"github.com/vocalize-studio/vocalize-go/internal/voice"
)

// Message is the wrapper for every websocket feed message
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// ServerHello is the first feed message a client receives
type ServerHello struct {
	ServerID string `json:"server_id"`
	Name     string `json:"name"`
	Version  string `json:"version"`
}

// Info describes a studio server
type Info struct {
	ServerID     string  `json:"server_id"`
	Name         string  `json:"name"`
	Product      string  `json:"product"`
	Manufacturer string  `json:"manufacturer"`
	Version      string  `json:"version"`
	SampleRate   int     `json:"sample_rate"`
	Persistent   bool    `json:"persistent"`
	Uptime       float64 `json:"uptime"` // seconds
}

// PCMResponse carries a render's synthesizer payload: base64 16-bit
// little-endian PCM before the edge fade, meant to be decoded at SampleRate
type PCMResponse struct {
	ID         string `json:"id"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	Audio      string `json:"audio"`
}

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error string `json:"error"`
}

// PresetRequest saves delivery settings under a name
type PresetRequest struct {
	Name     string         `json:"name"`
	Settings voice.Settings `json:"settings"`
}

// TextRequest carries script text for the text tools
type TextRequest struct {
	Text string `json:"text"`
}

// TextResponse is a text tool's answer
type TextResponse struct {
	Text string `json:"text"`
}

// RatingRequest rates a voice
type RatingRequest struct {
	Voice  string `json:"voice"`
	Rating int    `json:"rating"`
}

// FavoriteResponse reports a voice's favorite state after a toggle
type FavoriteResponse struct {
	Voice    string `json:"voice"`
	Favorite bool   `json:"favorite"`
}

// CloneRequest creates a cloned voice from recorded samples
type CloneRequest struct {
	Name    string         `json:"name"`
	Profile string         `json:"profile,omitempty"`
	Samples []synth.Sample `json:"samples"`
}
