// ABOUTME: HTTP client for a remote studio server
// ABOUTME: Renders scripts on another studio and doubles as a synth.Synthesizer
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vocalize-studio/vocalize-go/internal/protocol"
	"github.com/vocalize-studio/vocalize-go/internal/studio"
	"github.com/vocalize-studio/vocalize-go/internal/synth"
	"github.com/vocalize-studio/vocalize-go/pkg/audio"
)

// ErrCloneUnsupported is returned when a clone profile would have to cross
// the wire. Remote studios render their own clones by ID.
var ErrCloneUnsupported = errors.New("clone profiles cannot be sent to a remote studio")

// Remote talks to a studio server's REST API
type Remote struct {
	baseURL    string
	http       *http.Client
	sampleRate int
}

// NewRemote creates a client for an API base URL such as
// http://host:8927/api, the form discovery.ServerInfo.BaseURL returns
func NewRemote(baseURL string, timeout time.Duration) (*Remote, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid studio URL %q", baseURL)
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Remote{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// BaseURL returns the API root this client talks to
func (r *Remote) BaseURL() string {
	return r.baseURL
}

// ExpectSampleRate makes Synthesize reject payloads the server rendered at
// any other rate. Zero accepts every rate.
func (r *Remote) ExpectSampleRate(rate int) {
	r.sampleRate = rate
}

// Info fetches the server description
func (r *Remote) Info(ctx context.Context) (protocol.Info, error) {
	var info protocol.Info
	err := r.do(ctx, http.MethodGet, "/info", nil, &info)
	return info, err
}

// Voices lists the server's voice gallery
func (r *Remote) Voices(ctx context.Context, order string) ([]studio.VoiceInfo, error) {
	path := "/voices"
	if order != "" {
		path += "?sort=" + url.QueryEscape(order)
	}
	var voices []studio.VoiceInfo
	err := r.do(ctx, http.MethodGet, path, nil, &voices)
	return voices, err
}

// Render asks the server to render a script and returns its PCM payload
func (r *Remote) Render(ctx context.Context, req studio.Request) (protocol.PCMResponse, error) {
	var pcm protocol.PCMResponse
	err := r.do(ctx, http.MethodPost, "/synthesize?format=pcm", req, &pcm)
	return pcm, err
}

// Synthesize implements synth.Synthesizer by rendering on the server
func (r *Remote) Synthesize(ctx context.Context, req synth.Request) (string, error) {
	if req.Mode() == synth.ModeClone {
		return "", ErrCloneUnsupported
	}

	settings := req.Settings
	pcm, err := r.Render(ctx, studio.Request{
		Text:     req.Text,
		Voice:    string(req.Voice),
		Settings: &settings,
		Speakers: req.Speakers,
		Dialogue: req.Dialogue,
	})
	if err != nil {
		return "", err
	}
	if r.sampleRate > 0 && pcm.SampleRate != r.sampleRate {
		return "", fmt.Errorf("%w: studio renders at %dHz, expected %dHz",
			audio.ErrInvalidFormat, pcm.SampleRate, r.sampleRate)
	}
	return pcm.Audio, nil
}

// do sends a JSON request and decodes a JSON answer. Failed calls come back
// as *synth.StatusError so retries can tell server faults from bad input.
func (r *Remote) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("studio request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var e protocol.ErrorResponse
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &synth.StatusError{Code: resp.StatusCode, Body: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode studio response: %w", err)
	}
	return nil
}
