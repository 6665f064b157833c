// ABOUTME: REST handlers for the studio API
// ABOUTME: Maps HTTP requests onto studio operations and studio errors onto status codes
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vocalize-studio/vocalize-go/internal/protocol"
	"github.com/vocalize-studio/vocalize-go/internal/store"
	"github.com/vocalize-studio/vocalize-go/internal/studio"
	"github.com/vocalize-studio/vocalize-go/internal/version"
	"github.com/vocalize-studio/vocalize-go/pkg/audio"
	"github.com/vocalize-studio/vocalize-go/pkg/audio/decode"
	"github.com/vocalize-studio/vocalize-go/pkg/audio/encode"
	"github.com/vocalize-studio/vocalize-go/pkg/audio/resample"
)

const (
	maxBodySize   = 32 << 20
	renderTimeout = 2 * time.Minute
)

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/info", s.handleInfo)
	s.mux.HandleFunc("GET /api/voices", s.handleVoices)
	s.mux.HandleFunc("POST /api/favorites/{voice}", s.handleToggleFavorite)
	s.mux.HandleFunc("POST /api/stats", s.handleStats)
	s.mux.HandleFunc("POST /api/synthesize", s.handleSynthesize)
	s.mux.HandleFunc("POST /api/preview/{voice}", s.handlePreview)
	s.mux.HandleFunc("GET /api/renders/current", s.handleCurrent)
	s.mux.HandleFunc("POST /api/renders/current/play", s.handlePlay)
	s.mux.HandleFunc("GET /api/history", s.handleHistory)
	s.mux.HandleFunc("DELETE /api/history/{id}", s.handleRemoveHistory)
	s.mux.HandleFunc("GET /api/settings", s.handleSettings)
	s.mux.HandleFunc("PUT /api/settings", s.handleUpdateSettings)
	s.mux.HandleFunc("GET /api/presets", s.handlePresets)
	s.mux.HandleFunc("POST /api/presets", s.handleSavePreset)
	s.mux.HandleFunc("DELETE /api/presets/{id}", s.handleDeletePreset)
	s.mux.HandleFunc("GET /api/ratings", s.handleRatings)
	s.mux.HandleFunc("POST /api/ratings", s.handleRate)
	s.mux.HandleFunc("GET /api/clones", s.handleClones)
	s.mux.HandleFunc("POST /api/clones", s.handleAddClone)
	s.mux.HandleFunc("DELETE /api/clones/{id}", s.handleRemoveClone)
	s.mux.HandleFunc("POST /api/phonetic", s.handlePhonetic)
	s.mux.HandleFunc("POST /api/summarize", s.handleSummarize)
	s.mux.HandleFunc("POST /api/architect", s.handleArchitect)
	s.mux.HandleFunc("POST /api/codec/wav", s.handleCodecWAV)
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// statusFor maps studio and codec errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, studio.ErrInvalid),
		errors.Is(err, studio.ErrUnknownVoice),
		errors.Is(err, studio.ErrTooManySpeakers):
		return http.StatusBadRequest
	case errors.Is(err, studio.ErrScriptTooLong):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, studio.ErrSynthesis), errors.Is(err, audio.ErrEmptyAudio):
		return http.StatusBadGateway
	case errors.Is(err, audio.ErrDecode), errors.Is(err, audio.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, studio.ErrNotFound), errors.Is(err, studio.ErrNoRender):
		return http.StatusNotFound
	case errors.Is(err, studio.ErrNoOutput):
		return http.StatusConflict
	case errors.Is(err, studio.ErrUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		log.Printf("API error (%d): %v", status, err)
	}
	writeJSON(w, status, protocol.ErrorResponse{Error: err.Error()})
}

// readJSON decodes a bounded request body
func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: bad request body: %w", studio.ErrInvalid, err)
	}
	return nil
}

func writeWAV(w http.ResponseWriter, id string, wav []byte) {
	w.Header().Set("Content-Type", audio.MIMETypeWAV)
	w.Header().Set("Content-Length", strconv.Itoa(len(wav)))
	if id != "" {
		w.Header().Set("X-Render-ID", id)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(wav)
}

// responseFormat reads ?format, which selects WAV (default) or base64 PCM JSON.
// PCM is the unfaded synthesizer payload so the caller can run its own codec.
func responseFormat(r *http.Request) (string, error) {
	switch format := r.URL.Query().Get("format"); format {
	case "", "wav":
		return "wav", nil
	case "pcm":
		return "pcm", nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q", studio.ErrInvalid, format)
	}
}

func writeRender(w http.ResponseWriter, format string, render *studio.Render) {
	if format == "pcm" {
		writeJSON(w, http.StatusOK, protocol.PCMResponse{
			ID:         render.ID,
			SampleRate: render.SampleRate,
			Channels:   1,
			Audio:      audio.EncodeBase64(render.Source),
		})
		return
	}
	writeWAV(w, render.ID, render.WAV)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, protocol.Info{
		ServerID:     s.serverID,
		Name:         s.config.Name,
		Product:      version.Product,
		Manufacturer: version.Manufacturer,
		Version:      version.Version,
		SampleRate:   s.studio.Settings().SampleRate,
		Persistent:   s.studio.Persistent(),
		Uptime:       time.Since(s.startTime).Seconds(),
	})
}

func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	voices, err := s.studio.Voices(r.Context(), r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, voices)
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("voice")
	favorite, err := s.studio.ToggleFavorite(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.FavoriteResponse{Voice: id, Favorite: favorite})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var req studio.Request
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, studio.ScriptStats(req))
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	format, err := responseFormat(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req studio.Request
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	render, err := s.studio.Render(ctx, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeRender(w, format, render)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	format, err := responseFormat(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	render, err := s.studio.Preview(ctx, r.PathValue("voice"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeRender(w, format, render)
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	format, err := responseFormat(r)
	if err != nil {
		writeError(w, err)
		return
	}

	render, err := s.studio.Current()
	if err != nil {
		writeError(w, err)
		return
	}
	writeRender(w, format, render)
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	if !s.studio.HasOutput() {
		writeError(w, studio.ErrNoOutput)
		return
	}
	if _, err := s.studio.Current(); err != nil {
		writeError(w, err)
		return
	}

	// playback outlives the request
	go func() {
		if err := s.studio.Play(context.Background()); err != nil {
			log.Printf("Playback failed: %v", err)
		}
	}()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, fmt.Errorf("%w: bad limit %q", studio.ErrInvalid, v))
			return
		}
		limit = n
	}

	items, err := s.studio.History(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []store.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleRemoveHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.studio.RemoveHistory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.studio.Settings())
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	settings := s.studio.Settings()
	if err := readJSON(w, r, &settings); err != nil {
		writeError(w, err)
		return
	}
	if err := s.studio.UpdateSettings(r.Context(), settings); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.studio.Settings())
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.studio.Presets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if presets == nil {
		presets = []studio.Preset{}
	}
	writeJSON(w, http.StatusOK, presets)
}

func (s *Server) handleSavePreset(w http.ResponseWriter, r *http.Request) {
	var req protocol.PresetRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	preset, err := s.studio.SavePreset(r.Context(), req.Name, req.Settings)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, preset)
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	if err := s.studio.DeletePreset(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := s.studio.Ratings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ratings)
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	var req protocol.RatingRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.studio.Rate(r.Context(), req.Voice, req.Rating); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClones(w http.ResponseWriter, r *http.Request) {
	clones, err := s.studio.Clones(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if clones == nil {
		clones = []studio.Clone{}
	}
	writeJSON(w, http.StatusOK, clones)
}

func (s *Server) handleAddClone(w http.ResponseWriter, r *http.Request) {
	var req protocol.CloneRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	clone, err := s.studio.AddClone(r.Context(), req.Name, req.Profile, req.Samples)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, clone)
}

func (s *Server) handleRemoveClone(w http.ResponseWriter, r *http.Request) {
	if err := s.studio.RemoveClone(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePhonetic(w http.ResponseWriter, r *http.Request) {
	s.handleTextTool(w, r, s.studio.Phonetic)
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	s.handleTextTool(w, r, s.studio.Summarize)
}

// handleTextTool runs a text-in, text-out studio tool
func (s *Server) handleTextTool(w http.ResponseWriter, r *http.Request, tool func(context.Context, string) (string, error)) {
	var req protocol.TextRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	out, err := tool(ctx, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.TextResponse{Text: out})
}

// architectRequest asks for a reworked script
type architectRequest struct {
	Instruction string         `json:"instruction"`
	Current     studio.Request `json:"current"`
}

func (s *Server) handleArchitect(w http.ResponseWriter, r *http.Request) {
	var req architectRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	plan, err := s.studio.Architect(ctx, req.Instruction, req.Current)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// handleCodecWAV wraps a base64 PCM body in a WAV file without synthesis.
// sample_rate defaults to the studio rate and channels to mono; target_rate
// resamples before encoding.
func (s *Server) handleCodecWAV(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sampleRate := s.studio.Settings().SampleRate
	channels := 1
	targetRate := 0

	if v := query.Get("sample_rate"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, fmt.Errorf("%w: bad sample_rate %q", audio.ErrInvalidFormat, v))
			return
		}
		sampleRate = n
	}
	if v := query.Get("channels"); v != "" {
		n, err := strconv.Atoi(v)
		// the WAV header stores the channel count in 16 bits
		if err != nil || n < 1 || n > math.MaxUint16 {
			writeError(w, fmt.Errorf("%w: bad channels %q", audio.ErrInvalidFormat, v))
			return
		}
		channels = n
	}

	if v := query.Get("target_rate"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, fmt.Errorf("%w: bad target_rate %q", audio.ErrInvalidFormat, v))
			return
		}
		targetRate = n
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %w", studio.ErrInvalid, err))
		return
	}

	raw, err := audio.DecodeBase64(strings.TrimSpace(string(body)))
	if err != nil {
		writeError(w, err)
		return
	}
	buf, err := decode.DecodePCM(raw, sampleRate, channels)
	if err != nil {
		writeError(w, err)
		return
	}
	if targetRate > 0 {
		if buf, err = resample.To(buf, targetRate); err != nil {
			writeError(w, err)
			return
		}
	}

	writeWAV(w, "", encode.EncodeWAV(buf))
}
