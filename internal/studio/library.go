// ABOUTME: Voice library kept by the studio
// ABOUTME: Presets, ratings, usage counts, favorites and the sorted voice gallery
package studio

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/vocalize-studio/vocalize-go/internal/store"
	"github.com/vocalize-studio/vocalize-go/internal/voice"
)

// Preset is a named set of delivery settings
type Preset struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Settings voice.Settings `json:"settings"`
}

// Gallery sort orders
const (
	SortDefault      = ""
	SortNameAsc      = "name_asc"
	SortNameDesc     = "name_desc"
	SortHighestRated = "highest_rated"
	SortMostUsed     = "most_used"
)

// VoiceInfo is one voice in the gallery
type VoiceInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Base        string `json:"base"`
	Personality string `json:"personality,omitempty"`
	Clone       bool   `json:"clone"`
	Favorite    bool   `json:"favorite"`
	Rating      int    `json:"rating"`
	Usage       int    `json:"usage"`
}

// Presets returns saved presets in creation order
func (s *Studio) Presets(ctx context.Context) ([]Preset, error) {
	var presets []Preset
	if _, err := s.store.GetJSON(ctx, store.KeyPresets, &presets); err != nil {
		return nil, err
	}
	return presets, nil
}

// SavePreset stores settings under a name
func (s *Studio) SavePreset(ctx context.Context, name string, settings voice.Settings) (Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Preset{}, fmt.Errorf("%w: preset name is required", ErrInvalid)
	}
	if err := settings.Validate(); err != nil {
		return Preset{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	s.libMu.Lock()
	defer s.libMu.Unlock()

	presets, err := s.Presets(ctx)
	if err != nil {
		return Preset{}, err
	}
	preset := Preset{ID: uuid.New().String(), Name: name, Settings: settings}
	presets = append(presets, preset)
	if err := s.store.PutJSON(ctx, store.KeyPresets, presets); err != nil {
		return Preset{}, err
	}

	s.events.publish(Event{Type: EventLibraryUpdate, Payload: map[string]string{"preset": preset.ID}})
	return preset, nil
}

// DeletePreset removes a preset by ID
func (s *Studio) DeletePreset(ctx context.Context, id string) error {
	s.libMu.Lock()
	defer s.libMu.Unlock()

	presets, err := s.Presets(ctx)
	if err != nil {
		return err
	}

	kept := presets[:0]
	for _, p := range presets {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(presets) {
		return fmt.Errorf("preset %s: %w", id, ErrNotFound)
	}
	return s.store.PutJSON(ctx, store.KeyPresets, kept)
}

func (s *Studio) counts(ctx context.Context, key string) (map[string]int, error) {
	counts := make(map[string]int)
	if _, err := s.store.GetJSON(ctx, key, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// Ratings returns star ratings keyed by voice ID
func (s *Studio) Ratings(ctx context.Context) (map[string]int, error) {
	return s.counts(ctx, store.KeyRatings)
}

// Rate stores a 1 to 5 star rating for a voice
func (s *Studio) Rate(ctx context.Context, voiceID string, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5, got %d", ErrInvalid, rating)
	}
	if voiceID == "" {
		return fmt.Errorf("%w: voice is required", ErrInvalid)
	}

	s.libMu.Lock()
	defer s.libMu.Unlock()

	ratings, err := s.Ratings(ctx)
	if err != nil {
		return err
	}
	ratings[voiceID] = rating
	return s.store.PutJSON(ctx, store.KeyRatings, ratings)
}

// Usage returns render counts keyed by voice ID
func (s *Studio) Usage(ctx context.Context) (map[string]int, error) {
	return s.counts(ctx, store.KeyUsage)
}

func (s *Studio) countUsage(ctx context.Context, voiceIDs []string) error {
	if len(voiceIDs) == 0 {
		return nil
	}

	s.libMu.Lock()
	defer s.libMu.Unlock()

	usage, err := s.Usage(ctx)
	if err != nil {
		return err
	}
	for _, id := range voiceIDs {
		usage[id]++
	}
	return s.store.PutJSON(ctx, store.KeyUsage, usage)
}

// Favorites returns favorite voice IDs
func (s *Studio) Favorites(ctx context.Context) ([]string, error) {
	var favorites []string
	if _, err := s.store.GetJSON(ctx, store.KeyFavorites, &favorites); err != nil {
		return nil, err
	}
	return favorites, nil
}

// ToggleFavorite flips a voice's favorite state and reports the new state
func (s *Studio) ToggleFavorite(ctx context.Context, voiceID string) (bool, error) {
	s.libMu.Lock()
	defer s.libMu.Unlock()

	favorites, err := s.Favorites(ctx)
	if err != nil {
		return false, err
	}

	for i, id := range favorites {
		if id == voiceID {
			favorites = append(favorites[:i], favorites[i+1:]...)
			return false, s.store.PutJSON(ctx, store.KeyFavorites, favorites)
		}
	}
	favorites = append(favorites, voiceID)
	return true, s.store.PutJSON(ctx, store.KeyFavorites, favorites)
}

// Voices lists clones followed by studio voices. Favorites come first, then
// the requested order.
func (s *Studio) Voices(ctx context.Context, order string) ([]VoiceInfo, error) {
	switch order {
	case SortDefault, SortNameAsc, SortNameDesc, SortHighestRated, SortMostUsed:
	default:
		return nil, fmt.Errorf("%w: unknown sort order %q", ErrInvalid, order)
	}

	clones, err := s.Clones(ctx)
	if err != nil {
		return nil, err
	}
	favorites, err := s.Favorites(ctx)
	if err != nil {
		return nil, err
	}
	ratings, err := s.Ratings(ctx)
	if err != nil {
		return nil, err
	}
	usage, err := s.Usage(ctx)
	if err != nil {
		return nil, err
	}

	favorite := make(map[string]bool, len(favorites))
	for _, id := range favorites {
		favorite[id] = true
	}

	voices := make([]VoiceInfo, 0, len(clones)+len(voice.Names))
	for _, c := range clones {
		voices = append(voices, VoiceInfo{ID: c.ID, Name: c.Name, Base: string(voice.Zephyr), Clone: true})
	}
	for _, n := range voice.Names {
		m := voice.Lookup(n)
		voices = append(voices, VoiceInfo{ID: string(n), Name: string(n), Base: string(m.Base), Personality: strings.TrimSpace(m.Personality)})
	}
	for i := range voices {
		v := &voices[i]
		v.Favorite = favorite[v.ID]
		v.Rating = ratings[v.ID]
		v.Usage = usage[v.ID]
	}

	sort.SliceStable(voices, func(i, j int) bool {
		a, b := voices[i], voices[j]
		if a.Favorite != b.Favorite {
			return a.Favorite
		}
		switch order {
		case SortNameAsc:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case SortNameDesc:
			return strings.ToLower(a.Name) > strings.ToLower(b.Name)
		case SortHighestRated:
			return a.Rating > b.Rating
		case SortMostUsed:
			return a.Usage > b.Usage
		}
		return false
	})
	return voices, nil
}
