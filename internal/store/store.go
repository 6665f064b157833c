// ABOUTME: Key-value and render history storage for the studio
// ABOUTME: Keeps state in memory or in a SQLite database depending on retention
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Retention modes
const (
	RetentionEphemeral  = "ephemeral"
	RetentionPersistent = "persistent"
)

// HistoryLimit is the number of history items kept
const HistoryLimit = 20

// Keys used by the studio
const (
	KeySettings  = "settings"
	KeyPresets   = "presets"
	KeyRatings   = "ratings"
	KeyUsage     = "usage"
	KeyFavorites = "favorites"
	KeyClones    = "clones"
)

// ErrNotFound is returned when a history item does not exist
var ErrNotFound = errors.New("not found")

// Config selects where state lives
type Config struct {
	Retention string `yaml:"retention"`
	Path      string `yaml:"path"`
}

// Item is one entry in the render history
type Item struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"timestamp"`
	Mode      string    `json:"mode"`
	Text      string    `json:"text"`
	Voice     string    `json:"voice"`
	Path      string    `json:"path,omitempty"`
	Duration  float64   `json:"duration"` // seconds
}

// Store holds studio state. A nil db means everything lives in memory.
type Store struct {
	db  *sql.DB
	cfg Config

	mu      sync.Mutex
	values  map[string][]byte
	history []Item
}

// Open initializes the store according to config
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Retention == "" {
		cfg.Retention = RetentionEphemeral
	}

	switch cfg.Retention {
	case RetentionEphemeral:
		return &Store{cfg: cfg, values: make(map[string][]byte)}, nil
	case RetentionPersistent:
	default:
		return nil, fmt.Errorf("unknown retention mode: %s", cfg.Retention)
	}

	if cfg.Path == "" {
		return nil, fmt.Errorf("persistent retention requires a path")
	}

	dir := filepath.Dir(cfg.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", cfg.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	log.Printf("Opened studio store at %s", cfg.Path)
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS history (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    created_at TEXT NOT NULL,
    mode TEXT,
    text TEXT,
    voice TEXT,
    path TEXT,
    duration REAL
);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Persistent reports whether state survives a restart
func (s *Store) Persistent() bool {
	return s.db != nil
}

// Close releases underlying resources
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the value stored under key
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		v, ok := s.values[key]
		if !ok {
			return nil, false, nil
		}
		return append([]byte(nil), v...), true, nil
	}

	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Put stores value under key
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.values[key] = append([]byte(nil), value...)
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv(key, value) VALUES(?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (s *Store) Delete(ctx context.Context, key string) error {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.values, key)
		return nil
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// GetJSON decodes the value under key into v. It reports false when the key
// is absent and leaves v untouched.
func (s *Store) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// PutJSON stores v as JSON under key
func (s *Store) PutJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Put(ctx, key, data)
}

// AddHistory records item as the newest entry and drops entries beyond
// HistoryLimit. Dropped items are returned so callers can release their files.
func (s *Store) AddHistory(ctx context.Context, item Item) ([]Item, error) {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.history = append([]Item{item}, s.history...)
		if len(s.history) <= HistoryLimit {
			return nil, nil
		}
		dropped := append([]Item(nil), s.history[HistoryLimit:]...)
		s.history = s.history[:HistoryLimit]
		return dropped, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO history(id, created_at, mode, text, voice, path, duration)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.CreatedAt.UTC().Format(time.RFC3339Nano), item.Mode, item.Text, item.Voice, item.Path, item.Duration)
	if err != nil {
		return nil, fmt.Errorf("insert history: %w", err)
	}

	dropped, err := queryHistory(ctx, tx,
		`SELECT id, created_at, mode, text, voice, path, duration
		 FROM history ORDER BY seq DESC LIMIT -1 OFFSET ?`, HistoryLimit)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM history WHERE seq IN (
		SELECT seq FROM history ORDER BY seq DESC LIMIT -1 OFFSET ?
	)`, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("prune history: %w", err)
	}

	return dropped, tx.Commit()
}

// History returns up to limit items, newest first. A limit of zero or less
// returns everything kept.
func (s *Store) History(ctx context.Context, limit int) ([]Item, error) {
	if limit <= 0 || limit > HistoryLimit {
		limit = HistoryLimit
	}

	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		n := min(limit, len(s.history))
		return append([]Item(nil), s.history[:n]...), nil
	}

	return queryHistory(ctx, s.db,
		`SELECT id, created_at, mode, text, voice, path, duration
		 FROM history ORDER BY seq DESC LIMIT ?`, limit)
}

// RemoveHistory deletes one item and returns it
func (s *Store) RemoveHistory(ctx context.Context, id string) (Item, error) {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, item := range s.history {
			if item.ID == id {
				s.history = append(s.history[:i], s.history[i+1:]...)
				return item, nil
			}
		}
		return Item{}, ErrNotFound
	}

	items, err := queryHistory(ctx, s.db,
		`SELECT id, created_at, mode, text, voice, path, duration FROM history WHERE id = ?`, id)
	if err != nil {
		return Item{}, err
	}
	if len(items) == 0 {
		return Item{}, ErrNotFound
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id); err != nil {
		return Item{}, fmt.Errorf("delete history: %w", err)
	}
	return items[0], nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryHistory(ctx context.Context, q querier, query string, args ...any) ([]Item, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		var created string
		var path sql.NullString
		if err := rows.Scan(&item.ID, &created, &item.Mode, &item.Text, &item.Voice, &path, &item.Duration); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			item.CreatedAt = ts
		}
		item.Path = path.String
		items = append(items, item)
	}
	return items, rows.Err()
}
