// ABOUTME: Tests for studio storage
// ABOUTME: Runs the same checks against memory and SQLite retention
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func openStores(t *testing.T) map[string]*Store {
	t.Helper()
	ctx := context.Background()

	memory, err := Open(ctx, Config{Retention: RetentionEphemeral})
	if err != nil {
		t.Fatalf("open ephemeral store: %v", err)
	}
	t.Cleanup(func() { _ = memory.Close() })

	disk, err := Open(ctx, Config{Retention: RetentionPersistent, Path: filepath.Join(t.TempDir(), "data", "studio.db")})
	if err != nil {
		t.Fatalf("open persistent store: %v", err)
	}
	t.Cleanup(func() { _ = disk.Close() })

	return map[string]*Store{"ephemeral": memory, "persistent": disk}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Persistent() {
		t.Error("default retention should be ephemeral")
	}

	if _, err := Open(ctx, Config{Retention: "forever"}); err == nil {
		t.Error("expected error for unknown retention")
	}
	if _, err := Open(ctx, Config{Retention: RetentionPersistent}); err == nil {
		t.Error("expected error for persistent store without path")
	}
}

func TestKeyValue(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, ok, err := s.Get(ctx, KeySettings); err != nil || ok {
				t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
			}

			if err := s.Put(ctx, KeySettings, []byte("one")); err != nil {
				t.Fatalf("put: %v", err)
			}
			if err := s.Put(ctx, KeySettings, []byte("two")); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			v, ok, err := s.Get(ctx, KeySettings)
			if err != nil || !ok || string(v) != "two" {
				t.Fatalf("expected two, got %q ok=%v err=%v", v, ok, err)
			}

			if err := s.Delete(ctx, KeySettings); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, ok, _ := s.Get(ctx, KeySettings); ok {
				t.Error("key still present after delete")
			}
		})
	}
}

func TestJSON(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			usage := map[string]int{"Kore": 3, "Puck": 1}
			if err := s.PutJSON(ctx, KeyUsage, usage); err != nil {
				t.Fatalf("put json: %v", err)
			}

			var got map[string]int
			ok, err := s.GetJSON(ctx, KeyUsage, &got)
			if err != nil || !ok {
				t.Fatalf("get json: ok=%v err=%v", ok, err)
			}
			if got["Kore"] != 3 || got["Puck"] != 1 {
				t.Errorf("unexpected usage %v", got)
			}

			if err := s.Put(ctx, KeyRatings, []byte("{broken")); err != nil {
				t.Fatalf("put: %v", err)
			}
			var ratings map[string]int
			if _, err := s.GetJSON(ctx, KeyRatings, &ratings); err == nil {
				t.Error("expected decode error")
			}
		})
	}
}

func TestHistoryCap(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

			var dropped []Item
			for i := 0; i < HistoryLimit+3; i++ {
				d, err := s.AddHistory(ctx, Item{
					ID:        fmt.Sprintf("item-%02d", i),
					CreatedAt: base.Add(time.Duration(i) * time.Second),
					Mode:      "single",
					Text:      "hello",
					Voice:     "Kore",
				})
				if err != nil {
					t.Fatalf("add history: %v", err)
				}
				dropped = append(dropped, d...)
			}

			if len(dropped) != 3 {
				t.Fatalf("expected 3 dropped items, got %d", len(dropped))
			}
			if dropped[0].ID != "item-00" {
				t.Errorf("expected oldest item dropped first, got %s", dropped[0].ID)
			}

			items, err := s.History(ctx, 0)
			if err != nil {
				t.Fatalf("history: %v", err)
			}
			if len(items) != HistoryLimit {
				t.Fatalf("expected %d items, got %d", HistoryLimit, len(items))
			}
			if items[0].ID != fmt.Sprintf("item-%02d", HistoryLimit+2) {
				t.Errorf("expected newest first, got %s", items[0].ID)
			}
			if !items[0].CreatedAt.Equal(base.Add(time.Duration(HistoryLimit+2) * time.Second)) {
				t.Errorf("unexpected timestamp %v", items[0].CreatedAt)
			}

			limited, _ := s.History(ctx, 5)
			if len(limited) != 5 {
				t.Errorf("expected 5 items, got %d", len(limited))
			}
		})
	}
}

func TestRemoveHistory(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			s.AddHistory(ctx, Item{ID: "keep", Path: "/tmp/keep.wav"})
			s.AddHistory(ctx, Item{ID: "drop", Path: "/tmp/drop.wav"})

			item, err := s.RemoveHistory(ctx, "drop")
			if err != nil {
				t.Fatalf("remove: %v", err)
			}
			if item.Path != "/tmp/drop.wav" {
				t.Errorf("unexpected removed item %+v", item)
			}

			if _, err := s.RemoveHistory(ctx, "drop"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			items, _ := s.History(ctx, 0)
			if len(items) != 1 || items[0].ID != "keep" {
				t.Errorf("unexpected history %+v", items)
			}
		})
	}
}
