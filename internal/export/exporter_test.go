// ABOUTME: Tests for the render exporter
// ABOUTME: Tests saving, deduplication, removal and cleanup
package export

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "renders")
	e, err := New(dir)
	if err != nil {
		t.Fatalf("failed to create exporter: %v", err)
	}

	if _, err := os.Stat(e.Dir()); os.IsNotExist(err) {
		t.Error("export directory was not created")
	}
}

func TestSave(t *testing.T) {
	e, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create exporter: %v", err)
	}

	path, err := e.Save([]byte("RIFF fake wav"))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if filepath.Ext(path) != ".wav" {
		t.Errorf("expected .wav extension, got %s", path)
	}
	if e.CurrentPath() != path {
		t.Errorf("expected current path %s, got %s", path, e.CurrentPath())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if string(data) != "RIFF fake wav" {
		t.Errorf("unexpected contents %q", data)
	}

	again, err := e.Save([]byte("RIFF fake wav"))
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if again != path {
		t.Errorf("expected identical audio to share a file, got %s and %s", path, again)
	}

	other, _ := e.Save([]byte("RIFF other wav"))
	if other == path {
		t.Error("expected different audio to get a different file")
	}

	if _, err := e.Save(nil); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestRemove(t *testing.T) {
	e, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create exporter: %v", err)
	}

	path, _ := e.Save([]byte("RIFF"))
	if err := e.Remove(path); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file still exists after remove")
	}
	if e.CurrentPath() != "" {
		t.Error("current path should be cleared")
	}

	if err := e.Remove(path); err != nil {
		t.Errorf("removing a missing file should succeed: %v", err)
	}

	outside := filepath.Join(t.TempDir(), "keep.wav")
	os.WriteFile(outside, []byte("x"), 0644)
	if err := e.Remove(outside); err == nil {
		t.Error("expected error for path outside export directory")
	}
	if err := e.Remove(e.Dir()); err == nil {
		t.Error("expected error for the export directory itself")
	}
}

func TestCleanup(t *testing.T) {
	e, err := New(filepath.Join(t.TempDir(), "renders"))
	if err != nil {
		t.Fatalf("failed to create exporter: %v", err)
	}
	e.Save([]byte("RIFF"))

	if err := e.Cleanup(); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if _, err := os.Stat(e.Dir()); !os.IsNotExist(err) {
		t.Error("export directory still exists")
	}
}
