// ABOUTME: Render exporter for finished WAV files
// ABOUTME: Saves encoded renders into an export directory keyed by content hash
package export

import (
	"crypto/sha256"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultDirName is the export directory created under the temp dir
const DefaultDirName = "vocalize-renders"

// Exporter manages exported render files
type Exporter struct {
	dir string

	mu          sync.Mutex
	currentPath string
}

// New creates an exporter writing into dir. An empty dir uses a directory
// under os.TempDir.
func New(dir string) (*Exporter, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), DefaultDirName)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	return &Exporter{dir: dir}, nil
}

// Dir returns the export directory
func (e *Exporter) Dir() string {
	return e.dir
}

// Save writes a WAV file and returns its path. Identical audio maps to the
// same file.
func (e *Exporter) Save(wav []byte) (string, error) {
	if len(wav) == 0 {
		return "", fmt.Errorf("refusing to export empty file")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	hash := sha256.Sum256(wav)
	filename := fmt.Sprintf("%x.wav", hash[:8])
	path := filepath.Join(e.dir, filename)

	if _, err := os.Stat(path); err == nil {
		log.Printf("Export cache hit: %s", path)
		e.currentPath = path
		return path, nil
	}

	tmp := path + ".part"
	if err := os.WriteFile(tmp, wav, 0644); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize export: %w", err)
	}

	log.Printf("Render exported: %s (%d bytes)", path, len(wav))
	e.currentPath = path
	return path, nil
}

// CurrentPath returns the most recently saved file
func (e *Exporter) CurrentPath() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentPath
}

// Remove deletes an exported file. Paths outside the export directory are
// rejected and missing files are ignored.
func (e *Exporter) Remove(path string) error {
	if path == "" {
		return nil
	}
	if !e.owns(path) {
		return fmt.Errorf("path %s is outside the export directory", path)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove export: %w", err)
	}
	if path == e.currentPath {
		e.currentPath = ""
	}
	return nil
}

func (e *Exporter) owns(path string) bool {
	rel, err := filepath.Rel(e.dir, path)
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)
}

// Cleanup removes the export directory
func (e *Exporter) Cleanup() error {
	return os.RemoveAll(e.dir)
}
