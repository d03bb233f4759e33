package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Manager handles disk writes under a fixed root directory. Relative
// paths passed to it use forward slashes regardless of platform; they
// are converted before touching the filesystem.
type Manager struct {
	root string
}

// NewManager creates a storage manager rooted at the given directory,
// creating it if needed
func NewManager(root string) (*Manager, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &Manager{root: root}, nil
}

// Root returns the root directory path
func (m *Manager) Root() string {
	return m.root
}

// EnsureDir creates a subdirectory under the root
func (m *Manager) EnsureDir(rel string) error {
	dir := filepath.Join(m.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", rel, err)
	}
	return nil
}

// WriteFile writes data to rel under the root. The write goes to a
// temporary file first and is moved into place with an atomic rename,
// so readers never observe a partial file. Parent directories are
// created as needed.
func (m *Manager) WriteFile(rel string, data []byte) error {
	target := filepath.Join(m.root, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	tempFile := target + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempFile, target); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// WriteJSON marshals v with indentation and writes it to rel under the
// root
func (m *Manager) WriteJSON(rel string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return m.WriteFile(rel, append(data, '\n'))
}

// Exists reports whether rel exists under the root
func (m *Manager) Exists(rel string) bool {
	_, err := os.Stat(filepath.Join(m.root, filepath.FromSlash(rel)))
	return err == nil
}
