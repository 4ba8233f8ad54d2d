package cache

import (
	"os"
	"path/filepath"
	"strings"
)

// Manager handles the local cover image cache.
type Manager struct {
	baseDir string
}

// New creates a cache Manager rooted at baseDir.
func New(baseDir string) *Manager {
	return &Manager{baseDir: baseDir}
}

// Dir is the cache root.
func (m *Manager) Dir() string {
	return m.baseDir
}

// Path returns the cache path for a cover.
// Layout: <baseDir>/<name>.jpg
func (m *Manager) Path(name string) string {
	return filepath.Join(m.baseDir, fileName(name))
}

// Exists reports whether the cover is cached.
func (m *Manager) Exists(name string) bool {
	_, err := os.Stat(m.Path(name))
	return err == nil
}

// Remove deletes the cached cover if it exists.
func (m *Manager) Remove(name string) error {
	err := os.Remove(m.Path(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// fileName turns a book ID or ISBN into a safe file name.
func fileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	return name + ".jpg"
}
