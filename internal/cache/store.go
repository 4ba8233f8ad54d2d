package cache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/blackwell-systems/booklog/internal/util"
)

// Store writes r to the cache under name and returns the final path and
// the sha256 of what was written.
func (m *Manager) Store(name string, r io.Reader) (string, string, error) {
	if err := util.EnsureDir(m.baseDir); err != nil {
		return "", "", fmt.Errorf("create cache dir: %w", err)
	}

	destPath := m.Path(name)
	tmpPath := destPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return "", "", fmt.Errorf("writing to cache: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", "", fmt.Errorf("closing temp file: %w", err)
	}

	sum, err := util.SHA256File(tmpPath)
	if err != nil {
		_ = os.Remove(tmpPath)
		return "", "", fmt.Errorf("computing checksum: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", "", err
	}
	return destPath, sum, nil
}

var downloadClient = &http.Client{Timeout: 30 * time.Second}

// Download fetches url into the cache under name.
func (m *Manager) Download(ctx context.Context, url, name string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := downloadClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("downloading cover: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("downloading cover: HTTP %d", resp.StatusCode)
	}
	return m.Store(name, resp.Body)
}
