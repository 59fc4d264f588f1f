// Package media stores uploaded listing photos on local disk and serves
// them under a public URL prefix.
package media

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
)

// URLPrefix is the public path under which stored files are served.
const URLPrefix = "/media/"

// Store writes media files below a root directory.
type Store struct {
	dir string
}

// NewStore creates the media root directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating media directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// SaveItemImage stores processed image bytes for an item under a random
// filename and returns the public URL path.
func (s *Store) SaveItemImage(itemID string, data []byte, ext string) (string, error) {
	rel := path.Join("items", itemID, uuid.NewString()+ext)
	full := filepath.Join(s.dir, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("creating item media directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("writing media file: %w", err)
	}

	return URLPrefix + rel, nil
}

// Handler serves the stored files under URLPrefix.
func (s *Store) Handler() http.Handler {
	return http.StripPrefix(URLPrefix, http.FileServer(http.Dir(s.dir)))
}
