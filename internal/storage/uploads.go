// Package storage persists uploaded documents to the local filesystem
// and hands back the static URL they are served under. Swappable for a
// blob store; nothing else in the system depends on the layout.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the static route uploaded files are served under
const URLPrefix = "/uploads"

// UploadStore writes uploaded documents into a fixed directory
type UploadStore struct {
	dir string
}

// NewUploadStore creates the upload directory if needed
func NewUploadStore(dir string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &UploadStore{dir: dir}, nil
}

// Dir returns the upload directory path
func (s *UploadStore) Dir() string {
	return s.dir
}

// Save writes data under a collision-free name derived from the original
// filename's extension and returns the stored name and its public URL.
func (s *UploadStore) Save(data []byte, originalName string) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".pdf"
	}

	storedName := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	destPath := filepath.Join(s.dir, storedName)

	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to save file: %w", err)
	}

	return storedName, URLPrefix + "/" + storedName, nil
}
