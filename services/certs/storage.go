package certs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ArtifactStorage persists rendered documents on disk under a directory
// fixed at construction time. Paths recorded on certificate rows are
// relative to that directory.
type ArtifactStorage struct {
	dir string
}

func NewArtifactStorage(dir string) *ArtifactStorage {
	return &ArtifactStorage{dir: dir}
}

// Save durably writes an artifact and returns its storage path. The write
// goes to a temp file first and is renamed into place, so a crash mid-write
// never leaves a recorded path without complete bytes behind it.
func (s *ArtifactStorage) Save(certID uint, artifact *Artifact) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("%w: creating storage dir: %v", ErrRender, err)
	}

	name := fmt.Sprintf("cert-%d-%s.pdf", certID, uuid.NewString())
	finalPath := filepath.Join(s.dir, name)
	tmpPath := finalPath + ".tmp"

	if err := os.WriteFile(tmpPath, artifact.Bytes, 0644); err != nil {
		return "", fmt.Errorf("%w: writing artifact: %v", ErrRender, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: committing artifact: %v", ErrRender, err)
	}

	return name, nil
}

// Read returns the artifact bytes for a recorded path. Paths are confined
// to the storage directory.
func (s *ArtifactStorage) Read(path string) ([]byte, error) {
	clean := filepath.Clean(path)
	if strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("%w: invalid artifact path", ErrNotFound)
	}

	bytes, err := os.ReadFile(filepath.Join(s.dir, clean))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: artifact %s", ErrNotFound, clean)
	}
	if err != nil {
		return nil, err
	}
	return bytes, nil
}
