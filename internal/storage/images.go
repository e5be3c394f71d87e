package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// ImageStore writes downloaded photos into a flat local directory.
// Files at an existing path are overwritten: re-picking a candidate for the
// same record simply replaces the previous download.
type ImageStore struct {
	baseDir string
}

// NewImageStore creates the store, ensuring the output directory exists.
func NewImageStore(baseDir string) (*ImageStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating image directory: %w", err)
	}
	return &ImageStore{baseDir: baseDir}, nil
}

// Path returns the filesystem path for a stored image filename.
func (s *ImageStore) Path(filename string) string {
	return filepath.Join(s.baseDir, filename)
}

// Write saves image bytes under the given filename.
func (s *ImageStore) Write(filename string, data []byte) error {
	if err := os.WriteFile(s.Path(filename), data, 0644); err != nil {
		return fmt.Errorf("writing image file: %w", err)
	}
	return nil
}

// Exists checks whether an image file is already present.
func (s *ImageStore) Exists(filename string) bool {
	_, err := os.Stat(s.Path(filename))
	return err == nil
}
