// Package storage is the file collaborator of the pipeline: every input table
// is read and every artifact written through it.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Storage reads and writes files under an optional root directory.
type Storage struct {
	Root string
}

// FileStats holds metadata about a file without reading its contents.
type FileStats struct {
	SizeBytes int64
	ModTime   time.Time
}

// New returns a Storage rooted at root. An empty root means the working directory.
func New(root string) *Storage {
	return &Storage{Root: root}
}

func (s *Storage) resolve(p string) string {
	if s.Root == "" || filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(s.Root, p)
}

// SaveFile writes content to filePath, creating parent directories.
func (s *Storage) SaveFile(filePath string, content []byte) error {
	full := s.resolve(filePath)
	if err := os.MkdirAll(filepath.Dir(full), 0750); err != nil {
		return fmt.Errorf("error creating directory for %s: %w", filePath, err)
	}
	if err := os.WriteFile(full, content, 0644); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}

// ReadFile returns the whole content of filePath.
func (s *Storage) ReadFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(s.resolve(filePath))
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return data, nil
}

// HasFile reports whether filePath exists.
func (s *Storage) HasFile(filePath string) bool {
	_, err := os.Stat(s.resolve(filePath))
	return err == nil
}

// GetFileStats returns metadata about a file using os.Stat (no I/O overhead).
func (s *Storage) GetFileStats(filePath string) (*FileStats, error) {
	info, err := os.Stat(s.resolve(filePath))
	if err != nil {
		return nil, fmt.Errorf("error getting file stats: %w", err)
	}

	return &FileStats{
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}

// Path returns the location filePath resolves to.
func (s *Storage) Path(filePath string) string {
	return s.resolve(filePath)
}
