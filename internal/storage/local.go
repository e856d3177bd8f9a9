package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LocalStorage keeps generated files on the local filesystem, grouped by
// category and by month (digests/2026/10/...).
type LocalStorage struct {
	basePath string
	now      func() time.Time
}

// NewLocalStorage creates the base directory if needed
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath, now: time.Now}, nil
}

// Save writes data under subDir and returns the path relative to the base.
// The file keeps its name behind a short random prefix so two runs in the
// same minute never overwrite each other.
func (s *LocalStorage) Save(data []byte, filename, subDir string) (string, error) {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid filename %q", filename)
	}

	dir := filepath.Join(s.basePath, subDir, s.now().UTC().Format("2006/01"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	filePath := filepath.Join(dir, generateID()+"_"+name)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	relPath, _ := filepath.Rel(s.basePath, filePath)
	return relPath, nil
}

// Open returns an archived file for reading
func (s *LocalStorage) Open(relativePath string) (*os.File, error) {
	full, err := s.resolve(relativePath)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Exists checks if a file exists
func (s *LocalStorage) Exists(relativePath string) bool {
	full, err := s.resolve(relativePath)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// Delete removes a file
func (s *LocalStorage) Delete(relativePath string) error {
	full, err := s.resolve(relativePath)
	if err != nil {
		return err
	}
	return os.Remove(full)
}

// List returns the relative paths stored under subDir, oldest first
func (s *LocalStorage) List(subDir string) ([]string, error) {
	root := filepath.Join(s.basePath, subDir)
	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(s.basePath, path)
			paths = append(paths, rel)
		}
		return nil
	})
	sort.Strings(paths)
	return paths, err
}

func (s *LocalStorage) resolve(relativePath string) (string, error) {
	full := filepath.Join(s.basePath, relativePath)
	rel, err := filepath.Rel(s.basePath, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes storage root", relativePath)
	}
	return full, nil
}

// generateID returns a short random hex prefix for filenames
func generateID() string {
	b := make([]byte, 4)
	rand.Read(b)
	return hex.EncodeToString(b)
}
