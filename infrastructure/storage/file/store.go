// ABOUTME: On-disk catalog store so a cold process without Redis still starts with a warm catalog
// ABOUTME: Writes go to a temp file first and are renamed into place

package file

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"mememe-api/core/domain"
	coreerrors "mememe-api/core/errors"
)

// DefaultPath is the catalog file location relative to the working directory
const DefaultPath = "data/trending-templates.json"

// Store keeps the catalog as a JSON file
type Store struct {
	path string
}

// NewStore creates a file store at path, or DefaultPath when empty
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Name identifies the store in logs
func (s *Store) Name() string {
	return "file"
}

// Path returns the catalog file location
func (s *Store) Path() string {
	return s.path
}

// Load reads the catalog file, returning ErrCacheMiss when it does not exist
func (s *Store) Load(ctx context.Context) (*domain.TemplateCatalog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, coreerrors.ErrCacheMiss
		}
		return nil, coreerrors.WrapError(err, "read catalog file")
	}

	var catalog domain.TemplateCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, coreerrors.WrapError(err, "decode catalog file")
	}
	return &catalog, nil
}

// Save writes the catalog, creating parent directories as needed
func (s *Store) Save(ctx context.Context, catalog *domain.TemplateCatalog) error {
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return coreerrors.WrapError(err, "encode catalog")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return coreerrors.WrapError(err, "create catalog directory")
	}

	tmp, err := os.CreateTemp(dir, ".trending-*.json")
	if err != nil {
		return coreerrors.WrapError(err, "create temp catalog file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return coreerrors.WrapError(err, "write catalog file")
	}
	if err := tmp.Close(); err != nil {
		return coreerrors.WrapError(err, "write catalog file")
	}

	return coreerrors.WrapError(os.Rename(tmp.Name(), s.path), "replace catalog file")
}

// Clear removes the catalog file. A missing file is not an error.
func (s *Store) Clear(ctx context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return coreerrors.WrapError(err, "remove catalog file")
	}
	return nil
}
