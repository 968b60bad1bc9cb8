package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abenov/accounts-server/internal/model"
)

var _ model.AssetStore = (*Store)(nil)

// Store writes assets to a flat directory on the local filesystem. The
// locator it returns is the bare filename; no index file is kept, existence
// is a filename lookup.
type Store struct {
	dir string
}

// NewStore creates a local store rooted at dir. The directory is created
// lazily on first upload.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Upload writes data to dir/name and returns the bare filename.
func (s *Store) Upload(_ context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return name, nil
}

// Read returns the bytes stored under the bare filename locator.
// model.ErrNotFound is returned when no such file exists.
func (s *Store) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}
