// Package localfs is a flat-directory implementation of storage.Storage: one
// file per blob, directly under a configured root, with no subdirectories.
package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/chordfs/chordfs/internal/logger"
	"github.com/chordfs/chordfs/internal/storage"
)

const dirPerm = 0o755
const filePerm = 0o644

// Store is a flat-directory blob store rooted at Root.
type Store struct {
	root string
	log  logger.Logger
}

// New returns a Store rooted at root. Call Initialize before using it.
func New(root string, log logger.Logger) *Store {
	if log == nil {
		log = logger.Nop{}
	}
	return &Store{root: root, log: log.Named("localfs")}
}

// Initialize creates the root directory if it does not already exist.
func (s *Store) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(s.root, dirPerm); err != nil {
		return fmt.Errorf("localfs: initialize %s: %w", s.root, err)
	}
	s.log.Info("storage initialized", logger.F("root", s.root))
	return nil
}

// Save writes contents under name and returns the path written to. name is
// sanitized with filepath.Base first, so no directory component in name can
// escape root.
func (s *Store) Save(ctx context.Context, name string, contents []byte) (string, error) {
	path := s.path(name)
	if err := os.WriteFile(path, contents, filePerm); err != nil {
		return "", fmt.Errorf("localfs: save %s: %w", name, err)
	}
	return path, nil
}

// Get reads the blob stored under name.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("localfs: get %s: %w", name, err)
	}
	return data, nil
}

// Delete removes the blob stored under name, reporting whether it was
// present.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("localfs: delete %s: %w", name, err)
	}
	return true, nil
}

// Exists reports whether a blob is stored under name.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	_, err := os.Stat(s.path(name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("localfs: exists %s: %w", name, err)
	}
	return true, nil
}

// List returns every blob name currently stored, sorted for determinism.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("localfs: list %s: %w", s.root, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// path maps a logical blob name to its on-disk location, stripping any
// directory components so name can never escape root. filepath.Base alone
// is not enough: Base("..") and Base(".") return the component unchanged,
// which would otherwise resolve to root's parent or root itself.
func (s *Store) path(name string) string {
	base := filepath.Base(name)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		base = "_"
	}
	return filepath.Join(s.root, base)
}
