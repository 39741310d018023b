// Package filestore keeps one file per artifact in a directory.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cognicore/vntopic/pkg/vntopic/internalerr"
	"github.com/cognicore/vntopic/pkg/vntopic/store"
)

const ext = ".json"

// Store writes artifacts as <dir>/<name>.json.
type Store struct {
	dir string
}

// Open creates dir if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: %w: %v", internalerr.ErrStoreUnavailable, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the artifact directory.
func (s *Store) Dir() string { return s.dir }

// Close implements store.Store.
func (s *Store) Close() error { return nil }

func (s *Store) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("filestore: bad artifact name %q: %w", name, internalerr.ErrInvalidInput)
	}
	return filepath.Join(s.dir, name+ext), nil
}

// Put writes blob to a temp file in the same directory and renames it into
// place, so readers never see a partial artifact.
func (s *Store) Put(ctx context.Context, name string, blob []byte) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.path(name)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("filestore: %w", err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if _, err = f.Write(blob); err != nil {
		return fmt.Errorf("filestore: write %s: %w", name, err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("filestore: sync %s: %w", name, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("filestore: close %s: %w", name, err)
	}
	if err = os.Rename(tmp, target); err != nil {
		return fmt.Errorf("filestore: rename %s: %w", name, err)
	}
	return nil
}

// Get reads the named artifact.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("filestore: %s: %w", name, internalerr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("filestore: read %s: %w", name, err)
	}
	return b, nil
}

// List returns the names of stored artifacts.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("filestore: %w", err)
	}
	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || strings.HasPrefix(n, ".") || !strings.HasSuffix(n, ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(n, ext))
	}
	sort.Strings(names)
	return names, nil
}

var _ store.Store = (*Store)(nil)
