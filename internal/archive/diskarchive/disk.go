// Package diskarchive implements a local-directory archive backend.
package diskarchive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/scanforge/volpack/internal/archive"
)

// Compile-time check that Archive implements archive.Archive.
var _ archive.Archive = (*Archive)(nil)

// Archive stores containers as files under a root directory.
type Archive struct {
	root string
}

// New creates a disk archive rooted at the given directory, creating
// it if needed.
func New(root string) (*Archive, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	return &Archive{root: root}, nil
}

// Put stores a container, writing through a temp file so a failed
// upload never leaves a truncated artifact under the final name.
func (a *Archive) Put(ctx context.Context, name string, r io.Reader) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	final := filepath.Join(a.root, filepath.Base(name))
	tmp, err := os.CreateTemp(a.root, ".put-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("writing container: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return fmt.Errorf("renaming container: %w", err)
	}
	return nil
}

// Get opens a stored container.
func (a *Archive) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := os.Open(filepath.Join(a.root, filepath.Base(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, archive.ErrNotFound
		}
		return nil, fmt.Errorf("opening container: %w", err)
	}
	return f, nil
}

// List returns the names of all stored containers, sorted.
func (a *Archive) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(a.root)
	if err != nil {
		return nil, fmt.Errorf("reading archive directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || entry.Name()[0] == '.' {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op for the disk archive.
func (a *Archive) Close() error {
	return nil
}
