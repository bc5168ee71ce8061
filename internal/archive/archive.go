// Package archive defines the storage backend interface for moving
// compressed container files between machines. Containers are already
// compressed, so backends store them verbatim.
package archive

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a container does not exist in the archive.
var ErrNotFound = errors.New("archive: container not found")

// Archive defines the interface for container storage backends.
// Implementations handle path formats and storage details internally.
type Archive interface {
	// Put stores the container under the given name, replacing any
	// existing object.
	Put(ctx context.Context, name string, r io.Reader) error

	// Get opens the named container for reading.
	Get(ctx context.Context, name string) (io.ReadCloser, error)

	// List returns the names of all stored containers.
	List(ctx context.Context) ([]string, error)

	// Close releases any resources held by the archive.
	Close() error
}
