// Package source defines the random-access chunk source consumed by
// the compression orchestrator. The same interface serves an
// in-memory volume and a file-backed container, so the compressor
// never special-cases where chunk bytes come from.
package source

import (
	"context"
	"errors"

	"github.com/scanforge/volpack/internal/format"
)

// ErrOutOfRange is returned for a chunk index outside [0, ChunkCount).
var ErrOutOfRange = errors.New("source: chunk index out of range")

// Source provides random access to the fixed-size chunks of one
// volume. Implementations must be safe for concurrent ReadChunk
// calls; the orchestrator reads from worker goroutines.
type Source interface {
	// ChunkDim returns the cubic chunk edge length.
	ChunkDim() int

	// ChunkCount returns the total number of chunks.
	ChunkCount() int

	// ReadChunk returns the raw ChunkDim³ bytes of the given chunk.
	// The returned slice is owned by the caller.
	ReadChunk(ctx context.Context, index int) ([]byte, error)

	// Close releases any resources held by the source.
	Close() error
}

// Volume is a chunk source with full volume geometry, as needed to
// write a compressed container header.
type Volume interface {
	Source
	Geometry() format.VolumeGeometry
}

// Labels is a chunk source with label chunk geometry, as needed to
// write the label sub-header.
type Labels interface {
	Source
	LabelGeometry() format.LabelGeometry
}
