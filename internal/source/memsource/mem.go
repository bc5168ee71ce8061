// Package memsource provides in-memory chunk sources for tests and
// for compressing volumes that are already resident.
package memsource

import (
	"context"
	"fmt"

	"github.com/scanforge/volpack/internal/format"
	"github.com/scanforge/volpack/internal/source"
)

// Compile-time check that Volume implements source.Volume.
var _ source.Volume = (*Volume)(nil)

// Volume is an in-memory volume chunk source. Chunks not set read as
// all zero.
type Volume struct {
	geom   format.VolumeGeometry
	chunks [][]byte
}

// NewVolume creates an in-memory volume with the given geometry.
func NewVolume(geom format.VolumeGeometry) *Volume {
	return &Volume{
		geom:   geom,
		chunks: make([][]byte, geom.ChunkCount()),
	}
}

// SetChunk stores the raw bytes of a chunk. The data is copied.
func (v *Volume) SetChunk(index int, data []byte) error {
	if index < 0 || index >= len(v.chunks) {
		return fmt.Errorf("%w: %d of %d", source.ErrOutOfRange, index, len(v.chunks))
	}
	if len(data) != v.geom.ChunkSize() {
		return fmt.Errorf("memsource: chunk %d has %d bytes, want %d", index, len(data), v.geom.ChunkSize())
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	v.chunks[index] = copied
	return nil
}

// Geometry returns the volume geometry.
func (v *Volume) Geometry() format.VolumeGeometry {
	return v.geom
}

// ChunkDim returns the cubic chunk edge length.
func (v *Volume) ChunkDim() int {
	return int(v.geom.ChunkDim)
}

// ChunkCount returns the total number of chunks.
func (v *Volume) ChunkCount() int {
	return len(v.chunks)
}

// ReadChunk returns a copy of the chunk's bytes.
func (v *Volume) ReadChunk(ctx context.Context, index int) ([]byte, error) {
	if index < 0 || index >= len(v.chunks) {
		return nil, fmt.Errorf("%w: %d of %d", source.ErrOutOfRange, index, len(v.chunks))
	}
	buf := make([]byte, v.geom.ChunkSize())
	copy(buf, v.chunks[index])
	return buf, nil
}

// Close is a no-op for the memory source.
func (v *Volume) Close() error {
	return nil
}

// Compile-time check that Labels implements source.Labels.
var _ source.Labels = (*Labels)(nil)

// Labels is an in-memory label chunk source.
type Labels struct {
	geom   format.LabelGeometry
	chunks [][]byte
}

// NewLabels creates an in-memory label source with the given geometry.
func NewLabels(geom format.LabelGeometry) *Labels {
	return &Labels{
		geom:   geom,
		chunks: make([][]byte, geom.ChunkCount()),
	}
}

// SetChunk stores the raw bytes of a label chunk. The data is copied.
func (l *Labels) SetChunk(index int, data []byte) error {
	if index < 0 || index >= len(l.chunks) {
		return fmt.Errorf("%w: %d of %d", source.ErrOutOfRange, index, len(l.chunks))
	}
	if len(data) != l.geom.ChunkSize() {
		return fmt.Errorf("memsource: label chunk %d has %d bytes, want %d", index, len(data), l.geom.ChunkSize())
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	l.chunks[index] = copied
	return nil
}

// LabelGeometry returns the label chunk geometry.
func (l *Labels) LabelGeometry() format.LabelGeometry {
	return l.geom
}

// ChunkDim returns the cubic chunk edge length.
func (l *Labels) ChunkDim() int {
	return int(l.geom.ChunkDim)
}

// ChunkCount returns the total number of label chunks.
func (l *Labels) ChunkCount() int {
	return len(l.chunks)
}

// ReadChunk returns a copy of the label chunk's bytes.
func (l *Labels) ReadChunk(ctx context.Context, index int) ([]byte, error) {
	if index < 0 || index >= len(l.chunks) {
		return nil, fmt.Errorf("%w: %d of %d", source.ErrOutOfRange, index, len(l.chunks))
	}
	buf := make([]byte, l.geom.ChunkSize())
	copy(buf, l.chunks[index])
	return buf, nil
}

// Close is a no-op for the memory source.
func (l *Labels) Close() error {
	return nil
}
