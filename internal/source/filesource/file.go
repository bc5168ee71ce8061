// Package filesource implements chunk sources backed by uncompressed
// container files. Chunks are read with positioned reads, so one open
// file serves concurrent workers without seeking.
package filesource

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/scanforge/volpack/internal/format"
	"github.com/scanforge/volpack/internal/source"
)

// Compile-time check that Volume implements source.Volume.
var _ source.Volume = (*Volume)(nil)

// Volume reads chunks from an uncompressed volume container file.
type Volume struct {
	f    *os.File
	geom format.VolumeGeometry
}

// OpenVolume opens a volume container file and parses its 36-byte
// header. The file must hold full ChunkDim³ chunks for the derived
// chunk count; boundary padding is the producer's responsibility.
func OpenVolume(path string) (*Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening volume file: %w", err)
	}

	geom, err := format.ReadVolumeHeader(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	want := format.VolumeChunkOffset(geom, geom.ChunkCount())
	if info, err := f.Stat(); err != nil {
		f.Close()
		return nil, fmt.Errorf("stat volume file: %w", err)
	} else if info.Size() < want {
		f.Close()
		return nil, fmt.Errorf("volume file truncated: %d bytes, want %d", info.Size(), want)
	}

	return &Volume{f: f, geom: geom}, nil
}

// Geometry returns the volume geometry from the file header.
func (v *Volume) Geometry() format.VolumeGeometry {
	return v.geom
}

// ChunkDim returns the cubic chunk edge length.
func (v *Volume) ChunkDim() int {
	return int(v.geom.ChunkDim)
}

// ChunkCount returns the total number of chunks.
func (v *Volume) ChunkCount() int {
	return v.geom.ChunkCount()
}

// ReadChunk reads one chunk at its fixed offset.
func (v *Volume) ReadChunk(ctx context.Context, index int) ([]byte, error) {
	return readChunkAt(ctx, v.f, format.VolumeChunkOffset(v.geom, index), v.geom.ChunkSize(), index, v.ChunkCount())
}

// Close closes the underlying file.
func (v *Volume) Close() error {
	return v.f.Close()
}

// Compile-time check that Labels implements source.Labels.
var _ source.Labels = (*Labels)(nil)

// Labels reads chunks from an uncompressed label container file.
type Labels struct {
	f    *os.File
	geom format.LabelGeometry
}

// OpenLabels opens a label container file and parses its 16-byte
// header.
func OpenLabels(path string) (*Labels, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening label file: %w", err)
	}

	geom, err := format.ReadLabelHeader(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	want := format.LabelChunkOffset(geom, geom.ChunkCount())
	if info, err := f.Stat(); err != nil {
		f.Close()
		return nil, fmt.Errorf("stat label file: %w", err)
	} else if info.Size() < want {
		f.Close()
		return nil, fmt.Errorf("label file truncated: %d bytes, want %d", info.Size(), want)
	}

	return &Labels{f: f, geom: geom}, nil
}

// LabelGeometry returns the label chunk geometry from the file header.
func (l *Labels) LabelGeometry() format.LabelGeometry {
	return l.geom
}

// ChunkDim returns the cubic chunk edge length.
func (l *Labels) ChunkDim() int {
	return int(l.geom.ChunkDim)
}

// ChunkCount returns the total number of label chunks.
func (l *Labels) ChunkCount() int {
	return l.geom.ChunkCount()
}

// ReadChunk reads one label chunk at its fixed offset.
func (l *Labels) ReadChunk(ctx context.Context, index int) ([]byte, error) {
	return readChunkAt(ctx, l.f, format.LabelChunkOffset(l.geom, index), l.geom.ChunkSize(), index, l.ChunkCount())
}

// Close closes the underlying file.
func (l *Labels) Close() error {
	return l.f.Close()
}

func readChunkAt(ctx context.Context, r io.ReaderAt, off int64, size, index, count int) ([]byte, error) {
	// Check for cancellation before starting I/O.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if index < 0 || index >= count {
		return nil, fmt.Errorf("%w: %d of %d", source.ErrOutOfRange, index, count)
	}

	buf := make([]byte, size)
	if _, err := r.ReadAt(buf, off); err != nil {
		return nil, fmt.Errorf("reading chunk %d: %w", index, err)
	}
	return buf, nil
}
