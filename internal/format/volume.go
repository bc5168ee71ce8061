package format

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Uncompressed container layouts. The volume file carries a 36-byte
// header followed by chunkCount full chunks at fixed offsets; the
// label file carries a 16-byte header in the same shape as the label
// sub-header of a compressed container.
const (
	VolumeHeaderSize = 36
	LabelHeaderSize  = 16
)

// VolumeFileNames inside a volume directory.
const (
	VolumeFileName = "volume.bin"
	LabelFileName  = "labels.bin"
)

// VolumeChunkOffset returns the byte offset of a chunk in an
// uncompressed volume file.
func VolumeChunkOffset(g VolumeGeometry, index int) int64 {
	return VolumeHeaderSize + int64(index)*int64(g.ChunkSize())
}

// LabelChunkOffset returns the byte offset of a chunk in an
// uncompressed label file.
func LabelChunkOffset(g LabelGeometry, index int) int64 {
	return LabelHeaderSize + int64(index)*int64(g.ChunkSize())
}

// WriteVolumeHeader writes the 36-byte uncompressed volume header.
// The stored chunk counts are derived from the geometry so that
// readers can cross-check them. pixelSize is stored as float32 here;
// only the compressed container header carries the full float64.
func WriteVolumeHeader(w io.Writer, g VolumeGeometry) error {
	if g.Width <= 0 || g.Height <= 0 || g.Depth <= 0 || g.ChunkDim <= 0 {
		return ErrInvalidGeometry
	}
	cx, cy, cz := g.ChunkCounts()
	fields := []any{
		g.Width, g.Height, g.Depth, g.ChunkDim,
		g.BitsPerPixel, float32(g.PixelSize),
		cx, cy, cz,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("writing volume header: %w", err)
		}
	}
	return nil
}

// ReadVolumeHeader reads the 36-byte uncompressed volume header and
// verifies the stored chunk counts against the geometry.
func ReadVolumeHeader(r io.Reader) (VolumeGeometry, error) {
	var g VolumeGeometry
	var pixelSize float32
	var cx, cy, cz int32
	fields := []any{
		&g.Width, &g.Height, &g.Depth, &g.ChunkDim,
		&g.BitsPerPixel, &pixelSize,
		&cx, &cy, &cz,
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return VolumeGeometry{}, fmt.Errorf("reading volume header: %w", err)
		}
	}
	g.PixelSize = float64(pixelSize)
	if g.Width <= 0 || g.Height <= 0 || g.Depth <= 0 || g.ChunkDim <= 0 {
		return VolumeGeometry{}, ErrInvalidGeometry
	}
	wantX, wantY, wantZ := g.ChunkCounts()
	if cx != wantX || cy != wantY || cz != wantZ {
		return VolumeGeometry{}, fmt.Errorf("%w: stored chunk counts %dx%dx%d, derived %dx%dx%d",
			ErrInvalidGeometry, cx, cy, cz, wantX, wantY, wantZ)
	}
	return g, nil
}

// WriteLabelHeader writes the 16-byte label geometry header. The same
// layout serves as the label sub-header inside a compressed container.
func WriteLabelHeader(w io.Writer, g LabelGeometry) error {
	if g.ChunkDim <= 0 || g.CountX <= 0 || g.CountY <= 0 || g.CountZ <= 0 {
		return ErrInvalidGeometry
	}
	fields := []any{g.ChunkDim, g.CountX, g.CountY, g.CountZ}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("writing label header: %w", err)
		}
	}
	return nil
}

// ReadLabelHeader reads the 16-byte label geometry header.
func ReadLabelHeader(r io.Reader) (LabelGeometry, error) {
	var g LabelGeometry
	fields := []any{&g.ChunkDim, &g.CountX, &g.CountY, &g.CountZ}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return LabelGeometry{}, fmt.Errorf("reading label header: %w", err)
		}
	}
	if g.ChunkDim <= 0 || g.CountX <= 0 || g.CountY <= 0 || g.CountZ <= 0 {
		return LabelGeometry{}, ErrInvalidGeometry
	}
	return g, nil
}
