// Package format defines the on-disk layout of compressed volume
// containers and the headers of the uncompressed volume/label files
// they are built from. All multi-byte fields are little-endian.
package format

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Signature is the 5-byte ASCII magic at the start of every
// compressed container.
const Signature = "CTS3D"

// Version is the current container format version.
const Version = 1

// Sentinel errors for well-defined format failures.
var (
	// ErrInvalidSignature indicates the input is not a compressed
	// volume container.
	ErrInvalidSignature = errors.New("format: invalid signature")

	// ErrUnsupportedVersion indicates a container written by an
	// incompatible format version.
	ErrUnsupportedVersion = errors.New("format: unsupported version")

	// ErrInvalidGeometry indicates non-positive extents or chunk
	// dimensions in a header.
	ErrInvalidGeometry = errors.New("format: invalid geometry")
)

// Header is the fixed-layout header of a compressed container.
// Chunk counts are not stored; readers re-derive them from the
// geometry with the same ceil division the writer used.
type Header struct {
	Width    int32
	Height   int32
	Depth    int32
	ChunkDim int32

	// PixelSize is the physical size of one voxel edge.
	PixelSize float64

	HasLabels bool

	// CompressionLevel is the configured level in [1,9].
	CompressionLevel  int32
	PredictiveCoding  bool
	RunLengthEncoding bool
}

// Geometry returns the volume geometry described by the header.
func (h *Header) Geometry() VolumeGeometry {
	return VolumeGeometry{
		Width:        h.Width,
		Height:       h.Height,
		Depth:        h.Depth,
		ChunkDim:     h.ChunkDim,
		BitsPerPixel: 8,
		PixelSize:    h.PixelSize,
	}
}

// WriteHeader writes the container header to w.
func WriteHeader(w io.Writer, h *Header) error {
	if h.Width <= 0 || h.Height <= 0 || h.Depth <= 0 || h.ChunkDim <= 0 {
		return ErrInvalidGeometry
	}

	if _, err := w.Write([]byte(Signature)); err != nil {
		return fmt.Errorf("writing signature: %w", err)
	}

	fields := []any{
		int32(Version),
		h.Width,
		h.Height,
		h.Depth,
		h.ChunkDim,
		h.PixelSize,
		boolByte(h.HasLabels),
		h.CompressionLevel,
		boolByte(h.PredictiveCoding),
		boolByte(h.RunLengthEncoding),
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	return nil
}

// ReadHeader reads and validates the container header from r.
// Returns ErrInvalidSignature or ErrUnsupportedVersion on mismatch;
// both are fatal for the whole read.
func ReadHeader(r io.Reader) (*Header, error) {
	sig := make([]byte, len(Signature))
	if _, err := io.ReadFull(r, sig); err != nil {
		return nil, fmt.Errorf("reading signature: %w", err)
	}
	if string(sig) != Signature {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSignature, sig)
	}

	var version int32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	var h Header
	var hasLabels, predict, rle byte
	fields := []any{
		&h.Width,
		&h.Height,
		&h.Depth,
		&h.ChunkDim,
		&h.PixelSize,
		&hasLabels,
		&h.CompressionLevel,
		&predict,
		&rle,
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("reading header: %w", err)
		}
	}
	if h.Width <= 0 || h.Height <= 0 || h.Depth <= 0 || h.ChunkDim <= 0 {
		return nil, ErrInvalidGeometry
	}

	h.HasLabels = hasLabels != 0
	h.PredictiveCoding = predict != 0
	h.RunLengthEncoding = rle != 0
	return &h, nil
}

// WriteChunkRecord writes one length-prefixed chunk record. Records
// carry no index field; their position in the stream is the chunk
// index.
func WriteChunkRecord(w io.Writer, data []byte) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(data))); err != nil {
		return fmt.Errorf("writing chunk length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing chunk data: %w", err)
	}
	return nil
}

// ReadChunkRecord reads one length-prefixed chunk record.
func ReadChunkRecord(r io.Reader) ([]byte, error) {
	var length int32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, fmt.Errorf("reading chunk length: %w", err)
	}
	if length < 0 {
		return nil, fmt.Errorf("format: negative chunk length %d", length)
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("reading chunk data: %w", err)
	}
	return data, nil
}

// WriteChunkCount writes the record count that precedes a chunk
// record sequence.
func WriteChunkCount(w io.Writer, n int) error {
	if err := binary.Write(w, binary.LittleEndian, int32(n)); err != nil {
		return fmt.Errorf("writing chunk count: %w", err)
	}
	return nil
}

// ReadChunkCount reads the record count that precedes a chunk record
// sequence.
func ReadChunkCount(r io.Reader) (int, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, fmt.Errorf("reading chunk count: %w", err)
	}
	if n < 0 {
		return 0, fmt.Errorf("format: negative chunk count %d", n)
	}
	return int(n), nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
