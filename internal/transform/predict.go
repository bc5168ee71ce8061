// Package transform implements the per-chunk byte transforms of the
// compressed container format: 3D predictive coding, run-length
// coding, and the final deflate stage. All functions are pure; chunks
// may be transformed concurrently but a single chunk is always
// processed by one goroutine in (z,y,x) scan order.
package transform

import (
	"errors"
	"fmt"
)

// ErrChunkSize indicates a buffer whose length is not the expected
// chunkDim³ for the chunk being transformed.
var ErrChunkSize = errors.New("transform: chunk size mismatch")

// ForwardPredict applies 3D predictive coding to a chunk of edge
// length dim. Each voxel is replaced by its residual against the mean
// of the existing (x-1), (y-1) and (z-1) neighbors of the original
// buffer, offset by 128 with mod-256 wraparound so the residual fits
// a byte. The first voxel is stored verbatim.
func ForwardPredict(src []byte, dim int) ([]byte, error) {
	if err := checkChunkSize(src, dim); err != nil {
		return nil, err
	}

	dst := make([]byte, len(src))
	i := 0
	for z := 0; z < dim; z++ {
		for y := 0; y < dim; y++ {
			for x := 0; x < dim; x++ {
				pred, ok := predict(src, dim, x, y, z)
				if !ok {
					dst[i] = src[i]
				} else {
					// Byte conversion wraps mod 256; no clamp on encode.
					dst[i] = byte(int(src[i]) - pred + 128)
				}
				i++
			}
		}
	}
	return dst, nil
}

// InversePredict reverses ForwardPredict. Predictions are recomputed
// from already-reconstructed values in the identical scan order, and
// reconstructed voxels are clamped to [0,255]. The clamp is
// intentionally asymmetric with the encoder's wraparound; the two
// must stay paired for binary compatibility with existing containers.
func InversePredict(src []byte, dim int) ([]byte, error) {
	if err := checkChunkSize(src, dim); err != nil {
		return nil, err
	}

	dst := make([]byte, len(src))
	i := 0
	for z := 0; z < dim; z++ {
		for y := 0; y < dim; y++ {
			for x := 0; x < dim; x++ {
				pred, ok := predict(dst, dim, x, y, z)
				if !ok {
					dst[i] = src[i]
				} else {
					v := pred + int(src[i]) - 128
					if v < 0 {
						v = 0
					} else if v > 255 {
						v = 255
					}
					dst[i] = byte(v)
				}
				i++
			}
		}
	}
	return dst, nil
}

// predict returns the integer mean of the existing lower neighbors of
// (x,y,z) in buf, reading flat indices z*dim²+y*dim+x. ok is false
// only for the origin voxel, which has no neighbors.
func predict(buf []byte, dim, x, y, z int) (pred int, ok bool) {
	idx := (z*dim+y)*dim + x
	sum, n := 0, 0
	if x > 0 {
		sum += int(buf[idx-1])
		n++
	}
	if y > 0 {
		sum += int(buf[idx-dim])
		n++
	}
	if z > 0 {
		sum += int(buf[idx-dim*dim])
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / n, true
}

func checkChunkSize(buf []byte, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("transform: invalid chunk dim %d", dim)
	}
	if want := dim * dim * dim; len(buf) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrChunkSize, len(buf), want)
	}
	return nil
}
