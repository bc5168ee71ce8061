// Package cachedsource wraps a chunk source with an LRU cache of
// decoded chunks. Interactive viewers re-read the same chunks many
// times; the compressor reads each chunk once, so it does not use
// this wrapper by default.
package cachedsource

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/scanforge/volpack/internal/format"
	"github.com/scanforge/volpack/internal/source"
	"github.com/scanforge/volpack/internal/stats"
)

// Compile-time check that Volume implements source.Volume.
var _ source.Volume = (*Volume)(nil)

// Volume wraps a volume source with chunk caching. The LRU cache is
// safe for concurrent use, so the wrapper inherits the underlying
// source's concurrency guarantees.
type Volume struct {
	underlying source.Volume
	cache      *lru.Cache[int, []byte]
	collector  stats.Collector
}

// New creates a caching wrapper holding up to capacity chunks.
// The collector is optional; if nil, a no-op collector is used.
func New(underlying source.Volume, capacity int, collector stats.Collector) (*Volume, error) {
	c, err := lru.New[int, []byte](capacity)
	if err != nil {
		return nil, err
	}
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &Volume{
		underlying: underlying,
		cache:      c,
		collector:  collector,
	}, nil
}

// Geometry returns the underlying volume geometry.
func (v *Volume) Geometry() format.VolumeGeometry {
	return v.underlying.Geometry()
}

// ChunkDim returns the cubic chunk edge length.
func (v *Volume) ChunkDim() int {
	return v.underlying.ChunkDim()
}

// ChunkCount returns the total number of chunks.
func (v *Volume) ChunkCount() int {
	return v.underlying.ChunkCount()
}

// ReadChunk returns the chunk from cache, falling back to the
// underlying source on a miss. Returned slices are copies; callers
// may mutate them freely.
func (v *Volume) ReadChunk(ctx context.Context, index int) ([]byte, error) {
	if data, ok := v.cache.Get(index); ok {
		v.collector.IncCounter(stats.MetricCacheHits, 1)
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}
	v.collector.IncCounter(stats.MetricCacheMisses, 1)

	data, err := v.underlying.ReadChunk(ctx, index)
	if err != nil {
		return nil, err
	}

	cached := make([]byte, len(data))
	copy(cached, data)
	v.cache.Add(index, cached)
	v.collector.SetGauge(stats.MetricCacheSize, int64(v.cache.Len()))

	return data, nil
}

// Close closes the underlying source.
func (v *Volume) Close() error {
	return v.underlying.Close()
}
