package cachedsource

import (
	"bytes"
	"context"
	"testing"

	"github.com/scanforge/volpack/internal/format"
	"github.com/scanforge/volpack/internal/source/memsource"
	"github.com/scanforge/volpack/internal/stats"
)

// countingCollector records counter totals for assertions.
type countingCollector struct {
	counters map[string]int64
	gauges   map[string]int64
}

var _ stats.Collector = (*countingCollector)(nil)

func newCountingCollector() *countingCollector {
	return &countingCollector{
		counters: make(map[string]int64),
		gauges:   make(map[string]int64),
	}
}

func (c *countingCollector) IncCounter(name string, delta int64)      { c.counters[name] += delta }
func (c *countingCollector) SetGauge(name string, value int64)        { c.gauges[name] = value }
func (c *countingCollector) ObserveHistogram(name string, value float64) {}

func newTestVolume(t *testing.T) *memsource.Volume {
	t.Helper()
	geom := format.VolumeGeometry{Width: 8, Height: 8, Depth: 8, ChunkDim: 4, BitsPerPixel: 8, PixelSize: 1}
	v := memsource.NewVolume(geom)
	for i := 0; i < v.ChunkCount(); i++ {
		if err := v.SetChunk(i, bytes.Repeat([]byte{byte(i)}, geom.ChunkSize())); err != nil {
			t.Fatal(err)
		}
	}
	return v
}

func TestVolume_CacheHitsAndMisses(t *testing.T) {
	collector := newCountingCollector()
	cached, err := New(newTestVolume(t), 4, collector)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	for pass := 0; pass < 2; pass++ {
		for i := 0; i < 4; i++ {
			chunk, err := cached.ReadChunk(ctx, i)
			if err != nil {
				t.Fatalf("pass %d: ReadChunk(%d) error = %v", pass, i, err)
			}
			if chunk[0] != byte(i) {
				t.Errorf("pass %d: chunk %d has wrong content", pass, i)
			}
		}
	}

	if got := collector.counters[stats.MetricCacheMisses]; got != 4 {
		t.Errorf("cache misses = %d, want 4", got)
	}
	if got := collector.counters[stats.MetricCacheHits]; got != 4 {
		t.Errorf("cache hits = %d, want 4", got)
	}
	if got := collector.gauges[stats.MetricCacheSize]; got != 4 {
		t.Errorf("cache size gauge = %d, want 4", got)
	}
}

func TestVolume_Eviction(t *testing.T) {
	collector := newCountingCollector()
	cached, err := New(newTestVolume(t), 2, collector)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	// Touch three distinct chunks with capacity two, then re-read the
	// first; it was evicted, so every read is a miss.
	for _, i := range []int{0, 1, 2, 0} {
		if _, err := cached.ReadChunk(ctx, i); err != nil {
			t.Fatalf("ReadChunk(%d) error = %v", i, err)
		}
	}

	if got := collector.counters[stats.MetricCacheMisses]; got != 4 {
		t.Errorf("cache misses = %d, want 4", got)
	}
	if got := collector.counters[stats.MetricCacheHits]; got != 0 {
		t.Errorf("cache hits = %d, want 0", got)
	}
}

func TestVolume_ReturnsCopies(t *testing.T) {
	cached, err := New(newTestVolume(t), 4, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	first, err := cached.ReadChunk(ctx, 1)
	if err != nil {
		t.Fatalf("ReadChunk() error = %v", err)
	}
	first[0] = 0xee

	second, err := cached.ReadChunk(ctx, 1)
	if err != nil {
		t.Fatalf("ReadChunk() error = %v", err)
	}
	if second[0] != 1 {
		t.Error("mutating a returned chunk corrupted the cache")
	}
}
