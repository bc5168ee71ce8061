// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Compression metrics.
	MetricChunksCompressed   = "volpack_chunks_compressed_total"
	MetricChunksDecompressed = "volpack_chunks_decompressed_total"
	MetricBytesRaw           = "volpack_bytes_raw_total"
	MetricBytesCompressed    = "volpack_bytes_compressed_total"
	MetricCompressSeconds    = "volpack_chunk_compress_seconds"
	MetricDecompressSeconds  = "volpack_chunk_decompress_seconds"

	// Chunk cache metrics.
	MetricCacheHits   = "volpack_cache_hits_total"
	MetricCacheMisses = "volpack_cache_misses_total"
	MetricCacheSize   = "volpack_cache_size"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
