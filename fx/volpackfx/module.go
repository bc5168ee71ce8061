// Package volpackfx provides an fx module for a volume codec.
package volpackfx

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/scanforge/volpack"
	"github.com/scanforge/volpack/internal/stats"
	"github.com/scanforge/volpack/internal/stats/logger"
	promstats "github.com/scanforge/volpack/internal/stats/prometheus"
)

// Config holds configuration for the volume codec.
type Config struct {
	// CompressionLevel is the container compression level in [1,9].
	// Zero means the library default.
	CompressionLevel int

	// PredictiveCoding and RunLengthEncoding toggle the per-chunk
	// transforms. Both default to enabled.
	DisablePredictiveCoding  bool
	DisableRunLengthEncoding bool

	// Workers bounds the compression pool. Zero means NumCPU.
	Workers int

	// ChunkCacheSize is the number of raw chunks to cache while
	// compressing. Zero disables the cache.
	ChunkCacheSize int

	// MetricsRegistry selects Prometheus-backed stats. If nil, metrics
	// are logged at debug level instead.
	MetricsRegistry prometheus.Registerer
}

// Module provides a *volpack.Codec.
// Requires a *zap.Logger and a Config to be provided.
var Module = fx.Module("volpack",
	fx.Provide(
		newStatsCollector,
		newCodec,
	),
)

func newStatsCollector(cfg Config, log *zap.Logger) stats.Collector {
	if cfg.MetricsRegistry != nil {
		return promstats.New(cfg.MetricsRegistry)
	}
	return logger.New(log.Named("volpack.stats"))
}

// Params holds dependencies for creating the codec.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
}

// Result holds the provided codec.
type Result struct {
	fx.Out

	Codec *volpack.Codec
}

func newCodec(p Params) (Result, error) {
	level := p.Config.CompressionLevel
	if level == 0 {
		level = volpack.DefaultCompressionLevel
	}

	opts := []volpack.Option{
		volpack.WithCompressionLevel(level),
		volpack.WithPredictiveCoding(!p.Config.DisablePredictiveCoding),
		volpack.WithRunLengthEncoding(!p.Config.DisableRunLengthEncoding),
		volpack.WithStats(p.Collector),
		volpack.WithLogger(p.Logger.Named("volpack")),
	}
	if p.Config.Workers > 0 {
		opts = append(opts, volpack.WithWorkers(p.Config.Workers))
	}
	if p.Config.ChunkCacheSize > 0 {
		opts = append(opts, volpack.WithChunkCache(p.Config.ChunkCacheSize))
	}

	codec, err := volpack.New(opts...)
	if err != nil {
		return Result{}, err
	}

	return Result{Codec: codec}, nil
}
