package volpack

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/scanforge/volpack/internal/stats"
)

// statsCollector aliases the internal collector interface so options
// and the codec share one spelling.
type statsCollector = stats.Collector

// DefaultCompressionLevel matches the level the original scanner
// application shipped with.
const DefaultCompressionLevel = 5

// Option configures a Codec.
type Option interface {
	apply(*options)
}

// options holds the codec configuration.
type options struct {
	level     int
	predict   bool
	rle       bool
	workers   int
	cacheSize int
	progress  ProgressFunc
	logger    *zap.Logger
	stats     statsCollector
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		level:   DefaultCompressionLevel,
		predict: true,
		rle:     true,
		workers: runtime.NumCPU(),
		logger:  zap.NewNop(),
		stats:   stats.NewNoop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithCompressionLevel sets the compression level in [1,9].
// Levels 1-3 favor speed, 7-9 favor size. Default is 5.
func WithCompressionLevel(level int) Option {
	return optionFunc(func(o *options) {
		o.level = level
	})
}

// WithPredictiveCoding enables or disables 3D predictive coding of
// intensity chunks. Default is enabled.
func WithPredictiveCoding(enabled bool) Option {
	return optionFunc(func(o *options) {
		o.predict = enabled
	})
}

// WithRunLengthEncoding enables or disables run-length coding.
// Default is enabled.
func WithRunLengthEncoding(enabled bool) Option {
	return optionFunc(func(o *options) {
		o.rle = enabled
	})
}

// WithWorkers sets the number of parallel chunk compression workers.
// Default is the number of available CPUs.
func WithWorkers(n int) Option {
	return optionFunc(func(o *options) {
		o.workers = n
	})
}

// WithChunkCache enables an LRU cache of n raw chunks in front of the
// volume source. Useful when the same source backs repeated
// compressions; disabled by default.
func WithChunkCache(n int) Option {
	return optionFunc(func(o *options) {
		o.cacheSize = n
	})
}

// WithProgress sets a progress callback receiving percentages in
// [0,100].
func WithProgress(fn ProgressFunc) Option {
	return optionFunc(func(o *options) {
		o.progress = fn
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c statsCollector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}
