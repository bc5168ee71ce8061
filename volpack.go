// Package volpack compresses chunked 3D scalar volumes into a
// self-describing container format. Chunks are transformed with 3D
// predictive coding and run-length coding before deflate, compressed
// in parallel, and written in strict chunk index order so the output
// is deterministic.
//
// Example usage:
//
//	codec, err := volpack.New(
//	    volpack.WithCompressionLevel(9),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := codec.CompressFile(ctx, "/scans/patient42", "patient42.cts3d"); err != nil {
//	    log.Fatal(err)
//	}
package volpack

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/scanforge/volpack/internal/format"
	"github.com/scanforge/volpack/internal/packer"
	"github.com/scanforge/volpack/internal/source"
	"github.com/scanforge/volpack/internal/source/cachedsource"
	"github.com/scanforge/volpack/internal/source/filesource"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrInvalidLevel indicates a compression level outside [1,9].
	ErrInvalidLevel = errors.New("volpack: compression level out of range [1,9]")

	// ErrInvalidSignature indicates input that is not a volpack container.
	ErrInvalidSignature = format.ErrInvalidSignature

	// ErrUnsupportedVersion indicates a container from an
	// incompatible format version.
	ErrUnsupportedVersion = format.ErrUnsupportedVersion
)

// ProgressFunc receives a completion percentage in [0,100]. Calls are
// monotonic non-decreasing over the life of one compress or
// decompress call.
type ProgressFunc func(percent int)

// Codec compresses and decompresses volume containers.
// A Codec is safe for concurrent use by multiple goroutines.
type Codec struct {
	level     int
	predict   bool
	rle       bool
	workers   int
	cacheSize int
	progress  ProgressFunc
	logger    *zap.Logger
	stats     statsCollector
}

// New creates a new Codec with the given options.
// If no options are provided, sensible defaults are used.
func New(opts ...Option) (*Codec, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.level < 1 || cfg.level > 9 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, cfg.level)
	}

	c := &Codec{
		level:     cfg.level,
		predict:   cfg.predict,
		rle:       cfg.rle,
		workers:   cfg.workers,
		cacheSize: cfg.cacheSize,
		progress:  cfg.progress,
		logger:    cfg.logger,
		stats:     cfg.stats,
	}

	c.logger.Debug("codec initialized",
		zap.Int("level", c.level),
		zap.Bool("predictiveCoding", c.predict),
		zap.Bool("runLengthEncoding", c.rle),
		zap.Int("workers", c.workers),
	)

	return c, nil
}

// Compress reads the uncompressed volume directory (volume.bin plus
// labels.bin if present) and writes one compressed container to w.
func (c *Codec) Compress(ctx context.Context, volumeDir string, w io.Writer) error {
	vol, labels, err := c.openSources(volumeDir)
	if err != nil {
		return err
	}
	defer vol.Close()
	if labels != nil {
		defer labels.Close()
	}

	p := &packer.Packer{
		Workers:           c.workers,
		Level:             c.level,
		PredictiveCoding:  c.predict,
		RunLengthEncoding: c.rle,
		Progress:          packer.ProgressFunc(c.progress),
		Logger:            c.logger,
		Stats:             c.stats,
	}
	return p.Pack(ctx, vol, labels, w)
}

// CompressFile compresses a volume directory into a container file.
// The output file is removed if compression fails.
func (c *Codec) CompressFile(ctx context.Context, volumeDir, outPath string) (err error) {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing output file: %w", cerr)
		}
		if err != nil {
			os.Remove(outPath)
		}
	}()

	bw := bufio.NewWriter(f)
	if err = c.Compress(ctx, volumeDir, bw); err != nil {
		return err
	}
	return bw.Flush()
}

// Decompress reads a compressed container from r and regenerates the
// uncompressed volume directory under outDir. Partial outputs are
// removed on failure.
func (c *Codec) Decompress(ctx context.Context, r io.Reader, outDir string) error {
	u := &packer.Unpacker{
		Progress: packer.ProgressFunc(c.progress),
		Logger:   c.logger,
		Stats:    c.stats,
	}
	return u.Unpack(ctx, r, outDir)
}

// DecompressFile decompresses a container file into outDir.
func (c *Codec) DecompressFile(ctx context.Context, inPath, outDir string) error {
	f, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("opening container file: %w", err)
	}
	defer f.Close()

	return c.Decompress(ctx, bufio.NewReader(f), outDir)
}

// openSources opens the volume (and optional label) chunk sources of
// an uncompressed volume directory.
func (c *Codec) openSources(volumeDir string) (source.Volume, source.Labels, error) {
	volPath := filepath.Join(volumeDir, format.VolumeFileName)
	vol, err := filesource.OpenVolume(volPath)
	if err != nil {
		return nil, nil, err
	}

	var volume source.Volume = vol
	if c.cacheSize > 0 {
		cached, err := cachedsource.New(vol, c.cacheSize, c.stats)
		if err != nil {
			vol.Close()
			return nil, nil, fmt.Errorf("creating chunk cache: %w", err)
		}
		volume = cached
	}

	labelPath := filepath.Join(volumeDir, format.LabelFileName)
	if _, err := os.Stat(labelPath); err != nil {
		if os.IsNotExist(err) {
			return volume, nil, nil
		}
		volume.Close()
		return nil, nil, fmt.Errorf("stat label file: %w", err)
	}

	labels, err := filesource.OpenLabels(labelPath)
	if err != nil {
		volume.Close()
		return nil, nil, err
	}
	return volume, labels, nil
}
