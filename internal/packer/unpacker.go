package packer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/scanforge/volpack/internal/format"
	"github.com/scanforge/volpack/internal/stats"
	"github.com/scanforge/volpack/internal/transform"
)

// Unpacker decompresses containers back into uncompressed volume and
// label files.
type Unpacker struct {
	// Progress, Logger and Stats are optional.
	Progress ProgressFunc
	Logger   *zap.Logger
	Stats    stats.Collector
}

func (u *Unpacker) logger() *zap.Logger {
	if u.Logger != nil {
		return u.Logger
	}
	return zap.NewNop()
}

func (u *Unpacker) collector() stats.Collector {
	if u.Stats != nil {
		return u.Stats
	}
	return stats.NewNoop()
}

// Unpack reads a container from r and regenerates volume.bin (and
// labels.bin if present) under dir. Records are consumed strictly in
// the order written; each decoded chunk lands at its fixed offset in
// a pre-sized output file. Partially written outputs are removed on
// failure.
func (u *Unpacker) Unpack(ctx context.Context, r io.Reader, dir string) (err error) {
	start := time.Now()

	header, err := format.ReadHeader(r)
	if err != nil {
		return err
	}
	geom := header.Geometry()

	count, err := format.ReadChunkCount(r)
	if err != nil {
		return err
	}
	if want := geom.ChunkCount(); count != want {
		return fmt.Errorf("format: container declares %d chunks, geometry implies %d", count, want)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	// Label chunk count is unknown until the sub-header is read; the
	// tracker grows its total then.
	tr := newTracker(count, u.Progress)

	u.logger().Debug("unpacking container",
		zap.Int32("width", header.Width),
		zap.Int32("height", header.Height),
		zap.Int32("depth", header.Depth),
		zap.Int32("chunkDim", header.ChunkDim),
		zap.Bool("hasLabels", header.HasLabels),
		zap.Int("chunks", count),
	)

	var created []string
	defer func() {
		if err != nil {
			for _, path := range created {
				os.Remove(path)
			}
		}
	}()

	volPath := filepath.Join(dir, format.VolumeFileName)
	created = append(created, volPath)
	pipe := transform.NewPipeline(int(geom.ChunkDim), header.PredictiveCoding, header.RunLengthEncoding, int(header.CompressionLevel))
	if err := u.unpackVolume(ctx, r, volPath, geom, count, pipe, tr); err != nil {
		return err
	}

	if header.HasLabels {
		labelGeom, err := format.ReadLabelHeader(r)
		if err != nil {
			return err
		}
		tr.addTotal(labelGeom.ChunkCount())

		labelPath := filepath.Join(dir, format.LabelFileName)
		created = append(created, labelPath)
		labelPipe := transform.NewLabelPipeline(int(labelGeom.ChunkDim), header.RunLengthEncoding, int(header.CompressionLevel))
		if err := u.unpackLabels(ctx, r, labelPath, labelGeom, labelPipe, tr); err != nil {
			return err
		}
	}

	u.logger().Info("unpacked container",
		zap.String("dir", dir),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (u *Unpacker) unpackVolume(ctx context.Context, r io.Reader, path string, geom format.VolumeGeometry, count int, pipe *transform.Pipeline, tr *tracker) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating volume file: %w", err)
	}
	defer f.Close()

	if err := format.WriteVolumeHeader(f, geom); err != nil {
		return err
	}
	// Pre-size so chunk writes never extend the file.
	if err := f.Truncate(format.VolumeChunkOffset(geom, count)); err != nil {
		return fmt.Errorf("presizing volume file: %w", err)
	}

	offset := func(index int) int64 { return format.VolumeChunkOffset(geom, index) }
	return u.unpackChunks(ctx, r, f, count, pipe, offset, tr)
}

func (u *Unpacker) unpackLabels(ctx context.Context, r io.Reader, path string, geom format.LabelGeometry, pipe *transform.Pipeline, tr *tracker) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating label file: %w", err)
	}
	defer f.Close()

	if err := format.WriteLabelHeader(f, geom); err != nil {
		return err
	}
	count := geom.ChunkCount()
	if err := f.Truncate(format.LabelChunkOffset(geom, count)); err != nil {
		return fmt.Errorf("presizing label file: %w", err)
	}

	offset := func(index int) int64 { return format.LabelChunkOffset(geom, index) }
	return u.unpackChunks(ctx, r, f, count, pipe, offset, tr)
}

// unpackChunks is the sequential record loop shared by the volume and
// label paths.
func (u *Unpacker) unpackChunks(ctx context.Context, r io.Reader, f *os.File, count int, pipe *transform.Pipeline, offset func(int) int64, tr *tracker) error {
	collector := u.collector()

	for index := 0; index < count; index++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		start := time.Now()
		record, err := format.ReadChunkRecord(r)
		if err != nil {
			return fmt.Errorf("chunk %d: %w", index, err)
		}

		decoded, err := pipe.Inverse(record)
		if err != nil {
			return fmt.Errorf("chunk %d: %w", index, err)
		}

		if _, err := f.WriteAt(decoded, offset(index)); err != nil {
			return fmt.Errorf("writing chunk %d: %w", index, err)
		}

		collector.IncCounter(stats.MetricChunksDecompressed, 1)
		collector.ObserveHistogram(stats.MetricDecompressSeconds, time.Since(start).Seconds())
		tr.chunkDone()
	}
	return nil
}
