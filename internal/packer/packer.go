// Package packer orchestrates whole-container compression and
// decompression. Compression fans chunk transforms out over a bounded
// worker pool, then flushes results in strict ascending chunk index
// order so output is byte-identical regardless of completion order.
// Decompression is sequential by design: records carry no index, so
// they must be consumed in the order they were written.
package packer

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scanforge/volpack/internal/format"
	"github.com/scanforge/volpack/internal/source"
	"github.com/scanforge/volpack/internal/stats"
	"github.com/scanforge/volpack/internal/transform"
)

// Packer compresses volumes into containers.
type Packer struct {
	// Workers bounds the compression pool. Zero means NumCPU.
	Workers int

	// Level is the compression level in [1,9].
	Level int

	PredictiveCoding  bool
	RunLengthEncoding bool

	// Progress, Logger and Stats are optional.
	Progress ProgressFunc
	Logger   *zap.Logger
	Stats    stats.Collector
}

func (p *Packer) workers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return runtime.NumCPU()
}

func (p *Packer) logger() *zap.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return zap.NewNop()
}

func (p *Packer) collector() stats.Collector {
	if p.Stats != nil {
		return p.Stats
	}
	return stats.NewNoop()
}

// Pack compresses vol (and labels, which may be nil) into w as one
// container. All chunks are compressed and held in memory before the
// ordered flush begins; nothing is written unless every chunk
// succeeds, except the unavoidable case of w itself failing mid-flush.
func (p *Packer) Pack(ctx context.Context, vol source.Volume, labels source.Labels, w io.Writer) error {
	start := time.Now()
	geom := vol.Geometry()

	total := vol.ChunkCount()
	if labels != nil {
		total += labels.ChunkCount()
	}
	tr := newTracker(total, p.Progress)

	p.logger().Debug("packing volume",
		zap.Int32("width", geom.Width),
		zap.Int32("height", geom.Height),
		zap.Int32("depth", geom.Depth),
		zap.Int32("chunkDim", geom.ChunkDim),
		zap.Int("chunks", total),
		zap.Int("workers", p.workers()),
	)

	pipe := transform.NewPipeline(vol.ChunkDim(), p.PredictiveCoding, p.RunLengthEncoding, p.Level)
	records, err := p.compressChunks(ctx, vol, pipe, tr)
	if err != nil {
		return fmt.Errorf("compressing volume chunks: %w", err)
	}

	var labelRecords [][]byte
	if labels != nil {
		labelPipe := transform.NewLabelPipeline(labels.ChunkDim(), p.RunLengthEncoding, p.Level)
		labelRecords, err = p.compressChunks(ctx, labels, labelPipe, tr)
		if err != nil {
			return fmt.Errorf("compressing label chunks: %w", err)
		}
	}

	// Serial ordered flush. From here on, record order is chunk order.
	header := &format.Header{
		Width:             geom.Width,
		Height:            geom.Height,
		Depth:             geom.Depth,
		ChunkDim:          geom.ChunkDim,
		PixelSize:         geom.PixelSize,
		HasLabels:         labels != nil,
		CompressionLevel:  int32(p.Level),
		PredictiveCoding:  p.PredictiveCoding,
		RunLengthEncoding: p.RunLengthEncoding,
	}
	if err := format.WriteHeader(w, header); err != nil {
		return err
	}
	if err := format.WriteChunkCount(w, len(records)); err != nil {
		return err
	}
	for i, rec := range records {
		if err := format.WriteChunkRecord(w, rec); err != nil {
			return fmt.Errorf("writing chunk %d: %w", i, err)
		}
	}

	if labels != nil {
		if err := format.WriteLabelHeader(w, labels.LabelGeometry()); err != nil {
			return err
		}
		for i, rec := range labelRecords {
			if err := format.WriteChunkRecord(w, rec); err != nil {
				return fmt.Errorf("writing label chunk %d: %w", i, err)
			}
		}
	}

	p.logger().Info("packed volume",
		zap.Int("chunks", total),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// compressChunks runs the forward pipeline over every chunk of src on
// a bounded pool. Results land in a slice indexed by chunk, so the
// only cross-worker contention is the progress tracker. Any failure
// aborts the whole operation after the pool drains; there is no
// per-chunk retry.
func (p *Packer) compressChunks(ctx context.Context, src source.Source, pipe *transform.Pipeline, tr *tracker) ([][]byte, error) {
	count := src.ChunkCount()
	results := make([][]byte, count)
	collector := p.collector()

	sem := make(chan struct{}, p.workers())
	errCh := make(chan error, count)
	var wg sync.WaitGroup

	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			// Cancellation is checked between chunks, not inside a
			// chunk's transform.
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			default:
			}

			start := time.Now()
			raw, err := src.ReadChunk(ctx, index)
			if err != nil {
				errCh <- fmt.Errorf("chunk %d: %w", index, err)
				return
			}

			compressed, err := pipe.Forward(raw)
			if err != nil {
				errCh <- fmt.Errorf("chunk %d: %w", index, err)
				return
			}
			results[index] = compressed

			collector.IncCounter(stats.MetricChunksCompressed, 1)
			collector.IncCounter(stats.MetricBytesRaw, int64(len(raw)))
			collector.IncCounter(stats.MetricBytesCompressed, int64(len(compressed)))
			collector.ObserveHistogram(stats.MetricCompressSeconds, time.Since(start).Seconds())
			tr.chunkDone()
		}(i)
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
