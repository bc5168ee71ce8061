package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/scanforge/volpack/internal/format"
)

// containerRecords holds the outcome of one sequential walk over a
// container's chunk records.
type containerRecords struct {
	header       *format.Header
	labelGeom    format.LabelGeometry
	volumeSizes  []int
	labelSizes   []int
	totalPayload int64
}

// walkRecords reads every chunk record of a container in order,
// optionally handing each record to visit. The walk itself only
// tracks sizes; visit can decode.
func walkRecords(path string, visit func(h *format.Header, label bool, dim, index int, record []byte) error) (*containerRecords, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening container: %w", err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	header, err := format.ReadHeader(r)
	if err != nil {
		return nil, err
	}
	out := &containerRecords{header: header}

	count, err := format.ReadChunkCount(r)
	if err != nil {
		return nil, err
	}
	if want := header.Geometry().ChunkCount(); count != want {
		return nil, fmt.Errorf("container declares %d chunks, geometry implies %d", count, want)
	}

	for i := 0; i < count; i++ {
		record, err := format.ReadChunkRecord(r)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		out.volumeSizes = append(out.volumeSizes, len(record))
		out.totalPayload += int64(len(record))
		if visit != nil {
			if err := visit(header, false, int(header.ChunkDim), i, record); err != nil {
				return nil, fmt.Errorf("chunk %d: %w", i, err)
			}
		}
	}

	if header.HasLabels {
		out.labelGeom, err = format.ReadLabelHeader(r)
		if err != nil {
			return nil, err
		}
		for i := 0; i < out.labelGeom.ChunkCount(); i++ {
			record, err := format.ReadChunkRecord(r)
			if err != nil {
				return nil, fmt.Errorf("label chunk %d: %w", i, err)
			}
			out.labelSizes = append(out.labelSizes, len(record))
			out.totalPayload += int64(len(record))
			if visit != nil {
				if err := visit(header, true, int(out.labelGeom.ChunkDim), i, record); err != nil {
					return nil, fmt.Errorf("label chunk %d: %w", i, err)
				}
			}
		}
	}

	return out, nil
}
