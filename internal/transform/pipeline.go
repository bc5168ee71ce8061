package transform

import "fmt"

// Pipeline is the forward/inverse transform chain for one chunk
// shape: predictive coding, then run-length coding, then deflate.
// A Pipeline is immutable and safe for concurrent use.
type Pipeline struct {
	dim     int
	predict bool
	rle     bool
	level   int
}

// NewPipeline returns the transform chain for intensity chunks of
// edge length dim.
func NewPipeline(dim int, predict, rle bool, level int) *Pipeline {
	return &Pipeline{dim: dim, predict: predict, rle: rle, level: level}
}

// NewLabelPipeline returns the transform chain for label chunks.
// Labels are categorical, so predictive coding is never applied; the
// run-length stage follows the container's flag. The flag in the
// container header is authoritative on both sides: a container written
// with run-length coding disabled decodes only with it disabled.
func NewLabelPipeline(dim int, rle bool, level int) *Pipeline {
	return &Pipeline{dim: dim, predict: false, rle: rle, level: level}
}

// ChunkSize returns the raw byte size this pipeline expects, dim³.
func (p *Pipeline) ChunkSize() int {
	return p.dim * p.dim * p.dim
}

// Forward compresses one raw chunk of exactly dim³ bytes.
func (p *Pipeline) Forward(chunk []byte) ([]byte, error) {
	if err := checkChunkSize(chunk, p.dim); err != nil {
		return nil, err
	}

	data := chunk
	if p.predict {
		var err error
		data, err = ForwardPredict(data, p.dim)
		if err != nil {
			return nil, err
		}
	}
	if p.rle {
		data = RLEEncode(data)
	}
	return Deflate(data, p.level)
}

// Inverse decompresses one chunk record back into dim³ raw bytes.
// A decoded size other than dim³ is a data-integrity failure and
// fatal for the chunk.
func (p *Pipeline) Inverse(record []byte) ([]byte, error) {
	data, err := Inflate(record)
	if err != nil {
		return nil, err
	}
	if p.rle {
		data, err = RLEDecode(data)
		if err != nil {
			return nil, err
		}
	}
	if p.predict {
		return InversePredict(data, p.dim)
	}
	if want := p.ChunkSize(); len(data) != want {
		return nil, fmt.Errorf("%w: decoded %d bytes, want %d", ErrChunkSize, len(data), want)
	}
	return data, nil
}
