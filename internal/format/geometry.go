package format

// VolumeGeometry describes the extents and chunking of an
// uncompressed volume. Boundary chunks that extend past the true
// extents are still full ChunkDim³ buffers; padding content is
// caller-defined and not validated here.
type VolumeGeometry struct {
	Width        int32
	Height       int32
	Depth        int32
	ChunkDim     int32
	BitsPerPixel int32
	PixelSize    float64
}

// ChunkCounts returns the per-axis chunk counts, ceil(extent/dim).
// Writer and reader must agree on this formula because compressed
// containers do not store the counts.
func (g VolumeGeometry) ChunkCounts() (cx, cy, cz int32) {
	cx = ceilDiv(g.Width, g.ChunkDim)
	cy = ceilDiv(g.Height, g.ChunkDim)
	cz = ceilDiv(g.Depth, g.ChunkDim)
	return cx, cy, cz
}

// ChunkCount returns the total number of chunks in the volume.
func (g VolumeGeometry) ChunkCount() int {
	cx, cy, cz := g.ChunkCounts()
	return int(cx) * int(cy) * int(cz)
}

// ChunkSize returns the byte size of one chunk, ChunkDim³.
func (g VolumeGeometry) ChunkSize() int {
	d := int(g.ChunkDim)
	return d * d * d
}

// LabelGeometry describes the chunking of a label volume, which may
// differ from the intensity volume's. Counts are stored explicitly
// because label containers carry no voxel extents.
type LabelGeometry struct {
	ChunkDim int32
	CountX   int32
	CountY   int32
	CountZ   int32
}

// ChunkCount returns the total number of label chunks.
func (g LabelGeometry) ChunkCount() int {
	return int(g.CountX) * int(g.CountY) * int(g.CountZ)
}

// ChunkSize returns the byte size of one label chunk, ChunkDim³.
func (g LabelGeometry) ChunkSize() int {
	d := int(g.ChunkDim)
	return d * d * d
}

func ceilDiv(a, b int32) int32 {
	return (a + b - 1) / b
}
