package format

import (
	"bytes"
	"errors"
	"testing"
)

func TestVolumeHeader_RoundTrip(t *testing.T) {
	want := VolumeGeometry{
		Width:        100,
		Height:       80,
		Depth:        60,
		ChunkDim:     32,
		BitsPerPixel: 8,
		PixelSize:    0.5,
	}

	var buf bytes.Buffer
	if err := WriteVolumeHeader(&buf, want); err != nil {
		t.Fatalf("WriteVolumeHeader() error = %v", err)
	}
	if buf.Len() != VolumeHeaderSize {
		t.Errorf("header size = %d, want %d", buf.Len(), VolumeHeaderSize)
	}

	got, err := ReadVolumeHeader(&buf)
	if err != nil {
		t.Fatalf("ReadVolumeHeader() error = %v", err)
	}
	if got != want {
		t.Errorf("ReadVolumeHeader() = %+v, want %+v", got, want)
	}
}

// The uncompressed header stores pixelSize in four bytes; a value
// with no exact float32 representation must come back rounded, not
// shift the fields that follow it.
func TestVolumeHeader_PixelSizeNarrowing(t *testing.T) {
	g := VolumeGeometry{Width: 8, Height: 8, Depth: 8, ChunkDim: 4, BitsPerPixel: 8, PixelSize: 0.1}

	var buf bytes.Buffer
	if err := WriteVolumeHeader(&buf, g); err != nil {
		t.Fatalf("WriteVolumeHeader() error = %v", err)
	}
	if buf.Len() != VolumeHeaderSize {
		t.Fatalf("header size = %d, want %d", buf.Len(), VolumeHeaderSize)
	}

	got, err := ReadVolumeHeader(&buf)
	if err != nil {
		t.Fatalf("ReadVolumeHeader() error = %v", err)
	}
	if want := float64(float32(0.1)); got.PixelSize != want {
		t.Errorf("PixelSize = %v, want %v", got.PixelSize, want)
	}
}

func TestReadVolumeHeader_CountMismatch(t *testing.T) {
	var buf bytes.Buffer
	g := VolumeGeometry{Width: 8, Height: 8, Depth: 8, ChunkDim: 4, BitsPerPixel: 8, PixelSize: 1}
	if err := WriteVolumeHeader(&buf, g); err != nil {
		t.Fatalf("WriteVolumeHeader() error = %v", err)
	}

	// The X chunk count occupies the last 12 bytes; corrupt it.
	data := buf.Bytes()
	data[VolumeHeaderSize-12] = 99

	_, err := ReadVolumeHeader(bytes.NewReader(data))
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("ReadVolumeHeader() error = %v, want ErrInvalidGeometry", err)
	}
}

func TestLabelHeader_RoundTrip(t *testing.T) {
	want := LabelGeometry{ChunkDim: 16, CountX: 4, CountY: 3, CountZ: 2}

	var buf bytes.Buffer
	if err := WriteLabelHeader(&buf, want); err != nil {
		t.Fatalf("WriteLabelHeader() error = %v", err)
	}
	if buf.Len() != LabelHeaderSize {
		t.Errorf("header size = %d, want %d", buf.Len(), LabelHeaderSize)
	}

	got, err := ReadLabelHeader(&buf)
	if err != nil {
		t.Fatalf("ReadLabelHeader() error = %v", err)
	}
	if got != want {
		t.Errorf("ReadLabelHeader() = %+v, want %+v", got, want)
	}
	if got.ChunkCount() != 24 {
		t.Errorf("ChunkCount() = %d, want 24", got.ChunkCount())
	}
}

func TestChunkOffsets(t *testing.T) {
	vg := VolumeGeometry{Width: 8, Height: 8, Depth: 8, ChunkDim: 4, BitsPerPixel: 8}
	if got := VolumeChunkOffset(vg, 0); got != VolumeHeaderSize {
		t.Errorf("VolumeChunkOffset(0) = %d, want %d", got, VolumeHeaderSize)
	}
	if got := VolumeChunkOffset(vg, 3); got != VolumeHeaderSize+3*64 {
		t.Errorf("VolumeChunkOffset(3) = %d, want %d", got, VolumeHeaderSize+3*64)
	}

	lg := LabelGeometry{ChunkDim: 4, CountX: 2, CountY: 2, CountZ: 2}
	if got := LabelChunkOffset(lg, 5); got != LabelHeaderSize+5*64 {
		t.Errorf("LabelChunkOffset(5) = %d, want %d", got, LabelHeaderSize+5*64)
	}
}
