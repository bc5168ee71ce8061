package packer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/scanforge/volpack/internal/format"
	"github.com/scanforge/volpack/internal/source/filesource"
	"github.com/scanforge/volpack/internal/source/memsource"
)

// testVolume builds an 8x8x8 volume chunked at 4, eight chunks, chunk
// i filled with the byte value i.
func testVolume(t *testing.T) *memsource.Volume {
	t.Helper()
	geom := format.VolumeGeometry{Width: 8, Height: 8, Depth: 8, ChunkDim: 4, BitsPerPixel: 8, PixelSize: 0.5}
	v := memsource.NewVolume(geom)
	for i := 0; i < v.ChunkCount(); i++ {
		if err := v.SetChunk(i, bytes.Repeat([]byte{byte(i)}, geom.ChunkSize())); err != nil {
			t.Fatal(err)
		}
	}
	return v
}

func testLabels(t *testing.T) *memsource.Labels {
	t.Helper()
	geom := format.LabelGeometry{ChunkDim: 4, CountX: 2, CountY: 2, CountZ: 2}
	l := memsource.NewLabels(geom)
	for i := 0; i < l.ChunkCount(); i++ {
		if err := l.SetChunk(i, bytes.Repeat([]byte{byte(i * 10)}, geom.ChunkSize())); err != nil {
			t.Fatal(err)
		}
	}
	return l
}

func TestPack_SmallerThanRaw(t *testing.T) {
	vol := testVolume(t)
	p := &Packer{Level: 5, PredictiveCoding: true, RunLengthEncoding: true}

	var buf bytes.Buffer
	if err := p.Pack(context.Background(), vol, nil, &buf); err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	// Eight constant-valued 64-byte chunks total 512 raw bytes; the
	// container, headers included, must come in below that.
	if buf.Len() >= 512 {
		t.Errorf("container is %d bytes, want < 512", buf.Len())
	}
}

func TestPackUnpack_RoundTrip(t *testing.T) {
	vol := testVolume(t)
	p := &Packer{Level: 5, PredictiveCoding: true, RunLengthEncoding: true}

	var buf bytes.Buffer
	if err := p.Pack(context.Background(), vol, nil, &buf); err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	dir := t.TempDir()
	u := &Unpacker{}
	if err := u.Unpack(context.Background(), &buf, dir); err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}

	restored, err := filesource.OpenVolume(filepath.Join(dir, format.VolumeFileName))
	if err != nil {
		t.Fatalf("OpenVolume() error = %v", err)
	}
	defer restored.Close()

	if restored.Geometry() != vol.Geometry() {
		t.Errorf("restored geometry = %+v, want %+v", restored.Geometry(), vol.Geometry())
	}
	for i := 0; i < vol.ChunkCount(); i++ {
		want, _ := vol.ReadChunk(context.Background(), i)
		got, err := restored.ReadChunk(context.Background(), i)
		if err != nil {
			t.Fatalf("ReadChunk(%d) error = %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("chunk %d differs after round trip", i)
		}
	}
}

func TestPackUnpack_WithLabels(t *testing.T) {
	vol := testVolume(t)
	labels := testLabels(t)
	p := &Packer{Level: 7, PredictiveCoding: true, RunLengthEncoding: true}

	var buf bytes.Buffer
	if err := p.Pack(context.Background(), vol, labels, &buf); err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	dir := t.TempDir()
	u := &Unpacker{}
	if err := u.Unpack(context.Background(), &buf, dir); err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}

	restored, err := filesource.OpenLabels(filepath.Join(dir, format.LabelFileName))
	if err != nil {
		t.Fatalf("OpenLabels() error = %v", err)
	}
	defer restored.Close()

	if restored.LabelGeometry() != labels.LabelGeometry() {
		t.Errorf("restored label geometry = %+v, want %+v", restored.LabelGeometry(), labels.LabelGeometry())
	}
	for i := 0; i < labels.ChunkCount(); i++ {
		want, _ := labels.ReadChunk(context.Background(), i)
		got, err := restored.ReadChunk(context.Background(), i)
		if err != nil {
			t.Fatalf("ReadChunk(%d) error = %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("label chunk %d differs after round trip", i)
		}
	}
}

func TestPack_Deterministic(t *testing.T) {
	vol := testVolume(t)

	var serial, parallel bytes.Buffer
	p1 := &Packer{Workers: 1, Level: 5, PredictiveCoding: true, RunLengthEncoding: true}
	if err := p1.Pack(context.Background(), vol, nil, &serial); err != nil {
		t.Fatalf("Pack(workers=1) error = %v", err)
	}
	p8 := &Packer{Workers: 8, Level: 5, PredictiveCoding: true, RunLengthEncoding: true}
	if err := p8.Pack(context.Background(), vol, nil, &parallel); err != nil {
		t.Fatalf("Pack(workers=8) error = %v", err)
	}

	if !bytes.Equal(serial.Bytes(), parallel.Bytes()) {
		t.Error("worker count changed the container bytes")
	}
}

func TestPack_TransformFlagGrid(t *testing.T) {
	vol := testVolume(t)

	for _, predict := range []bool{false, true} {
		for _, rle := range []bool{false, true} {
			p := &Packer{Level: 9, PredictiveCoding: predict, RunLengthEncoding: rle}

			var buf bytes.Buffer
			if err := p.Pack(context.Background(), vol, nil, &buf); err != nil {
				t.Fatalf("predict=%v rle=%v: Pack() error = %v", predict, rle, err)
			}

			dir := t.TempDir()
			u := &Unpacker{}
			if err := u.Unpack(context.Background(), &buf, dir); err != nil {
				t.Fatalf("predict=%v rle=%v: Unpack() error = %v", predict, rle, err)
			}

			restored, err := filesource.OpenVolume(filepath.Join(dir, format.VolumeFileName))
			if err != nil {
				t.Fatal(err)
			}
			for i := 0; i < vol.ChunkCount(); i++ {
				want, _ := vol.ReadChunk(context.Background(), i)
				got, err := restored.ReadChunk(context.Background(), i)
				if err != nil {
					t.Fatal(err)
				}
				if !bytes.Equal(got, want) {
					t.Errorf("predict=%v rle=%v: chunk %d differs", predict, rle, i)
				}
			}
			restored.Close()
		}
	}
}

func TestPack_Cancelled(t *testing.T) {
	vol := testVolume(t)
	p := &Packer{Level: 5, PredictiveCoding: true, RunLengthEncoding: true}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	if err := p.Pack(ctx, vol, nil, &buf); !errors.Is(err, context.Canceled) {
		t.Errorf("Pack() error = %v, want context.Canceled", err)
	}
	if buf.Len() != 0 {
		t.Errorf("cancelled pack wrote %d bytes, want 0", buf.Len())
	}
}

func TestUnpack_CleansUpOnFailure(t *testing.T) {
	vol := testVolume(t)
	p := &Packer{Level: 5, PredictiveCoding: true, RunLengthEncoding: true}

	var buf bytes.Buffer
	if err := p.Pack(context.Background(), vol, nil, &buf); err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	// Drop the tail so a mid-stream record read fails.
	truncated := buf.Bytes()[:buf.Len()-20]

	dir := t.TempDir()
	u := &Unpacker{}
	if err := u.Unpack(context.Background(), bytes.NewReader(truncated), dir); err == nil {
		t.Fatal("Unpack() error = nil, want error for truncated container")
	}

	if _, err := os.Stat(filepath.Join(dir, format.VolumeFileName)); !errors.Is(err, os.ErrNotExist) {
		t.Error("partial volume file left behind after failed unpack")
	}
}

func TestUnpack_Progress(t *testing.T) {
	vol := testVolume(t)
	labels := testLabels(t)
	p := &Packer{Level: 5, PredictiveCoding: true, RunLengthEncoding: true}

	var buf bytes.Buffer
	if err := p.Pack(context.Background(), vol, labels, &buf); err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	var reported []int
	u := &Unpacker{Progress: func(pct int) { reported = append(reported, pct) }}
	if err := u.Unpack(context.Background(), &buf, t.TempDir()); err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}

	if len(reported) == 0 {
		t.Fatal("no progress reported")
	}
	for i := 1; i < len(reported); i++ {
		if reported[i] <= reported[i-1] {
			t.Fatalf("progress not monotonic: %v", reported)
		}
	}
	if last := reported[len(reported)-1]; last != 100 {
		t.Errorf("final progress = %d, want 100", last)
	}
}

func TestPack_Progress(t *testing.T) {
	vol := testVolume(t)

	var reported []int
	p := &Packer{
		Workers:           1,
		Level:             5,
		PredictiveCoding:  true,
		RunLengthEncoding: true,
		Progress:          func(pct int) { reported = append(reported, pct) },
	}

	var buf bytes.Buffer
	if err := p.Pack(context.Background(), vol, nil, &buf); err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	if len(reported) == 0 {
		t.Fatal("no progress reported")
	}
	if last := reported[len(reported)-1]; last != 100 {
		t.Errorf("final progress = %d, want 100", last)
	}
}
