package volpack

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/scanforge/volpack/internal/format"
)

// writeTestVolume lays out an uncompressed 8x8x8 volume chunked at 4
// under a fresh directory and returns the directory path. Chunk i is
// filled with the byte value i.
func writeTestVolume(t *testing.T, withLabels bool) string {
	t.Helper()

	dir := t.TempDir()
	geom := format.VolumeGeometry{Width: 8, Height: 8, Depth: 8, ChunkDim: 4, BitsPerPixel: 8, PixelSize: 0.5}

	f, err := os.Create(filepath.Join(dir, format.VolumeFileName))
	if err != nil {
		t.Fatal(err)
	}
	if err := format.WriteVolumeHeader(f, geom); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < geom.ChunkCount(); i++ {
		if _, err := f.Write(bytes.Repeat([]byte{byte(i)}, geom.ChunkSize())); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	if withLabels {
		lgeom := format.LabelGeometry{ChunkDim: 4, CountX: 2, CountY: 2, CountZ: 2}
		lf, err := os.Create(filepath.Join(dir, format.LabelFileName))
		if err != nil {
			t.Fatal(err)
		}
		if err := format.WriteLabelHeader(lf, lgeom); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < lgeom.ChunkCount(); i++ {
			if _, err := lf.Write(bytes.Repeat([]byte{byte(i * 10)}, lgeom.ChunkSize())); err != nil {
				t.Fatal(err)
			}
		}
		if err := lf.Close(); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestNew_Defaults(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.level != DefaultCompressionLevel {
		t.Errorf("level = %d, want %d", c.level, DefaultCompressionLevel)
	}
	if !c.predict || !c.rle {
		t.Error("transforms not enabled by default")
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	for _, level := range []int{0, -1, 10} {
		if _, err := New(WithCompressionLevel(level)); !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("New(level=%d) error = %v, want ErrInvalidLevel", level, err)
		}
	}
}

func TestCodec_FileRoundTrip(t *testing.T) {
	srcDir := writeTestVolume(t, false)

	c, err := New(WithCompressionLevel(5))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "volume.cts3d")
	if err := c.CompressFile(context.Background(), srcDir, outPath); err != nil {
		t.Fatalf("CompressFile() error = %v", err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		t.Fatal(err)
	}
	rawInfo, err := os.Stat(filepath.Join(srcDir, format.VolumeFileName))
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() >= rawInfo.Size() {
		t.Errorf("container is %d bytes, want smaller than raw %d", info.Size(), rawInfo.Size())
	}

	dstDir := filepath.Join(t.TempDir(), "restored")
	if err := c.DecompressFile(context.Background(), outPath, dstDir); err != nil {
		t.Fatalf("DecompressFile() error = %v", err)
	}

	want, err := os.ReadFile(filepath.Join(srcDir, format.VolumeFileName))
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(dstDir, format.VolumeFileName))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Error("restored volume.bin differs from the original")
	}
}

func TestCodec_FileRoundTrip_WithLabels(t *testing.T) {
	srcDir := writeTestVolume(t, true)

	c, err := New(WithWorkers(2), WithChunkCache(4))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "volume.cts3d")
	if err := c.CompressFile(context.Background(), srcDir, outPath); err != nil {
		t.Fatalf("CompressFile() error = %v", err)
	}

	dstDir := filepath.Join(t.TempDir(), "restored")
	if err := c.DecompressFile(context.Background(), outPath, dstDir); err != nil {
		t.Fatalf("DecompressFile() error = %v", err)
	}

	for _, name := range []string{format.VolumeFileName, format.LabelFileName} {
		want, err := os.ReadFile(filepath.Join(srcDir, name))
		if err != nil {
			t.Fatal(err)
		}
		got, err := os.ReadFile(filepath.Join(dstDir, name))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("restored %s differs from the original", name)
		}
	}
}

func TestCompressFile_RemovesOutputOnFailure(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "volume.cts3d")
	emptyDir := t.TempDir()
	if err := c.CompressFile(context.Background(), emptyDir, outPath); err == nil {
		t.Fatal("CompressFile() error = nil, want error for missing volume.bin")
	}
	if _, err := os.Stat(outPath); !errors.Is(err, os.ErrNotExist) {
		t.Error("failed compression left the output file behind")
	}
}

func TestDecompress_NotAContainer(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	garbage := bytes.NewReader([]byte("definitely not a container"))
	if err := c.Decompress(context.Background(), garbage, t.TempDir()); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("Decompress() error = %v, want ErrInvalidSignature", err)
	}
}
