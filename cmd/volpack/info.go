package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scanforge/volpack/internal/format"
)

var infoCmd = &cobra.Command{
	Use:   "info <container>",
	Short: "Show the header of a container file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening container: %w", err)
	}
	defer f.Close()

	header, err := format.ReadHeader(bufio.NewReader(f))
	if err != nil {
		return err
	}
	geom := header.Geometry()
	cx, cy, cz := geom.ChunkCounts()

	stat, err := f.Stat()
	if err != nil {
		return err
	}

	fmt.Printf("Container:           %s (%d bytes)\n", path, stat.Size())
	fmt.Printf("Format version:      %d\n", format.Version)
	fmt.Printf("Volume extents:      %d x %d x %d\n", header.Width, header.Height, header.Depth)
	fmt.Printf("Chunk dim:           %d (%d x %d x %d = %d chunks)\n", header.ChunkDim, cx, cy, cz, geom.ChunkCount())
	fmt.Printf("Pixel size:          %g\n", header.PixelSize)
	fmt.Printf("Labels:              %v\n", header.HasLabels)
	fmt.Printf("Compression level:   %d\n", header.CompressionLevel)
	fmt.Printf("Predictive coding:   %v\n", header.PredictiveCoding)
	fmt.Printf("Run-length coding:   %v\n", header.RunLengthEncoding)
	return nil
}
