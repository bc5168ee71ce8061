package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/scanforge/volpack"
)

var packCmd = &cobra.Command{
	Use:   "pack <volume-dir>",
	Short: "Compress a volume directory into a container file",
	Long: `Compress the volume.bin (and labels.bin, if present) of a volume
directory into a single .cts3d container.

Chunks are compressed in parallel; the container is written in chunk
index order, so repeated runs produce byte-identical output.

Examples:
  # Compress with defaults
  volpack pack ./scan-042

  # Strongest compression, explicit output path
  volpack pack ./scan-042 -o archive/scan-042.cts3d --level 9

  # Disable predictive coding for noisy volumes
  volpack pack ./scan-042 --predict=false`,
	Args: cobra.ExactArgs(1),
	RunE: runPack,
}

var (
	packOutput  string
	packLevel   int
	packPredict bool
	packRLE     bool
	packWorkers int
)

func init() {
	packCmd.Flags().StringVarP(&packOutput, "output", "o", "", "output container path (default <volume-dir>.cts3d)")
	packCmd.Flags().IntVar(&packLevel, "level", volpack.DefaultCompressionLevel, "compression level 1-9")
	packCmd.Flags().BoolVar(&packPredict, "predict", true, "apply 3D predictive coding")
	packCmd.Flags().BoolVar(&packRLE, "rle", true, "apply run-length coding")
	packCmd.Flags().IntVar(&packWorkers, "workers", 0, "parallel workers (0 = number of CPUs)")
	rootCmd.AddCommand(packCmd)
}

func runPack(cmd *cobra.Command, args []string) error {
	volumeDir := strings.TrimSuffix(args[0], string(filepath.Separator))
	output := packOutput
	if output == "" {
		output = volumeDir + ".cts3d"
	}

	codec, err := volpack.New(
		volpack.WithCompressionLevel(packLevel),
		volpack.WithPredictiveCoding(packPredict),
		volpack.WithRunLengthEncoding(packRLE),
		volpack.WithWorkers(packWorkers),
		volpack.WithLogger(newLogger()),
		volpack.WithProgress(printProgress),
	)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	if err := codec.CompressFile(ctx, volumeDir, output); err != nil {
		return fmt.Errorf("packing %s: %w", volumeDir, err)
	}

	info, err := os.Stat(output)
	if err != nil {
		return err
	}
	fmt.Printf("\nPacked %s -> %s (%d bytes, %v)\n", volumeDir, output, info.Size(), time.Since(start).Round(time.Millisecond))
	return nil
}

// printProgress renders a single-line percent indicator.
func printProgress(percent int) {
	fmt.Printf("\r%3d%%", percent)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
