package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/scanforge/volpack"
)

var unpackCmd = &cobra.Command{
	Use:   "unpack <container>",
	Short: "Decompress a container into a volume directory",
	Long: `Decompress a .cts3d container, regenerating volume.bin (and
labels.bin, if the container carries labels) under the output
directory.

Examples:
  volpack unpack scan-042.cts3d
  volpack unpack scan-042.cts3d -o ./restored/scan-042`,
	Args: cobra.ExactArgs(1),
	RunE: runUnpack,
}

var unpackOutput string

func init() {
	unpackCmd.Flags().StringVarP(&unpackOutput, "output", "o", "", "output directory (default container name without extension)")
	rootCmd.AddCommand(unpackCmd)
}

func runUnpack(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := unpackOutput
	if output == "" {
		output = strings.TrimSuffix(input, ".cts3d")
		if output == input {
			output = input + ".out"
		}
	}

	codec, err := volpack.New(
		volpack.WithLogger(newLogger()),
		volpack.WithProgress(printProgress),
	)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	if err := codec.DecompressFile(ctx, input, output); err != nil {
		return fmt.Errorf("unpacking %s: %w", input, err)
	}

	fmt.Printf("\nUnpacked %s -> %s (%v)\n", input, output, time.Since(start).Round(time.Millisecond))
	return nil
}
