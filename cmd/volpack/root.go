package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags.
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "volpack",
	Short: "Compress and inspect chunked 3D volume containers",
	Long: `Volpack is a CLI tool for the CTS3D chunked volume container
format: 3D predictive coding and run-length coding per chunk, deflate
on top, compressed in parallel with deterministic output.

Examples:
  # Compress a volume directory
  volpack pack ./scan-042 -o scan-042.cts3d

  # Decompress a container
  volpack unpack scan-042.cts3d -o ./scan-042

  # Show the container header
  volpack info scan-042.cts3d`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// newLogger returns a development logger when --verbose is set and a
// no-op logger otherwise.
func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
