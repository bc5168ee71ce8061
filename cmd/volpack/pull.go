package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var pullCmd = &cobra.Command{
	Use:   "pull [container-name]",
	Short: "Download a container file from an archive",
	Long: `Download a .cts3d container from an archive backend, or list the
archive's containers when no name is given.

Examples:
  volpack pull --archive gs://scans/compressed
  volpack pull scan-042.cts3d --archive gs://scans/compressed -o ./scan-042.cts3d`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPull,
}

var pullOutput string

func init() {
	pullCmd.Flags().StringVar(&archiveURL, "archive", "", "archive location (gs://, s3:// or a directory)")
	pullCmd.Flags().StringVarP(&pullOutput, "output", "o", "", "output path (default container name)")
	pullCmd.MarkFlagRequired("archive")
	rootCmd.AddCommand(pullCmd)
}

func runPull(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	ar, err := openArchive(ctx, archiveURL)
	if err != nil {
		return err
	}
	defer ar.Close()

	if len(args) == 0 {
		names, err := ar.List(ctx)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("Archive is empty.")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}

	name := args[0]
	output := pullOutput
	if output == "" {
		output = name
	}

	r, err := ar.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("pulling %s: %w", name, err)
	}
	defer r.Close()

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		os.Remove(output)
		return fmt.Errorf("writing %s: %w", output, err)
	}

	fmt.Printf("Pulled %s (%d bytes)\n", output, n)
	return nil
}
