package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scanforge/volpack/internal/archive"
	"github.com/scanforge/volpack/internal/archive/diskarchive"
	"github.com/scanforge/volpack/internal/archive/gcsarchive"
	"github.com/scanforge/volpack/internal/archive/s3archive"
)

var pushCmd = &cobra.Command{
	Use:   "push <container>",
	Short: "Upload a container file to an archive",
	Long: `Upload a .cts3d container to an archive backend.

The --archive flag selects the backend:
  gs://bucket/prefix    Google Cloud Storage
  s3://bucket/prefix    AWS S3
  /path/to/dir          local directory

Examples:
  volpack push scan-042.cts3d --archive gs://scans/compressed
  volpack push scan-042.cts3d --archive /mnt/backup/scans`,
	Args: cobra.ExactArgs(1),
	RunE: runPush,
}

var archiveURL string

func init() {
	pushCmd.Flags().StringVar(&archiveURL, "archive", "", "archive location (gs://, s3:// or a directory)")
	pushCmd.MarkFlagRequired("archive")
	rootCmd.AddCommand(pushCmd)
}

func runPush(cmd *cobra.Command, args []string) error {
	path := args[0]

	ctx, cancel := signalContext()
	defer cancel()

	ar, err := openArchive(ctx, archiveURL)
	if err != nil {
		return err
	}
	defer ar.Close()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening container: %w", err)
	}
	defer f.Close()

	name := filepath.Base(path)
	if err := ar.Put(ctx, name, f); err != nil {
		return fmt.Errorf("pushing %s: %w", name, err)
	}

	fmt.Printf("Pushed %s to %s\n", name, archiveURL)
	return nil
}

// openArchive builds an archive backend from a location string.
func openArchive(ctx context.Context, loc string) (archive.Archive, error) {
	switch {
	case strings.HasPrefix(loc, "gs://"):
		bucket, prefix := splitBucketURL(strings.TrimPrefix(loc, "gs://"))
		return gcsarchive.New(ctx, bucket, gcsarchive.WithPrefix(prefix))
	case strings.HasPrefix(loc, "s3://"):
		bucket, prefix := splitBucketURL(strings.TrimPrefix(loc, "s3://"))
		return s3archive.New(ctx, bucket, s3archive.WithPrefix(prefix))
	default:
		return diskarchive.New(loc)
	}
}

// splitBucketURL splits "bucket/some/prefix" into bucket and prefix.
func splitBucketURL(s string) (bucket, prefix string) {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}
