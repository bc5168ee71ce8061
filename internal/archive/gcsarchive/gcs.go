// Package gcsarchive implements a Google Cloud Storage archive backend.
package gcsarchive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/scanforge/volpack/internal/archive"
)

// Compile-time check that Archive implements archive.Archive.
var _ archive.Archive = (*Archive)(nil)

// Archive stores containers as objects in a GCS bucket.
type Archive struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
}

// New creates a new GCS archive. The bucket must already exist.
func New(ctx context.Context, bucketName string, opts ...Option) (*Archive, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	a := &Archive{
		client: client,
		bucket: client.Bucket(bucketName),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Option configures an Archive.
type Option func(*Archive)

// WithPrefix sets an object key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(a *Archive) {
		a.prefix = strings.TrimSuffix(prefix, "/")
		if a.prefix != "" {
			a.prefix += "/"
		}
	}
}

// Put uploads a container. GCS writes are atomic; the object only
// becomes visible once the writer closes cleanly.
func (a *Archive) Put(ctx context.Context, name string, r io.Reader) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	w := a.bucket.Object(a.key(name)).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("uploading container: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing upload: %w", err)
	}
	return nil
}

// Get opens a stored container for reading.
func (a *Archive) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	reader, err := a.bucket.Object(a.key(name)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, archive.ErrNotFound
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}
	return reader, nil
}

// List returns the names of all stored containers.
func (a *Archive) List(ctx context.Context) ([]string, error) {
	it := a.bucket.Objects(ctx, &storage.Query{Prefix: a.prefix})

	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing containers: %w", err)
		}
		names = append(names, strings.TrimPrefix(attrs.Name, a.prefix))
	}
	return names, nil
}

// Close releases the GCS client.
func (a *Archive) Close() error {
	return a.client.Close()
}

// key returns the full object key for a container name.
func (a *Archive) key(name string) string {
	return a.prefix + name
}
