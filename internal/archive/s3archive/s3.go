// Package s3archive implements an AWS S3 archive backend.
package s3archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/scanforge/volpack/internal/archive"
)

// Compile-time check that Archive implements archive.Archive.
var _ archive.Archive = (*Archive)(nil)

// Archive stores containers as objects in an S3 bucket.
type Archive struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates a new S3 archive. The bucket must already exist.
func New(ctx context.Context, bucketName string, opts ...Option) (*Archive, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	a := &Archive{
		client: s3.NewFromConfig(cfg),
		bucket: bucketName,
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Option configures an Archive.
type Option func(*Archive) error

// WithPrefix sets an object key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(a *Archive) error {
		a.prefix = strings.TrimSuffix(prefix, "/")
		if a.prefix != "" {
			a.prefix += "/"
		}
		return nil
	}
}

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(a *Archive) error {
		cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
		if err != nil {
			return fmt.Errorf("loading AWS config with region: %w", err)
		}
		a.client = s3.NewFromConfig(cfg)
		return nil
	}
}

// WithEndpoint sets a custom endpoint (for S3-compatible services like MinIO).
func WithEndpoint(endpoint string) Option {
	return func(a *Archive) error {
		cfg, err := config.LoadDefaultConfig(context.Background())
		if err != nil {
			return fmt.Errorf("loading AWS config for endpoint: %w", err)
		}
		a.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
		return nil
	}
}

// Put uploads a container.
func (a *Archive) Put(ctx context.Context, name string, r io.Reader) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(name)),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("uploading container: %w", err)
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

	result, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, archive.ErrNotFound
		}
		return nil, fmt.Errorf("reading container: %w", err)
	}
	return result.Body, nil
}

// List returns the names of all stored containers.
func (a *Archive) List(ctx context.Context) ([]string, error) {
	var names []string
	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(a.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing containers: %w", err)
		}
		for _, obj := range page.Contents {
			names = append(names, strings.TrimPrefix(aws.ToString(obj.Key), a.prefix))
		}
	}
	return names, nil
}

// Close is a no-op; the S3 client does not need explicit closing.
func (a *Archive) Close() error {
	return nil
}

// key returns the full object key for a container name.
func (a *Archive) key(name string) string {
	return a.prefix + name
}
