package fsxs3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/fsx"
)

// S3FileSystem implements fsx.FileSystem on top of an S3 bucket.
type S3FileSystem struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3FileSystem creates a filesystem rooted at bucket/prefix.
func NewS3FileSystem(client *s3.Client, bucket, prefix string) fsx.FileSystem {
	return &S3FileSystem{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (f *S3FileSystem) key(path string) string {
	path = strings.TrimPrefix(path, "/")
	if f.prefix == "" {
		return path
	}
	return f.prefix + "/" + path
}

// WriteFile uploads data to the bucket.
func (f *S3FileSystem) WriteFile(ctx context.Context, path string, data []byte) error {
	_, err := f.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key(path)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", path, err)
	}
	return nil
}

// ReadFileStream opens the object for streaming; the caller closes it.
func (f *S3FileSystem) ReadFileStream(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key(path)),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", path, err)
	}
	return out.Body, nil
}

// DeleteFile removes the object.
func (f *S3FileSystem) DeleteFile(ctx context.Context, path string) error {
	_, err := f.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key(path)),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", path, err)
	}
	return nil
}

// Join builds a slash-separated storage path.
func (f *S3FileSystem) Join(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return strings.Join(cleaned, "/")
}
