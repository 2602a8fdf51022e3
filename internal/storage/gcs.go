package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// GCSProvider stores files as objects in a Google Cloud Storage bucket.
type GCSProvider struct {
	client *gcs.Client
	bucket string
}

func NewGCSProvider(ctx context.Context, bucket string) (*GCSProvider, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs storage requires a bucket name")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcs client: %w", err)
	}
	return &GCSProvider{client: client, bucket: bucket}, nil
}

func (p *GCSProvider) Name() string {
	return "gcs"
}

func (p *GCSProvider) Write(ctx context.Context, path string, content []byte) error {
	w := p.client.Bucket(p.bucket).Object(path).NewWriter(ctx)
	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object %s: %w", path, err)
	}
	return w.Close()
}

func (p *GCSProvider) Read(ctx context.Context, path string) ([]byte, error) {
	r, err := p.client.Bucket(p.bucket).Object(path).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object %s: %w", path, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (p *GCSProvider) Delete(ctx context.Context, path string) error {
	err := p.client.Bucket(p.bucket).Object(path).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (p *GCSProvider) Exists(ctx context.Context, path string) (bool, error) {
	_, err := p.client.Bucket(p.bucket).Object(path).Attrs(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return false, nil
	}
	return false, err
}
