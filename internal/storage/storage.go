package storage

import (
	"context"
	"fmt"

	"github.com/mduc-2610/doc-agent-mlt/internal/config"
)

// Provider abstracts where extracted content, source files, and summaries
// live. The pipeline only ever goes through this interface.
type Provider interface {
	Name() string
	Write(ctx context.Context, path string, content []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}

// New creates the provider selected by configuration.
func New(ctx context.Context, cfg *config.Config) (Provider, error) {
	switch cfg.StorageProvider {
	case "", "local":
		return NewLocalProvider(cfg.StorageLocalDir), nil
	case "gcs":
		return NewGCSProvider(ctx, cfg.StorageBucket)
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.StorageProvider)
	}
}

// ContentPath is where a document's extracted text is stored.
func ContentPath(documentID string) string {
	return "content/" + documentID + ".txt"
}

// SourcePath is where a document's original upload is stored.
func SourcePath(documentID, ext string) string {
	if ext == "" {
		ext = ".bin"
	}
	return "source/" + documentID + ext
}

// SummaryPath is where a document's generated summary is stored.
func SummaryPath(documentID string) string {
	return "summary/" + documentID + "_summary.txt"
}
