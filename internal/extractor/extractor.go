package extractor

import (
	"context"
)

// Extractor converts a raw source into plain text. Implementations cover one
// source type each; any non-empty string is valid output, including
// failure-sentinel phrasing from a transcription backend.
type Extractor interface {
	Extract(ctx context.Context, source string) (string, error)
}

// TextExtractor passes already-plain text through unchanged. It backs the
// text-upload path and stands at the boundary where PDF/DOCX/audio adapters
// would plug in.
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

func (e *TextExtractor) Extract(ctx context.Context, source string) (string, error) {
	return source, nil
}
