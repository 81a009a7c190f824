package extract

import (
	"context"
	"time"
)

// TextExtractor is Stage 1: file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // "PDF" | "TEXT"
	Method     string // "pdf-text" | "text-utf8" | "text-latin1" | "text-win1252"
	Duration   time.Duration
	Warnings   []string
}
