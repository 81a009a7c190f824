package extract

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/damilare-ak/clinicnote/constants"
)

// Extractor pulls raw text out of a transcript document. PDF files are read
// page by page; everything else goes through the plain-text decode chain.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

var _ TextExtractor = (*Extractor)(nil)

// Extract is a pure read: no side effects, and failure is local to the file.
func (e *Extractor) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	start := time.Now()

	var res TextExtractionResult
	var err error
	switch constants.MapExtToFormat(filepath.Ext(path)) {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	default:
		res, err = e.extractText(path)
	}
	res.Duration = time.Since(start)
	if err != nil {
		e.logger.Error("extract.failed", "path", path, "error", err)
		return res, err
	}

	e.logger.Info("extract.ok",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
