package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/damilare-ak/clinicnote/constants"
	"github.com/damilare-ak/clinicnote/internal/common"
)

// extractPDF concatenates per-page text with a blank-line separator. A page
// that yields no text contributes an empty segment, not an error.
func (e *Extractor) extractPDF(ctx context.Context, path string) (TextExtractionResult, error) {
	res := TextExtractionResult{SourceType: constants.PDF, Method: "pdf-text"}

	f, err := os.Open(path)
	if err != nil {
		return res, common.WrapError(err, "open pdf")
	}
	defer func(f *os.File) {
		if err := f.Close(); err != nil {
			e.logger.Warn("extract.pdf.close_error", "path", path, "error", err)
		}
	}(f)

	st, err := f.Stat()
	if err != nil {
		return res, common.WrapError(err, "stat pdf")
	}

	reader, err := pdf.NewReader(f, st.Size())
	if err != nil {
		return res, fmt.Errorf("%w: %v", common.ErrUnreadableDocument, err)
	}

	pages := reader.NumPage()
	segments := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			segments = append(segments, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", i, err))
			segments = append(segments, "")
			continue
		}
		segments = append(segments, strings.TrimSpace(text))
	}

	res.Pages = pages
	res.Text = strings.Join(segments, "\n\n")
	return res, nil
}
