package extract

import (
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/damilare-ak/clinicnote/constants"
	"github.com/damilare-ak/clinicnote/internal/common"
)

// Decoding strategies tried in order: UTF-8 first, then the two legacy
// single-byte encodings transcripts show up in. Order matters and is part of
// the extraction contract.
var textDecoders = []struct {
	method  string
	charmap *charmap.Charmap
}{
	{"text-latin1", charmap.ISO8859_1},
	{"text-win1252", charmap.Windows1252},
}

// extractText decodes a plain-text document. Unknown extensions land here and
// get the same fallback chain.
func (e *Extractor) extractText(path string) (TextExtractionResult, error) {
	res := TextExtractionResult{SourceType: constants.TEXT, Pages: 1}

	raw, err := os.ReadFile(path)
	if err != nil {
		return res, common.WrapError(err, "read file")
	}

	if utf8.Valid(raw) {
		res.Method = "text-utf8"
		res.Text = string(raw)
		return res, nil
	}

	for _, d := range textDecoders {
		decoded, err := d.charmap.NewDecoder().Bytes(raw)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", d.method, err))
			continue
		}
		res.Method = d.method
		res.Text = string(decoded)
		return res, nil
	}

	return res, fmt.Errorf("%w: no decoder accepted %s", common.ErrUnreadableDocument, path)
}
