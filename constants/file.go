package constants

import "strings"

// FileTypes holds the canonical document formats for transcript processing.
var FileTypes = []string{"PDF", "TEXT"}

const (
	PDF  = "PDF"
	TEXT = "TEXT"
)

// AllowedExtensions holds the default allowed file extensions for transcript ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"txt":  {},
	"text": {},
	"md":   {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension to a canonical document format.
// Unknown extensions map to TEXT; the extractor decodes them with the same
// fallback chain as plain text.
func MapExtToFormat(ext string) string {
	if NormalizeExt(ext) == "pdf" {
		return PDF
	}
	return TEXT
}
