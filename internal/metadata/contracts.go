package metadata

import "time"

// Source records where a metadata field came from, so callers can tell an
// inferred value from a substituted default.
type Source string

const (
	SourceFilename Source = "filename"
	SourceContent  Source = "content"
	SourceUnknown  Source = "unknown"
	SourceDefault  Source = "default"
)

type SourceTags struct {
	Client Source
	Date   Source
}

// Metadata is the extraction outcome. SessionDate is always set: when no
// pattern matches anywhere, it holds today's date and the tag says so.
// ClientName may be empty; pipelines substitute a placeholder at the
// boundary, not here.
type Metadata struct {
	ClientName  string
	SessionDate time.Time
	Source      SourceTags
}
