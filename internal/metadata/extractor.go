package metadata

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// contentScanLines bounds how far into the document the name patterns look.
// Client identifiers sit in the header region of a transcript.
const contentScanLines = 30

// Extractor infers client name and session date from a document's filename
// and body using layered heuristics. Filename-derived fields always beat
// content-derived fields; candidates are never merged across tiers.
type Extractor struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger, now: time.Now}
}

// Extract resolves each field independently through the precedence chain:
// structured filename pairing, generic filename scan, content patterns, then
// defaults. SessionDate is always set on return.
func (e *Extractor) Extract(filename, content string) Metadata {
	md := Metadata{Source: SourceTags{Client: SourceUnknown, Date: SourceDefault}}

	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	// Tier 1: structured <Name><sep><ISO-date> pairing, either order.
	e.fromStructuredFilename(stem, &md)

	// Tier 2: generic filename scan for whichever field is still open.
	if md.ClientName == "" {
		if m := reNameRun.FindString(stem); m != "" {
			if name := normalizeName(m); ValidClientName(name) {
				md.ClientName = name
				md.Source.Client = SourceFilename
			}
		}
	}
	if md.SessionDate.IsZero() {
		if t, ok := findDate(stem); ok {
			md.SessionDate = t
			md.Source.Date = SourceFilename
		}
	}

	// Tier 3: content name labels, fixed order, first valid capture wins.
	if md.ClientName == "" {
		head := headLines(content, contentScanLines)
		for _, re := range contentNamePatterns {
			m := re.FindStringSubmatch(head)
			if m == nil {
				continue
			}
			if name := normalizeName(m[1]); ValidClientName(name) {
				md.ClientName = name
				md.Source.Client = SourceContent
				break
			}
		}
	}

	// Tier 4: content dates, generic patterns then explicit labels.
	if md.SessionDate.IsZero() {
		if t, ok := findDate(content); ok {
			md.SessionDate = t
			md.Source.Date = SourceContent
		} else {
			for _, re := range contentDateLabels {
				m := re.FindStringSubmatch(content)
				if m == nil {
					continue
				}
				if t, ok := findDate(m[1]); ok {
					md.SessionDate = t
					md.Source.Date = SourceContent
					break
				}
			}
		}
	}

	// Final fallback: the date is never left unset, and the tag records that
	// it was substituted rather than inferred.
	if md.SessionDate.IsZero() {
		md.SessionDate = e.now()
		md.Source.Date = SourceDefault
	}

	e.logger.Debug("metadata.extracted",
		"filename", filename,
		"client", md.ClientName,
		"client_source", md.Source.Client,
		"date", md.SessionDate.Format("2006-01-02"),
		"date_source", md.Source.Date,
	)
	return md
}

func (e *Extractor) fromStructuredFilename(stem string, md *Metadata) {
	var name, date string
	if m := reNameThenDate.FindStringSubmatch(stem); m != nil {
		name, date = m[1], m[2]
	} else if m := reDateThenName.FindStringSubmatch(stem); m != nil {
		name, date = m[2], m[1]
	} else {
		return
	}

	if n := normalizeName(name); ValidClientName(n) {
		md.ClientName = n
		md.Source.Client = SourceFilename
	}
	if t, ok := parseDateToken(date); ok {
		md.SessionDate = t
		md.Source.Date = SourceFilename
	}
}

func headLines(content string, n int) string {
	lines := strings.Split(content, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
