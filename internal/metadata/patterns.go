package metadata

import (
	"regexp"
	"strings"
	"time"
)

// namePat matches a run of capitalized word tokens. Underscores act as space
// substitutes in filenames and are normalized before validation.
const namePat = `[A-Z][A-Za-z'-]+(?:[ _][A-Z][A-Za-z'-]+)*`

// Structured filename pairings: <Name><sep><ISO-date> or <ISO-date><sep><Name>.
// When one matches, both fields resolve from the filename.
var (
	reNameThenDate = regexp.MustCompile(`^(` + namePat + `)[ _-]+(\d{4}-\d{2}-\d{2})`)
	reDateThenName = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})[ _-]+(` + namePat + `)`)
)

// reNameRun is the generic capitalized-word-run heuristic for filenames.
var reNameRun = regexp.MustCompile(namePat)

const monthPat = `(?:January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sept?|Oct|Nov|Dec)`

// datePatterns are tried in order; the first match wins. The order is part of
// the extraction contract and must not be "improved" to prefer longest match.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`),
	regexp.MustCompile(`\d{1,2}-\d{1,2}-\d{4}`),
	regexp.MustCompile(monthPat + `\.?\s+\d{1,2},?\s+\d{4}`),
}

// contentDateLabels anchor a date to an explicit label in the document body.
var contentDateLabels = []*regexp.Regexp{
	regexp.MustCompile(`(?i:therapy session on):?\s*([^\n]+)`),
	regexp.MustCompile(`(?i:session on):?\s*([^\n]+)`),
	regexp.MustCompile(`(?i:date):\s*([^\n]+)`),
}

// contentNamePatterns are tried in this fixed order against the first lines
// of the document. The first pattern whose capture passes name validation
// wins, even if a later pattern would capture a longer candidate.
var contentNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`Client:\s*(` + namePat + `)`),
	regexp.MustCompile(`Patient:\s*(` + namePat + `)`),
	regexp.MustCompile(`(` + namePat + `)'s\s+(?i:therapy session)`),
	regexp.MustCompile(`(?i:session with):?\s*(` + namePat + `)`),
	regexp.MustCompile(`(?i:therapy session):\s*(` + namePat + `)`),
	regexp.MustCompile(`(?i:progress note for):?\s*(` + namePat + `)`),
	regexp.MustCompile(`(?i:comprehensive clinical progress note for)\s+(` + namePat + `)'s`),
}

// dateLayouts mirror datePatterns: ISO, numeric slash/dash, month-name forms.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
}

// parseDateToken parses a matched date substring into a calendar date.
func parseDateToken(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// findDate scans text with the generic date patterns, in pattern order.
func findDate(text string) (time.Time, bool) {
	for _, re := range datePatterns {
		if m := re.FindString(text); m != "" {
			if t, ok := parseDateToken(m); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
