package format

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/damilare-ak/clinicnote/constants"
)

// minPrefixLen is the shortest truncated line still accepted as a major
// section heading, so "OBJ" alone does not become a heading.
const minPrefixLen = 4

// subsectionPatterns mark numbered analysis subsections as level-3 headings.
var subsectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^Shift \d+:`),
	regexp.MustCompile(`^Theme \d+:`),
	regexp.MustCompile(`^\d+\.\s+\*\*`),
	regexp.MustCompile(`^\*\*\d+\.`),
}

// Formatter classifies raw AI note text into rich-text blocks. Stateless and
// safe for concurrent use.
type Formatter struct{}

func NewFormatter() *Formatter { return &Formatter{} }

// Format runs the line classifier over the note text. Classification rules
// apply per physical line, first match wins:
// blank, major section heading, numbered subsection heading, named analysis
// phrase, bullet, quote, then paragraph accumulation. Consecutive plain lines
// coalesce into a single paragraph.
func (f *Formatter) Format(raw, clientName string, sessionDate time.Time) Note {
	note := Note{
		Title:     Title(clientName, sessionDate),
		PlainText: raw,
	}

	var para []string
	flush := func() {
		if len(para) == 0 {
			return
		}
		note.Blocks = append(note.Blocks, Block{
			Type: BlockParagraph,
			Text: strings.Join(para, "\n"),
		})
		para = para[:0]
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			flush()

		case isMajorSection(trimmed):
			flush()
			note.Blocks = append(note.Blocks, Block{Type: BlockHeading, Level: 2, Text: stripHeadingDecoration(trimmed)})

		case isSubsection(trimmed):
			flush()
			note.Blocks = append(note.Blocks, Block{Type: BlockHeading, Level: 3, Text: stripHeadingDecoration(trimmed)})

		case isAnalysisPhrase(trimmed):
			flush()
			note.Blocks = append(note.Blocks, Block{Type: BlockHeading, Level: 3, Italic: true, Text: stripHeadingDecoration(trimmed)})

		case strings.HasPrefix(trimmed, "•") || strings.HasPrefix(trimmed, "- "):
			flush()
			text := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(trimmed, "•"), "- "))
			note.Blocks = append(note.Blocks, Block{Type: BlockBullet, Text: text})

		case len(trimmed) >= 2 && strings.HasPrefix(trimmed, `"`) && strings.HasSuffix(trimmed, `"`):
			flush()
			note.Blocks = append(note.Blocks, Block{Type: BlockQuote, Text: trimmed})

		default:
			para = append(para, trimmed)
		}
	}
	flush()

	return note
}

// Title synthesizes the fixed note title template.
func Title(clientName string, sessionDate time.Time) string {
	if clientName == "" {
		clientName = "Unknown Client"
	}
	return fmt.Sprintf("Comprehensive Clinical Progress Note for %s's Therapy Session on %s",
		clientName, sessionDate.Format("January 2, 2006"))
}

// isMajorSection accepts a line equal to a known section label, a label with
// trailing punctuation, or a short truncated prefix of a label.
func isMajorSection(line string) bool {
	norm := strings.ToUpper(stripHeadingDecoration(line))
	if norm == "" {
		return false
	}
	for _, label := range constants.MajorSections {
		if norm == label {
			return true
		}
		if len(norm) >= minPrefixLen && strings.HasPrefix(label, norm) {
			return true
		}
	}
	return false
}

func isSubsection(line string) bool {
	for _, re := range subsectionPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func isAnalysisPhrase(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range constants.AnalysisPhrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// stripHeadingDecoration removes markdown emphasis markers and trailing
// colons that AI output tends to wrap headings in.
func stripHeadingDecoration(line string) string {
	line = strings.Trim(line, "*# ")
	return strings.TrimRight(line, ": ")
}
