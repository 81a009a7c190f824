package constants

// Static word and phrase tables used by metadata extraction and note
// formatting. These are data, not control flow: extend the tables without
// touching the classifiers that consume them.

// MajorSections are top-level clinical note headings. A line that equals one
// of these (case-insensitive, trailing colon ignored) or is a short prefix of
// one becomes a level-2 heading.
var MajorSections = []string{
	"SUBJECTIVE",
	"OBJECTIVE",
	"ASSESSMENT",
	"PLAN",
	"KEY POINTS",
	"SIGNIFICANT QUOTES",
	"SESSION SUMMARY",
	"INTERVENTIONS",
	"CLINICAL IMPRESSIONS",
	"RISK ASSESSMENT",
	"TREATMENT PLAN",
	"THERAPEUTIC PROCESS NOTES",
	"HOMEWORK",
	"NEXT SESSION",
}

// AnalysisPhrases are named clinical-analysis subsections. A line containing
// one of these (case-insensitive substring) becomes an italic level-3 heading.
var AnalysisPhrases = []string{
	"Emotional Landscape",
	"Cognitive Patterns",
	"Relational Dynamics",
	"Defense Mechanisms",
	"Attachment Style",
	"Therapeutic Alliance",
	"Progress Indicators",
	"Areas of Resistance",
	"Somatic Presentations",
	"Meaning Making",
}

// ExcludedNameWords disqualify a candidate client name when any
// whitespace-separated token matches (case-insensitive). These are clinical
// or structural words that regularly sit where a name would.
var ExcludedNameWords = map[string]struct{}{
	"therapist":  {},
	"therapy":    {},
	"session":    {},
	"sessions":   {},
	"assessment": {},
	"client":     {},
	"patient":    {},
	"doctor":     {},
	"clinic":     {},
	"note":       {},
	"notes":      {},
	"transcript": {},
	"summary":    {},
	"progress":   {},
	"treatment":  {},
	"plan":       {},
	"intake":     {},
	"counseling": {},
	"report":     {},
	"subjective": {},
	"objective":  {},
}
