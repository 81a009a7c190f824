package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/damilare-ak/clinicnote/internal/common"
)

// Insight is the consolidated output of the concurrent analysis path: every
// provider that succeeded contributes its section, keyed by provider name.
type Insight struct {
	GeneratedAt string            `json:"generated_at"`
	Providers   []string          `json:"providers"`
	Sections    map[string]string `json:"sections"`
}

// Consolidate merges the successful analysis results. The second return is
// false when no provider succeeded.
func Consolidate(results []AnalysisResult) (Insight, bool) {
	insight := Insight{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Sections:    make(map[string]string),
	}
	for _, r := range results {
		if r.Status != StatusSuccess {
			continue
		}
		insight.Providers = append(insight.Providers, r.Provider)
		insight.Sections[r.Provider] = r.Content
	}
	return insight, len(insight.Providers) > 0
}

// Merged renders the insight as one text document, provider sections in
// settle order.
func (in Insight) Merged() string {
	var b strings.Builder
	for _, p := range in.Providers {
		fmt.Fprintf(&b, "=== %s ===\n\n%s\n\n", strings.ToUpper(p), in.Sections[p])
	}
	return strings.TrimRight(b.String(), "\n")
}

const insightSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["generated_at", "providers", "sections"],
  "properties": {
    "generated_at": {"type": "string", "format": "date-time"},
    "providers": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string", "enum": ["openai", "anthropic", "gemini"]}
    },
    "sections": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {"type": "string", "minLength": 1}
    }
  },
  "additionalProperties": false
}`

var insightSchema = jsonschema.MustCompileString("insight.schema.json", insightSchemaJSON)

// ValidateInsight checks a consolidated insight against the schema before it
// leaves the analysis path.
func ValidateInsight(in Insight) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return common.WrapError(err, "encode insight")
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return common.WrapError(err, "decode insight")
	}
	if err := insightSchema.Validate(doc); err != nil {
		return common.NewAppError("INSIGHT_INVALID", "consolidated insight failed schema validation", err)
	}
	return nil
}
