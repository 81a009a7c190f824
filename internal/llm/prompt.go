package llm

import (
	"fmt"
	"os"
	"strings"
)

// transcriptPlaceholder is substituted with the session transcript when a
// prompt is built. A template missing the placeholder is a configuration
// mistake and rejected at load time.
const transcriptPlaceholder = "{{TRANSCRIPT}}"

// defaultPromptTemplate is the built-in clinical SOAP prompt used when no
// override file is configured.
const defaultPromptTemplate = `You are an experienced clinical psychologist writing a comprehensive progress note from a therapy session transcript.

Produce a structured clinical note with the following sections, each as an uppercase heading on its own line:

SUBJECTIVE
OBJECTIVE
ASSESSMENT
PLAN
KEY POINTS
SIGNIFICANT QUOTES
SESSION SUMMARY

Guidelines:
- Under SUBJECTIVE, summarize the client's reported experience in their own framing.
- Under OBJECTIVE, note observable presentation, affect, and engagement.
- Under ASSESSMENT, give your clinical impressions, including Emotional Landscape, Cognitive Patterns, and Relational Dynamics where evident.
- Under PLAN, list concrete next steps as bullet points starting with "-".
- Under SIGNIFICANT QUOTES, include direct client quotations wrapped in double quotes, one per line.
- Be specific and clinical. Do not invent facts not supported by the transcript.

Transcript:

` + transcriptPlaceholder + `
`

// LoadPromptTemplate returns the prompt template to use. An empty path means
// the built-in default. A file without the transcript placeholder is rejected
// rather than silently producing prompts with no transcript in them.
func LoadPromptTemplate(path string) (string, error) {
	if path == "" {
		return defaultPromptTemplate, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt template: %w", err)
	}
	tpl := string(raw)
	if !strings.Contains(tpl, transcriptPlaceholder) {
		return "", fmt.Errorf("prompt template %s has no %s placeholder", path, transcriptPlaceholder)
	}
	return tpl, nil
}

// BuildPrompt substitutes the transcript into the template.
func BuildPrompt(template, transcript string) string {
	return strings.ReplaceAll(template, transcriptPlaceholder, transcript)
}
