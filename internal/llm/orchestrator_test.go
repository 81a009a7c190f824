package llm

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name  string
	text  string
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func newTestOrchestrator(providers ...Provider) *Orchestrator {
	return NewOrchestrator(providers, defaultPromptTemplate, 5*time.Second, slog.New(slog.DiscardHandler))
}

func TestProcess_FallsBackToNextProvider(t *testing.T) {
	a := &fakeProvider{name: "openai", err: errors.New("rate limited")}
	b := &fakeProvider{name: "anthropic", text: "SUBJECTIVE\nnote body"}
	c := &fakeProvider{name: "gemini", text: "unused"}

	note, err := newTestOrchestrator(a, b, c).Process(context.Background(), "transcript")

	require.NoError(t, err)
	assert.Equal(t, "anthropic", note.Provider)
	assert.Equal(t, "SUBJECTIVE\nnote body", note.RawText)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
	assert.Zero(t, c.calls, "chain must stop at first success")
}

func TestProcess_EmptyCompletionAdvancesChain(t *testing.T) {
	a := &fakeProvider{name: "openai", text: "   \n"}
	b := &fakeProvider{name: "anthropic", text: "real note"}

	note, err := newTestOrchestrator(a, b).Process(context.Background(), "transcript")

	require.NoError(t, err)
	assert.Equal(t, "anthropic", note.Provider)
}

func TestProcess_AllFailedEnumeratesCauses(t *testing.T) {
	a := &fakeProvider{name: "openai", err: errors.New("timeout")}
	b := &fakeProvider{name: "anthropic", err: errors.New("401")}
	c := &fakeProvider{name: "gemini", err: errors.New("quota")}

	_, err := newTestOrchestrator(a, b, c).Process(context.Background(), "transcript")

	var agg *AllProvidersFailedError
	require.ErrorAs(t, err, &agg)
	require.Len(t, agg.Failures, 3)
	assert.Equal(t, "openai", agg.Failures[0].Provider)
	assert.Equal(t, "gemini", agg.Failures[2].Provider)
	assert.Contains(t, err.Error(), "timeout")
	assert.Contains(t, err.Error(), "quota")
}

func TestProcess_NoProvidersConfigured(t *testing.T) {
	_, err := newTestOrchestrator().Process(context.Background(), "transcript")
	assert.ErrorIs(t, err, ErrNoProvidersConfigured)
}

func TestAnalyze_MergesSuccesses(t *testing.T) {
	a := &fakeProvider{name: "openai", text: "insight A"}
	b := &fakeProvider{name: "anthropic", err: errors.New("down")}
	c := &fakeProvider{name: "gemini", text: "insight C"}

	insight, err := newTestOrchestrator(a, b, c).Analyze(context.Background(), "transcript")

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"openai", "gemini"}, insight.Providers)
	assert.Equal(t, "insight A", insight.Sections["openai"])
	assert.Equal(t, "insight C", insight.Sections["gemini"])
	assert.NotContains(t, insight.Sections, "anthropic")

	merged := insight.Merged()
	assert.Contains(t, merged, "insight A")
	assert.Contains(t, merged, "insight C")
}

func TestAnalyze_AllFailed(t *testing.T) {
	a := &fakeProvider{name: "openai", err: errors.New("down")}

	_, err := newTestOrchestrator(a).Analyze(context.Background(), "transcript")

	var agg *AllProvidersFailedError
	assert.ErrorAs(t, err, &agg)
}

func TestAnalyze_NoProvidersConfigured(t *testing.T) {
	_, err := newTestOrchestrator().Analyze(context.Background(), "transcript")
	assert.ErrorIs(t, err, ErrNoProvidersConfigured)
}

func TestValidateInsight(t *testing.T) {
	good, ok := Consolidate([]AnalysisResult{
		{Provider: "openai", Status: StatusSuccess, Content: "text"},
	})
	require.True(t, ok)
	assert.NoError(t, ValidateInsight(good))

	bad := Insight{GeneratedAt: time.Now().UTC().Format(time.RFC3339)}
	assert.Error(t, ValidateInsight(bad))
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("note for:\n{{TRANSCRIPT}}\nend", "hello world")
	assert.Equal(t, "note for:\nhello world\nend", got)
}

func TestLoadPromptTemplate_DefaultHasPlaceholder(t *testing.T) {
	tpl, err := LoadPromptTemplate("")
	require.NoError(t, err)
	assert.Contains(t, tpl, transcriptPlaceholder)
}
