package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Provider is one external AI backend capable of turning a prompt into a
// clinical note. Implementations classify their own failures: transport and
// API errors unwrap to common.ErrProviderUnavailable, unexpected response
// shapes to common.ErrProviderMalformed.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Note is the orchestrator's successful output.
type Note struct {
	RawText  string
	Provider string
}

// AnalysisResult records one provider's outcome on the concurrent path.
type AnalysisResult struct {
	Provider string `json:"provider"`
	Status   string `json:"status"`
	Content  string `json:"content,omitempty"`
	Error    string `json:"error,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// ErrNoProvidersConfigured is returned when an analysis is requested but no
// provider has an API key set. Distinct from all-configured-providers-failed.
var ErrNoProvidersConfigured = errors.New("no AI providers configured")

// ProviderFailure pairs a provider name with the error it produced.
type ProviderFailure struct {
	Provider string
	Err      error
}

// AllProvidersFailedError aggregates every provider's failure when the whole
// fallback chain is exhausted. It enumerates each cause so operators can see
// which backend failed for which reason.
type AllProvidersFailedError struct {
	Failures []ProviderFailure
}

func (e *AllProvidersFailedError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Provider, f.Err))
	}
	return "all providers failed: " + strings.Join(parts, "; ")
}

func (e *AllProvidersFailedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
