package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Orchestrator owns the prompt template and the ordered provider chain. The
// chain order is the fallback priority on the synchronous path.
type Orchestrator struct {
	providers []Provider
	template  string
	timeout   time.Duration
	logger    *slog.Logger
}

func NewOrchestrator(providers []Provider, template string, timeout time.Duration, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Orchestrator{
		providers: providers,
		template:  template,
		timeout:   timeout,
		logger:    logger,
	}
}

// Process tries each provider in priority order and returns the first
// non-empty completion. A provider error or empty result is logged and the
// chain moves on. When every provider fails the aggregate error names each
// cause.
func (o *Orchestrator) Process(ctx context.Context, transcript string) (Note, error) {
	if len(o.providers) == 0 {
		return Note{}, ErrNoProvidersConfigured
	}

	prompt := BuildPrompt(o.template, transcript)
	var failures []ProviderFailure

	for _, p := range o.providers {
		start := time.Now()
		o.logger.Info("llm.generate.start", "provider", p.Name())

		text, err := o.completeOne(ctx, p, prompt)
		if err != nil {
			o.logger.Warn("llm.generate.provider_failed",
				"provider", p.Name(),
				"error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			failures = append(failures, ProviderFailure{Provider: p.Name(), Err: err})
			continue
		}

		o.logger.Info("llm.generate.ok",
			"provider", p.Name(),
			"chars", len(text),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Note{RawText: text, Provider: p.Name()}, nil
	}

	err := &AllProvidersFailedError{Failures: failures}
	o.logger.Error("llm.generate.all_failed", "providers", len(failures), "error", err)
	return Note{}, err
}

// Analyze fans the prompt out to every provider concurrently, waits for all
// to settle, and consolidates the successes into one insight. Each call
// carries its own timeout so one hanging backend cannot block the join.
func (o *Orchestrator) Analyze(ctx context.Context, transcript string) (Insight, error) {
	if len(o.providers) == 0 {
		return Insight{}, ErrNoProvidersConfigured
	}

	prompt := BuildPrompt(o.template, transcript)
	results := make([]AnalysisResult, len(o.providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range o.providers {
		g.Go(func() error {
			text, err := o.completeOne(gctx, p, prompt)
			if err != nil {
				o.logger.Warn("llm.analyze.provider_failed", "provider", p.Name(), "error", err)
				results[i] = AnalysisResult{Provider: p.Name(), Status: StatusFailure, Error: err.Error()}
				return nil
			}
			results[i] = AnalysisResult{Provider: p.Name(), Status: StatusSuccess, Content: text}
			return nil
		})
	}
	// Goroutines report failures through results, never through the group.
	_ = g.Wait()

	insight, ok := Consolidate(results)
	if !ok {
		var failures []ProviderFailure
		for _, r := range results {
			failures = append(failures, ProviderFailure{Provider: r.Provider, Err: fmt.Errorf("%s", r.Error)})
		}
		err := &AllProvidersFailedError{Failures: failures}
		o.logger.Error("llm.analyze.all_failed", "error", err)
		return Insight{}, err
	}

	if err := ValidateInsight(insight); err != nil {
		return Insight{}, err
	}

	o.logger.Info("llm.analyze.ok", "providers", strings.Join(insight.Providers, ","))
	return insight, nil
}

// completeOne wraps a single provider call with its own timeout and treats an
// empty completion as a failure so the fallback chain advances.
func (o *Orchestrator) completeOne(ctx context.Context, p Provider, prompt string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	text, err := p.Complete(cctx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("provider %s returned empty completion", p.Name())
	}
	return text, nil
}
