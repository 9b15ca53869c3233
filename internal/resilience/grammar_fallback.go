package resilience

import (
	"context"

	"github.com/careervani/careervani/pkg/provider/grammar"
)

// GrammarFallback implements [grammar.Checker] on top of a [FallbackGroup].
// Typically a LanguageTool server is primary and the LLM checker backs it up.
type GrammarFallback struct {
	group *FallbackGroup[grammar.Checker]
}

var _ grammar.Checker = (*GrammarFallback)(nil)

// NewGrammarFallback creates a [GrammarFallback] with primary as the preferred
// backend.
func NewGrammarFallback(primary grammar.Checker, primaryName string, cfg FallbackConfig) *GrammarFallback {
	return &GrammarFallback{group: NewFallbackGroup(primary, primaryName, cfg)}
}

// AddFallback registers an additional checker.
func (f *GrammarFallback) AddFallback(name string, checker grammar.Checker) {
	f.group.AddFallback(name, checker)
}

// Check runs text through the first healthy checker.
func (f *GrammarFallback) Check(ctx context.Context, text string) ([]grammar.Issue, error) {
	return ExecuteWithResult(ctx, f.group, func(c grammar.Checker) ([]grammar.Issue, error) {
		return c.Check(ctx, text)
	})
}

// Status reports the breaker state of each backend.
func (f *GrammarFallback) Status() []BackendStatus { return f.group.Status() }

// Healthy reports whether any backend admits calls.
func (f *GrammarFallback) Healthy() bool { return f.group.Healthy() }
