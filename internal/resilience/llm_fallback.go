package resilience

import (
	"context"

	"github.com/careervani/careervani/pkg/provider/llm"
)

// LLMFallback implements [llm.Provider] on top of a [FallbackGroup].
type LLMFallback struct {
	group *FallbackGroup[llm.Provider]
}

var _ llm.Provider = (*LLMFallback)(nil)

// NewLLMFallback creates an [LLMFallback] with primary as the preferred backend.
func NewLLMFallback(primary llm.Provider, primaryName string, cfg FallbackConfig) *LLMFallback {
	return &LLMFallback{group: NewFallbackGroup(primary, primaryName, cfg)}
}

// AddFallback registers an additional LLM provider.
func (f *LLMFallback) AddFallback(name string, provider llm.Provider) {
	f.group.AddFallback(name, provider)
}

// Complete sends req to the first healthy provider.
func (f *LLMFallback) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return ExecuteWithResult(ctx, f.group, func(p llm.Provider) (*llm.CompletionResponse, error) {
		return p.Complete(ctx, req)
	})
}

// Status reports the breaker state of each backend.
func (f *LLMFallback) Status() []BackendStatus { return f.group.Status() }

// Healthy reports whether any backend admits calls.
func (f *LLMFallback) Healthy() bool { return f.group.Healthy() }
