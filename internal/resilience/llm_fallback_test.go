package resilience

import (
	"context"
	"errors"
	"testing"

	"github.com/careervani/careervani/pkg/provider/llm"
	llmmock "github.com/careervani/careervani/pkg/provider/llm/mock"
)

func TestLLMFallback_Complete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		primary       *llmmock.Provider
		secondary     *llmmock.Provider
		wantContent   string
		wantAllFailed bool
		wantSecondary int
	}{
		{
			name:          "primary answers",
			primary:       &llmmock.Provider{CompleteResponse: &llm.CompletionResponse{Content: "primary"}},
			secondary:     &llmmock.Provider{CompleteResponse: &llm.CompletionResponse{Content: "secondary"}},
			wantContent:   "primary",
			wantSecondary: 0,
		},
		{
			name:          "failover",
			primary:       &llmmock.Provider{CompleteErr: errors.New("primary down")},
			secondary:     &llmmock.Provider{CompleteResponse: &llm.CompletionResponse{Content: "secondary"}},
			wantContent:   "secondary",
			wantSecondary: 1,
		},
		{
			name:          "all fail",
			primary:       &llmmock.Provider{CompleteErr: errors.New("primary down")},
			secondary:     &llmmock.Provider{CompleteErr: errors.New("secondary down")},
			wantAllFailed: true,
			wantSecondary: 1,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fb := NewLLMFallback(tc.primary, "primary", FallbackConfig{
				CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
			})
			fb.AddFallback("secondary", tc.secondary)

			resp, err := fb.Complete(context.Background(), llm.CompletionRequest{
				Messages: []llm.Message{{Role: "user", Content: "hi"}},
			})
			if tc.wantAllFailed {
				if !errors.Is(err, ErrAllFailed) {
					t.Fatalf("err = %v, want ErrAllFailed", err)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if resp.Content != tc.wantContent {
					t.Fatalf("content = %q, want %q", resp.Content, tc.wantContent)
				}
			}
			if tc.primary.CallCount() != 1 {
				t.Errorf("primary called %d times, want 1", tc.primary.CallCount())
			}
			if got := tc.secondary.CallCount(); got != tc.wantSecondary {
				t.Errorf("secondary called %d times, want %d", got, tc.wantSecondary)
			}
		})
	}
}

func TestLLMFallback_FailoverKeepsRequest(t *testing.T) {
	t.Parallel()

	primary := &llmmock.Provider{CompleteErr: errors.New("quota exceeded")}
	secondary := &llmmock.Provider{CompleteResponse: &llm.CompletionResponse{Content: `{"issues":[]}`}}
	fb := NewLLMFallback(primary, "openai", FallbackConfig{})
	fb.AddFallback("ollama", secondary)

	req := llm.Prompt("Find grammar mistakes.", "She go to office.")
	req.Format = llm.FormatJSON
	if _, err := fb.Complete(context.Background(), req); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	got, ok := secondary.LastRequest()
	if !ok {
		t.Fatal("secondary was not called")
	}
	if got.Format != llm.FormatJSON || got.System != req.System {
		t.Errorf("secondary saw %+v, want the original request", got)
	}
	if !fb.Healthy() {
		t.Error("Healthy() = false with one working backend")
	}
	status := fb.Status()
	if len(status) != 2 || status[0].Name != "openai" || status[1].Name != "ollama" {
		t.Errorf("Status() = %+v", status)
	}
}
