package llmcheck_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/careervani/careervani/pkg/provider/grammar/llmcheck"
	"github.com/careervani/careervani/pkg/provider/llm"
	"github.com/careervani/careervani/pkg/provider/llm/mock"
)

func newChecker(t *testing.T, content string) (*llmcheck.Checker, *mock.Provider) {
	t.Helper()
	p := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: content},
	}
	c, err := llmcheck.New(p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, p
}

func TestNew_NilProvider(t *testing.T) {
	t.Parallel()

	if _, err := llmcheck.New(nil); err == nil {
		t.Fatal("expected error for nil provider")
	}
}

func TestCheck_SendsTextAsUserMessage(t *testing.T) {
	t.Parallel()

	c, p := newChecker(t, `{"issues": []}`)
	issues, err := c.Check(context.Background(), "I am ready.")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("issues = %v, want none", issues)
	}
	if len(p.CompleteCalls) != 1 {
		t.Fatalf("Complete called %d times, want 1", len(p.CompleteCalls))
	}
	req := p.CompleteCalls[0].Req
	if !strings.Contains(req.System, "grammar") {
		t.Error("system prompt must describe the grammar task")
	}
	if req.Format != llm.FormatJSON {
		t.Errorf("format = %v, want FormatJSON", req.Format)
	}
	if req.Messages[0].Content != "I am ready." {
		t.Errorf("user message = %q", req.Messages[0].Content)
	}
}

func TestCheck_LocatesSpans(t *testing.T) {
	t.Parallel()

	reply := "```json\n" + `{"issues": [
		{"span": "go", "message": "Use third person singular.", "replacement": "goes"},
		{"span": "go", "message": "Use third person singular.", "replacement": "goes"},
		{"span": "invented", "message": "not in text", "replacement": "x"},
		{"span": "same", "message": "no-op", "replacement": "same"}
	]}` + "\n```"
	c, _ := newChecker(t, reply)

	text := "She go home and he go out."
	issues, err := c.Check(context.Background(), text)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("got %d issues, want 2: %+v", len(issues), issues)
	}
	if issues[0].Offset != 4 || issues[1].Offset != 19 {
		t.Errorf("offsets = %d, %d; want 4, 19", issues[0].Offset, issues[1].Offset)
	}
	for _, is := range issues {
		if is.Length != 2 {
			t.Errorf("Length = %d, want 2", is.Length)
		}
		if len(is.Replacements) != 1 || is.Replacements[0] != "goes" {
			t.Errorf("Replacements = %v", is.Replacements)
		}
		if !strings.Contains(is.Context, "go") {
			t.Errorf("Context %q must contain the span", is.Context)
		}
	}
}

func TestCheck_UnparseableReplyDegrades(t *testing.T) {
	t.Parallel()

	c, _ := newChecker(t, "Sorry, I cannot help with that.")
	issues, err := c.Check(context.Background(), "She go home.")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if issues != nil {
		t.Errorf("issues = %v, want nil", issues)
	}
}

func TestCheck_ProviderError(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{CompleteErr: errors.New("rate limited")}
	c, _ := llmcheck.New(p)
	if _, err := c.Check(context.Background(), "She go home."); err == nil {
		t.Fatal("expected provider error to propagate")
	}
}

func TestCheck_BlankTextSkipsProvider(t *testing.T) {
	t.Parallel()

	c, p := newChecker(t, `{"issues": []}`)
	if _, err := c.Check(context.Background(), "  \n"); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if p.CallCount() != 0 {
		t.Errorf("provider called %d times, want 0", p.CallCount())
	}
}
