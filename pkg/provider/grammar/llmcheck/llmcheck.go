// Package llmcheck implements a grammar.Checker that asks a language model to
// find grammar mistakes.
//
// The [Checker] sends the text to an [llm.Provider] with a conservative system
// prompt and expects a JSON list of issues, each naming the exact erroneous
// span, an explanation and a replacement. Spans are located in the original
// text to recover offsets; spans the model invented are dropped.
//
// When the LLM response cannot be parsed the checker reports no issues rather
// than failing, so a flaky model degrades feedback instead of breaking it.
package llmcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/careervani/careervani/pkg/provider/grammar"
	"github.com/careervani/careervani/pkg/provider/llm"
)

const (
	defaultTemperature = 0.1

	// contextRadius is the number of runes kept on each side of a span when
	// building an issue's context snippet.
	contextRadius = 20

	ruleID = "LLM_GRAMMAR"
)

const systemPrompt = `You are an English grammar checker for learners preparing for job interviews.

Your task: list the grammar mistakes in the text the user sends.

Rules:
- Report only real grammar, agreement, tense, article or word-order mistakes.
- Do NOT report style preferences, informal tone, or missing punctuation at the end of the text.
- "span" must be copied exactly from the text, including its capitalisation.
- "replacement" is the corrected form of the span only, not the whole sentence.

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "issues": [
    {"span": "<exact text>", "message": "<short explanation>", "replacement": "<corrected span>"}
  ]
}

If the text has no mistakes, return {"issues": []}.`

var _ grammar.Checker = (*Checker)(nil)

// llmResponse is the expected JSON structure returned by the LLM.
type llmResponse struct {
	Issues []struct {
		Span        string `json:"span"`
		Message     string `json:"message"`
		Replacement string `json:"replacement"`
	} `json:"issues"`
}

// Option is a functional option for configuring a [Checker].
type Option func(*Checker)

// WithTemperature sets the LLM sampling temperature. Default: 0.1.
func WithTemperature(temp float64) Option {
	return func(c *Checker) {
		c.temperature = temp
	}
}

// Checker uses an [llm.Provider] to find grammar issues. It is safe for
// concurrent use.
type Checker struct {
	llm         llm.Provider
	temperature float64
}

// New returns a Checker backed by provider.
func New(provider llm.Provider, opts ...Option) (*Checker, error) {
	if provider == nil {
		return nil, errors.New("llmcheck: provider must not be nil")
	}
	c := &Checker{
		llm:         provider,
		temperature: defaultTemperature,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Check implements grammar.Checker. Network and context errors are returned;
// an unparseable reply yields no issues and a nil error.
func (c *Checker) Check(ctx context.Context, text string) ([]grammar.Issue, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	req := llm.Prompt(systemPrompt, text)
	req.Temperature = c.temperature
	req.Format = llm.FormatJSON
	resp, err := c.llm.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("llmcheck: complete: %w", err)
	}
	if resp == nil {
		return nil, nil
	}

	issues, parseErr := parseResponse(resp.Content, text)
	if parseErr != nil {
		return nil, nil //nolint:nilerr // unparseable replies degrade to "no issues"
	}
	return issues, nil
}

// parseResponse unmarshals the LLM output and locates each span in text.
// Spans are searched left to right so repeated mistakes map to successive
// occurrences.
func parseResponse(content, text string) ([]grammar.Issue, error) {
	var r llmResponse
	if err := json.Unmarshal([]byte(stripMarkdown(content)), &r); err != nil {
		return nil, fmt.Errorf("llmcheck: parse response: %w", err)
	}

	runes := []rune(text)
	issues := make([]grammar.Issue, 0, len(r.Issues))
	searchFrom := 0
	for _, is := range r.Issues {
		if is.Span == "" || is.Span == is.Replacement {
			continue
		}
		off := indexRunes(runes, []rune(is.Span), searchFrom)
		if off < 0 {
			off = indexRunes(runes, []rune(is.Span), 0)
		}
		if off < 0 {
			continue
		}
		length := len([]rune(is.Span))
		issue := grammar.Issue{
			Offset:  off,
			Length:  length,
			Context: snippet(runes, off, length),
			Message: is.Message,
			RuleID:  ruleID,
		}
		if is.Replacement != "" {
			issue.Replacements = []string{is.Replacement}
		}
		issues = append(issues, issue)
		searchFrom = off + length
	}
	return issues, nil
}

// indexRunes returns the first index of sub in s at or after from, or -1.
func indexRunes(s, sub []rune, from int) int {
	if len(sub) == 0 || from < 0 {
		return -1
	}
	for i := from; i+len(sub) <= len(s); i++ {
		if string(s[i:i+len(sub)]) == string(sub) {
			return i
		}
	}
	return -1
}

// snippet returns the span with up to contextRadius runes on either side.
func snippet(runes []rune, off, length int) string {
	start := max(off-contextRadius, 0)
	end := min(off+length+contextRadius, len(runes))
	return strings.TrimSpace(string(runes[start:end]))
}

// stripMarkdown removes optional markdown code fences (```json ... ```) that
// some models wrap around JSON output.
func stripMarkdown(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```json", "```"} {
		if after, ok := strings.CutPrefix(s, prefix); ok {
			s = after
			break
		}
	}
	if before, ok := strings.CutSuffix(s, "```"); ok {
		s = before
	}
	return strings.TrimSpace(s)
}
