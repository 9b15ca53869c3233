// Package grammar defines the Checker interface for external grammar-checking
// services.
//
// A Checker wraps a remote rule engine (for example a LanguageTool server) or
// an LLM prompt and reports the issues it finds in a piece of English text.
// CareerVani never implements grammar rules itself beyond the small table of
// custom patterns in internal/grammar.
//
// Implementations must be safe for concurrent use.
package grammar

import "context"

// Issue is a single problem reported by a Checker.
type Issue struct {
	// Offset is the rune offset of the problematic span within the checked text.
	Offset int `json:"offset"`

	// Length is the span length in runes.
	Length int `json:"length"`

	// Context is a snippet of text surrounding the span, used when presenting
	// the issue to a user.
	Context string `json:"context"`

	// Message is the human-readable explanation of the issue.
	Message string `json:"message"`

	// Replacements lists suggested substitutions for the span, best first.
	// May be empty.
	Replacements []string `json:"replacements,omitempty"`

	// RuleID identifies the rule that fired. Provider-specific; may be empty.
	RuleID string `json:"rule_id,omitempty"`
}

// Checker is the abstraction over any grammar-checking backend.
type Checker interface {
	// Check returns the issues found in text, ordered by offset. A clean text
	// yields an empty slice and a nil error. Errors are returned only when the
	// backend could not be reached or its reply could not be understood.
	Check(ctx context.Context, text string) ([]Issue, error)
}
