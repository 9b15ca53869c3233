// Package grammar reviews learner English: it asks an external grammar
// checker for issues, formats them as suggestions, builds a corrected text and
// applies a small table of custom corrections for mistakes the checker
// commonly misses.
package grammar

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Pattern maps a known bad phrase to its corrected form.
type Pattern struct {
	Bad  string
	Good string
}

// DefaultPatterns is the ordered table of custom corrections. Matching is
// first-match-wins in table order.
var DefaultPatterns = []Pattern{
	{"you teacher not", "You're not a teacher."},
	{"you good girl not", "You're not a good girl."},
	{"he go to school", "He goes to school."},
	{"she not coming", "She is not coming."},
	{"i are student", "I am a student."},
	{"he do work", "He does the work."},
	{"they was happy", "They were happy."},
	{"she have a book", "She has a book."},
	{"he not like that", "He doesn't like that."},
	{"this not correct", "This is not correct."},
	{"i no understand", "I don't understand."},
	{"where you go", "Where are you going?"},
	{"why you late", "Why are you late?"},
	{"what she want", "What does she want?"},
}

// Match is a fired custom pattern.
type Match struct {
	Pattern

	// Suggestion is the user-facing hint for the correction.
	Suggestion string
}

// Corrector matches transcripts against an ordered pattern table. It is
// read-only after construction and safe for concurrent use.
type Corrector struct {
	patterns []Pattern
	folded   []string
}

// NewCorrector returns a Corrector for patterns. A nil table uses
// [DefaultPatterns].
func NewCorrector(patterns []Pattern) *Corrector {
	if patterns == nil {
		patterns = DefaultPatterns
	}
	c := &Corrector{
		patterns: patterns,
		folded:   make([]string, len(patterns)),
	}
	for i, p := range patterns {
		c.folded[i] = fold(p.Bad)
	}
	return c
}

// Match returns the first pattern whose bad phrase occurs anywhere in text,
// ignoring case.
func (c *Corrector) Match(text string) (Match, bool) {
	if text == "" {
		return Match{}, false
	}
	t := fold(text)
	for i, bad := range c.folded {
		if bad != "" && strings.Contains(t, bad) {
			p := c.patterns[i]
			return Match{Pattern: p, Suggestion: CustomSuggestion(p.Good)}, true
		}
	}
	return Match{}, false
}

// CustomSuggestion formats the hint shown when a custom pattern fires.
func CustomSuggestion(good string) string {
	return fmt.Sprintf("💡 Did you mean: \"%s\"?", good)
}

// fold applies Unicode case folding. A cases.Caser is not safe for concurrent
// use, so a fresh one is taken per call.
func fold(s string) string {
	return cases.Fold().String(s)
}
