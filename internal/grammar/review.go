package grammar

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/careervani/careervani/pkg/provider/grammar"
)

// Review is the outcome of reviewing a single transcript.
type Review struct {
	// Issues are the raw issues reported by the checker.
	Issues []grammar.Issue `json:"issues"`

	// Suggestions holds one formatted line per issue, in issue order.
	Suggestions []string `json:"suggestions"`

	// Corrected is the transcript with corrections applied. When a custom
	// pattern fires it is the pattern's corrected phrase.
	Corrected string `json:"corrected_text"`

	// CustomSuggestion is the custom pattern hint, or "" when none fired.
	CustomSuggestion string `json:"custom_suggestion,omitempty"`
}

// CustomMatched reports whether a custom pattern fired.
func (r *Review) CustomMatched() bool {
	return r.CustomSuggestion != ""
}

// Joined returns the suggestions joined for storage in a feedback record.
func (r *Review) Joined() string {
	return JoinSuggestions(r.Suggestions)
}

// Reviewer combines an external grammar checker with the custom pattern
// corrector. It is safe for concurrent use when its checker is.
type Reviewer struct {
	checker   grammar.Checker
	corrector *Corrector
}

// NewReviewer returns a Reviewer. A nil corrector uses [DefaultPatterns].
func NewReviewer(checker grammar.Checker, corrector *Corrector) (*Reviewer, error) {
	if checker == nil {
		return nil, errors.New("grammar: checker must not be nil")
	}
	if corrector == nil {
		corrector = NewCorrector(nil)
	}
	return &Reviewer{checker: checker, corrector: corrector}, nil
}

// Check returns the formatted suggestions for text without computing
// corrections.
func (rv *Reviewer) Check(ctx context.Context, text string) ([]string, error) {
	issues, err := rv.checker.Check(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("grammar: check: %w", err)
	}
	return FormatSuggestions(issues), nil
}

// Review checks text, applies the first replacement of every issue and then
// runs the custom corrector, whose phrase replaces the corrected text when it
// fires.
func (rv *Reviewer) Review(ctx context.Context, text string) (*Review, error) {
	issues, err := rv.checker.Check(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("grammar: check: %w", err)
	}

	r := &Review{
		Issues:      issues,
		Suggestions: FormatSuggestions(issues),
		Corrected:   Apply(text, issues),
	}
	if m, ok := rv.corrector.Match(text); ok {
		r.CustomSuggestion = m.Suggestion
		r.Corrected = m.Good
	}
	return r, nil
}

// FormatSuggestion renders an issue as a single user-facing line.
func FormatSuggestion(issue grammar.Issue) string {
	return fmt.Sprintf("📝 \"%s\" ➔ %s", issue.Context, issue.Message)
}

// FormatSuggestions renders every issue with [FormatSuggestion].
func FormatSuggestions(issues []grammar.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, is := range issues {
		out = append(out, FormatSuggestion(is))
	}
	return out
}

// JoinSuggestions joins suggestion lines with "; ".
func JoinSuggestions(s []string) string {
	return strings.Join(s, "; ")
}

// Apply replaces each issue span in text with the issue's first replacement.
// Offsets and lengths are in runes. Issues without replacements, with spans
// outside text, or overlapping an issue already applied are skipped.
func Apply(text string, issues []grammar.Issue) string {
	if len(issues) == 0 {
		return text
	}

	sorted := slices.Clone(issues)
	slices.SortStableFunc(sorted, func(a, b grammar.Issue) int {
		return b.Offset - a.Offset
	})

	runes := []rune(text)
	limit := len(runes)
	for _, is := range sorted {
		if len(is.Replacements) == 0 || is.Offset < 0 || is.Length < 0 {
			continue
		}
		end := is.Offset + is.Length
		if end > limit {
			continue
		}
		runes = slices.Concat(runes[:is.Offset], []rune(is.Replacements[0]), runes[end:])
		limit = is.Offset
	}
	return string(runes)
}
