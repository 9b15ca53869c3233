// Package phonetic suggests the closest pronounceable word for a token that
// the pronouncing dictionary does not know.
//
// Lookup runs in three stages:
//
//  1. Soundex bucketing: the vocabulary is indexed by Soundex code at
//     construction time, so a lookup only scans words sharing the token's
//     code.
//  2. Double Metaphone filtering: bucket members whose primary or secondary
//     Metaphone code overlaps the token's codes are phonetic candidates.
//  3. Jaro-Winkler ranking: the candidate with the highest similarity wins if
//     it clears the phonetic threshold. Without a phonetic candidate the
//     bucket is re-scanned with the stricter fuzzy threshold.
//
// A Matcher is read-only after construction and safe for concurrent use.
package phonetic

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
	"github.com/umahmood/soundex"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.85
)

// Option configures a [Matcher].
type Option func(*Matcher)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score for a candidate
// that shares a Metaphone code with the token. Default: 0.70.
func WithPhoneticThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.phoneticThreshold = threshold
	}
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score for a candidate with
// no Metaphone overlap. Default: 0.85.
func WithFuzzyThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.fuzzyThreshold = threshold
	}
}

// Hint is a suggested replacement for an unrecognised token.
type Hint struct {
	// Token is the word as spoken.
	Token string `json:"token"`

	// Suggestion is the closest vocabulary word.
	Suggestion string `json:"suggestion"`

	// Confidence is the Jaro-Winkler similarity in [0, 1].
	Confidence float64 `json:"confidence"`
}

// Matcher finds the closest vocabulary word for a token.
type Matcher struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
	buckets           map[string][]string
}

// New indexes vocabulary by Soundex code. Words that produce no code (for
// example numbers) are skipped.
func New(vocabulary []string, opts ...Option) *Matcher {
	m := &Matcher{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
		buckets:           make(map[string][]string),
	}
	for _, o := range opts {
		o(m)
	}
	for _, w := range vocabulary {
		w = normalise(w)
		c := code(w)
		if c == "" {
			continue
		}
		m.buckets[c] = append(m.buckets[c], w)
	}
	return m
}

// Suggest returns the best vocabulary match for token. ok is false when no
// candidate clears either threshold or the token is itself in the vocabulary.
func (m *Matcher) Suggest(token string) (hint Hint, ok bool) {
	word := normalise(token)
	c := code(word)
	if c == "" {
		return Hint{Token: token}, false
	}
	bucket := m.buckets[c]
	if len(bucket) == 0 {
		return Hint{Token: token}, false
	}

	tokenCodes := metaphoneCodes(word)

	var (
		best         string
		bestScore    float64
		bestPhonetic bool
	)
	for _, cand := range bucket {
		if cand == word {
			return Hint{Token: token}, false
		}
		score := matchr.JaroWinkler(word, cand, false)
		if overlaps(tokenCodes, metaphoneCodes(cand)) {
			if score >= m.phoneticThreshold && (!bestPhonetic || score > bestScore) {
				best, bestScore, bestPhonetic = cand, score, true
			}
			continue
		}
		if !bestPhonetic && score >= m.fuzzyThreshold && score > bestScore {
			best, bestScore = cand, score
		}
	}

	if best == "" {
		return Hint{Token: token}, false
	}
	return Hint{Token: token, Suggestion: best, Confidence: bestScore}, true
}

// normalise lower-cases w and trims surrounding punctuation.
func normalise(w string) string {
	w = strings.ToLower(strings.TrimSpace(w))
	return strings.TrimFunc(w, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

// code returns the Soundex code of w, or "" when w has no letters.
func code(w string) string {
	if w == "" || !strings.ContainsFunc(w, unicode.IsLetter) {
		return ""
	}
	return soundex.Code(w)
}

// metaphoneCodes returns the non-empty Double Metaphone codes of w.
func metaphoneCodes(w string) [2]string {
	p, s := matchr.DoubleMetaphone(w)
	return [2]string{p, s}
}

// overlaps reports whether a and b share a non-empty code.
func overlaps(a, b [2]string) bool {
	for _, x := range a {
		if x == "" {
			continue
		}
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
