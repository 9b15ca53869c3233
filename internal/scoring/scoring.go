// Package scoring turns a transcript into a pronunciation score and a
// qualitative badge.
//
// The score is the share of tokens found in a pronouncing dictionary scaled to
// 0–10, minus a penalty for grammar issues and for very short or
// pattern-matched answers, then clamped to [0, [MaxScore]]. Scoring is
// deterministic and never fails: an empty transcript scores 0.
package scoring

import (
	"math"
	"strings"

	"github.com/careervani/careervani/internal/scoring/phonetic"
)

const (
	// MaxScore is the upper clamp applied to every spoken-result score.
	MaxScore = 8.5

	// maxIssuePenalty caps the penalty contributed by grammar issues.
	maxIssuePenalty = 5

	// shortAnswerWords is the token count below which an answer is penalised.
	shortAnswerWords = 4

	// shortAnswerPenalty is added for short answers and custom pattern hits.
	shortAnswerPenalty = 2
)

// Lexicon reports whether a word is pronounceable. *pronounce.Dictionary
// satisfies it.
type Lexicon interface {
	Contains(word string) bool
}

// Suggester proposes a pronounceable word for an unrecognised token.
// *phonetic.Matcher satisfies it.
type Suggester interface {
	Suggest(token string) (phonetic.Hint, bool)
}

// Input is everything the scorer needs beyond the transcript itself.
type Input struct {
	// Transcript is the recognised speech or typed text.
	Transcript string

	// IssueCount is the number of grammar issues found in Transcript.
	IssueCount int

	// CustomMatched is true when a custom correction pattern fired.
	CustomMatched bool
}

// Result is the outcome of scoring a single transcript.
type Result struct {
	// Score is in [0, MaxScore], rounded to two decimals.
	Score float64 `json:"score"`

	// Badge is the qualitative label for Score.
	Badge Badge `json:"badge"`

	// Recognized is the number of tokens found in the lexicon.
	Recognized int `json:"recognized"`

	// Total is the number of whitespace-separated tokens.
	Total int `json:"total"`

	// Penalty is the amount subtracted from the raw score.
	Penalty float64 `json:"penalty"`

	// Hints lists suggestions for tokens the lexicon did not recognise.
	Hints []phonetic.Hint `json:"hints,omitempty"`
}

// StoredScore is the integer form persisted with a feedback record.
func (r Result) StoredScore() int {
	return int(r.Score)
}

// Option configures a [Scorer].
type Option func(*Scorer)

// WithSuggester enables pronunciation hints for unrecognised tokens.
func WithSuggester(s Suggester) Option {
	return func(sc *Scorer) {
		sc.suggester = s
	}
}

// Scorer computes pronunciation scores against a [Lexicon]. It holds no
// mutable state and is safe for concurrent use.
type Scorer struct {
	lexicon   Lexicon
	suggester Suggester
}

// New returns a Scorer backed by lexicon.
func New(lexicon Lexicon, opts ...Option) *Scorer {
	s := &Scorer{lexicon: lexicon}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Score computes the spoken-result score for in.
func (s *Scorer) Score(in Input) Result {
	words := strings.Fields(in.Transcript)
	total := len(words)

	recognized := 0
	var hints []phonetic.Hint
	for _, w := range words {
		if s.lexicon != nil && s.lexicon.Contains(strings.ToLower(w)) {
			recognized++
			continue
		}
		if s.suggester != nil {
			if h, ok := s.suggester.Suggest(w); ok {
				hints = append(hints, h)
			}
		}
	}

	raw := 0.0
	if total > 0 {
		raw = float64(recognized) / float64(total) * 10
	}

	penalty := float64(min(in.IssueCount, maxIssuePenalty))
	if total < shortAnswerWords || in.CustomMatched {
		penalty += shortAnswerPenalty
	}

	score := max(round2(raw-penalty), 0)
	score = min(score, MaxScore)

	return Result{
		Score:      score,
		Badge:      BadgeFor(score),
		Recognized: recognized,
		Total:      total,
		Penalty:    penalty,
		Hints:      hints,
	}
}

// Plain scores text without penalties: punctuation is stripped, the text is
// lower-cased and the share of pronounceable words is truncated to an
// integer on a 0–10 scale. Empty text scores 0.
func (s *Scorer) Plain(text string) int {
	words := strings.Fields(strings.ToLower(stripPunctuation(text)))
	if len(words) == 0 {
		return 0
	}
	matched := 0
	for _, w := range words {
		if s.lexicon != nil && s.lexicon.Contains(w) {
			matched++
		}
	}
	return int(float64(matched) / float64(len(words)) * 10)
}

// asciiPunctuation is the ASCII punctuation set stripped by [Scorer.Plain].
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// stripPunctuation removes ASCII punctuation characters.
func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(asciiPunctuation, r) {
			return -1
		}
		return r
	}, s)
}

// round2 rounds v half-to-even at two decimals.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
