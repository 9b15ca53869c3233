// Package followup selects interview questions that are most related to what
// a candidate has said so far.
//
// Questions come from fixed per-domain banks. Relevance is the cosine
// similarity of TF-IDF vectors fitted over the bank plus the candidate's
// answers; ranking is stable, so equally relevant questions keep their bank
// order and an answer that shares no terms with the bank yields the bank
// prefix.
package followup

import (
	"cmp"
	"slices"
)

// DefaultTopN is the number of questions returned by [Ranker.FollowUps].
const DefaultTopN = 5

// Option configures a [Ranker].
type Option func(*Ranker)

// WithInterviewBank replaces the bank used by [Ranker.FollowUps].
func WithInterviewBank(b Bank) Option {
	return func(r *Ranker) {
		r.interview = b
	}
}

// WithFollowUpBank replaces the bank used by [Ranker.Best].
func WithFollowUpBank(b Bank) Option {
	return func(r *Ranker) {
		r.followUps = b
	}
}

// Ranker ranks bank questions against interview answers. It holds no mutable
// state and is safe for concurrent use.
type Ranker struct {
	interview Bank
	followUps Bank
}

// NewRanker returns a Ranker over [InterviewBank] and [FollowUpBank].
func NewRanker(opts ...Option) *Ranker {
	r := &Ranker{
		interview: InterviewBank,
		followUps: FollowUpBank,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// FollowUps returns up to [DefaultTopN] interview-bank questions for domain,
// most similar to the latest entry of history first. The model is fitted over
// the bank and the whole history. An empty history returns the bank prefix;
// an unknown domain returns nil.
func (r *Ranker) FollowUps(domain Domain, history []string) []string {
	bank := r.interview[domain]
	if len(bank) == 0 {
		return nil
	}
	if len(history) == 0 {
		return slices.Clone(bank[:min(DefaultTopN, len(bank))])
	}

	corpus := make([]string, 0, len(bank)+len(history))
	corpus = append(corpus, bank...)
	corpus = append(corpus, history...)
	vecs := fitTransform(corpus)

	return rank(bank, vecs[:len(bank)], vecs[len(vecs)-1], DefaultTopN)
}

// Best returns up to n follow-up-bank questions for domain ranked by
// similarity to transcript. n <= 0 or an unknown domain returns nil.
func (r *Ranker) Best(transcript string, domain Domain, n int) []string {
	bank := r.followUps[domain]
	if n <= 0 || len(bank) == 0 {
		return nil
	}

	corpus := make([]string, 0, len(bank)+1)
	corpus = append(corpus, transcript)
	corpus = append(corpus, bank...)
	vecs := fitTransform(corpus)

	return rank(bank, vecs[1:], vecs[0], n)
}

// rank orders questions by descending similarity to query and returns the
// first n. Ties keep bank order.
func rank(questions []string, vecs []vector, query vector, n int) []string {
	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(questions))
	for i := range questions {
		scores[i] = scored{idx: i, score: cosine(query, vecs[i])}
	}
	slices.SortStableFunc(scores, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	out := make([]string, 0, min(n, len(questions)))
	for _, s := range scores[:min(n, len(scores))] {
		out = append(out, questions[s.idx])
	}
	return out
}
