package followup

import (
	"maps"
	"math"
	"slices"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// minTokenLen drops single-character tokens such as "a" or the "s" of "what's".
const minTokenLen = 2

// vector is a sparse, L2-normalised TF-IDF row keyed by term.
type vector map[string]float64

// tokenize lower-cases text and splits it into maximal runs of word
// characters, keeping runs of at least minTokenLen runes.
func tokenize(text string) []string {
	lower := cases.Lower(language.Und).String(text)

	var (
		tokens []string
		run    []rune
	)
	flush := func() {
		if len(run) >= minTokenLen {
			tokens = append(tokens, string(run))
		}
		run = run[:0]
	}
	for _, r := range lower {
		if isWordRune(r) {
			run = append(run, r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}

// isWordRune reports letters, numbers and underscore. Combining marks such as
// the Devanagari virama end a run.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// fitTransform fits a TF-IDF model on docs and returns one vector per doc.
//
// Term weights are raw counts scaled by the smoothed inverse document
// frequency ln((1+n)/(1+df)) + 1; every row is then L2-normalised so the dot
// product of two rows is their cosine similarity. A document without tokens
// yields an empty vector.
func fitTransform(docs []string) []vector {
	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	for i, d := range docs {
		c := make(map[string]int)
		for _, tok := range tokenize(d) {
			c[tok]++
		}
		for term := range c {
			df[term]++
		}
		counts[i] = c
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for term, f := range df {
		idf[term] = math.Log((1+n)/(1+float64(f))) + 1
	}

	out := make([]vector, len(docs))
	for i, c := range counts {
		v := make(vector, len(c))
		var norm float64
		for _, term := range slices.Sorted(maps.Keys(c)) {
			w := float64(c[term]) * idf[term]
			v[term] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for term := range v {
				v[term] /= norm
			}
		}
		out[i] = v
	}
	return out
}

// cosine returns the cosine similarity of two L2-normalised vectors. Terms
// are summed in sorted order so equal inputs always give bit-identical scores.
func cosine(a, b vector) float64 {
	var dot float64
	for _, term := range slices.Sorted(maps.Keys(a)) {
		dot += a[term] * b[term]
	}
	return dot
}
