package phonetic_test

import (
	"testing"

	"github.com/careervani/careervani/internal/scoring/phonetic"
)

var vocabulary = []string{"hello", "world", "teacher", "school", "understand"}

func TestMatcher_SuggestsClosestWord(t *testing.T) {
	t.Parallel()

	m := phonetic.New(vocabulary)

	tests := []struct {
		token string
		want  string
	}{
		{"helo", "hello"},
		{"wurld", "world"},
		{"Teecher,", "teacher"},
		{"skool", "school"},
	}
	for _, tc := range tests {
		hint, ok := m.Suggest(tc.token)
		if !ok {
			t.Errorf("Suggest(%q): ok=false, want suggestion %q", tc.token, tc.want)
			continue
		}
		if hint.Suggestion != tc.want {
			t.Errorf("Suggest(%q) = %q, want %q", tc.token, hint.Suggestion, tc.want)
		}
		if hint.Token != tc.token {
			t.Errorf("Suggest(%q): Token = %q, want original token", tc.token, hint.Token)
		}
		if hint.Confidence < 0.7 {
			t.Errorf("Suggest(%q): confidence %f < 0.7", tc.token, hint.Confidence)
		}
	}
}

func TestMatcher_NoSuggestion(t *testing.T) {
	t.Parallel()

	m := phonetic.New(vocabulary)

	for _, token := range []string{"", "42", "zebra", "hello"} {
		if hint, ok := m.Suggest(token); ok {
			t.Errorf("Suggest(%q) = %+v, want no suggestion", token, hint)
		}
	}
}

func TestMatcher_FuzzyThresholdRejectsWeakMatches(t *testing.T) {
	t.Parallel()

	m := phonetic.New([]string{"hello"}, phonetic.WithPhoneticThreshold(0.99), phonetic.WithFuzzyThreshold(0.99))
	if _, ok := m.Suggest("helo"); ok {
		t.Error("expected strict thresholds to reject helo → hello")
	}
}

func TestMatcher_EmptyVocabulary(t *testing.T) {
	t.Parallel()

	m := phonetic.New(nil)
	if _, ok := m.Suggest("hello"); ok {
		t.Error("empty vocabulary must never suggest")
	}
}
