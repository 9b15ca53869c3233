package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/careervani/careervani/pkg/provider/grammar"
	"github.com/careervani/careervani/pkg/store"
)

func intPtr(v int) *int { return &v }

func sample() *Spoken {
	return &Spoken{
		Transcript: "I has worked on <b>cloud</b> projects.",
		Score:      intPtr(7),
		Suggestion: "🟡 Good effort. Focus on clarity, especially vowel sounds.",
		Issues: IssueLines([]grammar.Issue{
			{Message: "Possible agreement error.", Replacements: []string{"have", "had"}},
		}),
		Date: time.Date(2026, 5, 4, 12, 30, 0, 0, time.UTC),
	}
}

func TestIssueLines(t *testing.T) {
	t.Parallel()

	got := IssueLines([]grammar.Issue{
		{Message: "Possible agreement error.", Replacements: []string{"have", "had"}},
		{Message: "Possible typo.", Replacements: nil},
	})
	want := []string{
		"Possible agreement error. (Suggestion: have, had)",
		"Possible typo. (Suggestion: )",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMarkdownAndHTML(t *testing.T) {
	t.Parallel()

	s := sample()
	md := s.Markdown()
	for _, want := range []string{
		"## Spoken English Feedback Report",
		"**Pronunciation Score:** 7/10",
		`\<b\>cloud\</b\>`,
		"- Possible agreement error. (Suggestion: have, had)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}

	html, err := s.HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if strings.Contains(html, "<b>cloud</b>") {
		t.Error("user HTML must be escaped")
	}
	for _, want := range []string{"<h2>Spoken English Feedback Report</h2>", "<li>", "<strong>Suggestion:</strong>"} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q:\n%s", want, html)
		}
	}
}

func TestMarkdown_Unscored(t *testing.T) {
	t.Parallel()

	s := &Spoken{Transcript: "x", Badge: "🌐 Regional"}
	md := s.Markdown()
	if !strings.Contains(md, "**Pronunciation Score:** n/a") || !strings.Contains(md, "No grammar issues found.") {
		t.Errorf("markdown = %s", md)
	}
}

func TestFromFeedback(t *testing.T) {
	t.Parallel()

	fb := &store.Feedback{
		Transcript:    "Original: a || Translated: b",
		GrammarIssues: `📝 "x" ➔ one; 📝 "y" ➔ two`,
		Badge:         "🌐 Regional",
		Timestamp:     time.Unix(0, 0),
	}
	s := FromFeedback(fb)
	if len(s.Issues) != 2 || s.Issues[1] != `📝 "y" ➔ two` {
		t.Errorf("Issues = %q", s.Issues)
	}
	if s.Score != nil || s.Badge != "🌐 Regional" {
		t.Errorf("report = %+v", s)
	}
	if len(FromFeedback(&store.Feedback{}).Issues) != 0 {
		t.Error("empty issues must yield no bullets")
	}
}

func TestPDF(t *testing.T) {
	t.Parallel()

	pdf, err := sample().PDF()
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatalf("output does not start with a PDF header: %q", pdf[:min(len(pdf), 16)])
	}
	if !bytes.Contains(pdf, []byte("%%EOF")) {
		t.Error("output has no EOF marker")
	}
}

func TestLatin1(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{`📝 "He go" ➔ Possible agreement error.`, `"He go" -> Possible agreement error.`},
		{"🌟 Excellent", "Excellent"},
		{"What’s café", "What's café"},
	}
	for _, tc := range tests {
		if got := latin1(tc.in); got != tc.want {
			t.Errorf("latin1(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
