// Package report renders spoken-English feedback as Markdown, HTML (via
// goldmark) and PDF (via fpdf), and mails the PDF to the learner.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"

	"github.com/careervani/careervani/pkg/provider/grammar"
	"github.com/careervani/careervani/pkg/store"
)

// Filename is the attachment name of the rendered PDF.
const Filename = "SpokenEnglishReport.pdf"

const title = "Spoken English Feedback Report"

// Spoken is one feedback report.
type Spoken struct {
	Transcript string

	// Score is the pronunciation score out of 10, or nil when the answer was
	// not scored.
	Score *int

	Suggestion string
	Badge      string

	// Issues are rendered one per bullet.
	Issues []string

	Date time.Time
}

// IssueLines formats checker issues as "message (Suggestion: a, b)".
func IssueLines(issues []grammar.Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = fmt.Sprintf("%s (Suggestion: %s)", is.Message, strings.Join(is.Replacements, ", "))
	}
	return out
}

// FromFeedback rebuilds a report from a stored record. The stored suggestions
// were joined with "; " and are split back into bullets.
func FromFeedback(fb *store.Feedback) Spoken {
	var issues []string
	for s := range strings.SplitSeq(fb.GrammarIssues, "; ") {
		if s = strings.TrimSpace(s); s != "" {
			issues = append(issues, s)
		}
	}
	return Spoken{
		Transcript: fb.Transcript,
		Score:      fb.PronScore,
		Badge:      fb.Badge,
		Issues:     issues,
		Date:       fb.Timestamp,
	}
}

func (s *Spoken) scoreText() string {
	if s.Score == nil {
		return "n/a"
	}
	return strconv.Itoa(*s.Score) + "/10"
}

// ─────────────────────────────────────────────────────────────────────────────
// Markdown / HTML
// ─────────────────────────────────────────────────────────────────────────────

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`,
	"<", `\<`, ">", `\>`, "#", `\#`, "|", `\|`,
)

// Markdown renders the report as Markdown. User text is escaped.
func (s *Spoken) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", title)
	if !s.Date.IsZero() {
		fmt.Fprintf(&b, "_%s_\n\n", s.Date.UTC().Format("02 Jan 2006 15:04 MST"))
	}
	fmt.Fprintf(&b, "**Transcribed Text:** %s\n\n", mdEscaper.Replace(s.Transcript))
	fmt.Fprintf(&b, "**Pronunciation Score:** %s\n\n", s.scoreText())
	if s.Badge != "" {
		fmt.Fprintf(&b, "**Badge:** %s\n\n", s.Badge)
	}
	if s.Suggestion != "" {
		fmt.Fprintf(&b, "**Suggestion:** %s\n\n", s.Suggestion)
	}
	b.WriteString("**Grammar Issues:**\n\n")
	if len(s.Issues) == 0 {
		b.WriteString("No grammar issues found.\n")
	}
	for _, is := range s.Issues {
		fmt.Fprintf(&b, "- %s\n", mdEscaper.Replace(is))
	}
	return b.String()
}

// HTML renders the Markdown form to HTML. Raw HTML in user text is never
// passed through.
func (s *Spoken) HTML() (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(s.Markdown()), &buf); err != nil {
		return "", fmt.Errorf("report: render html: %w", err)
	}
	return buf.String(), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// PDF
// ─────────────────────────────────────────────────────────────────────────────

// latin1 replaces symbols the core PDF fonts cannot draw and drops the rest.
func latin1(s string) string {
	s = strings.NewReplacer("➔", "->", "’", "'", "‘", "'", "“", `"`, "”", `"`, "–", "-", "—", "-").Replace(s)
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r > 0xFF {
			return -1
		}
		return r
	}, s))
}

// WritePDF renders the report as an A4 PDF.
func (s *Spoken) WritePDF(w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator("CareerVani", true)
	if !s.Date.IsZero() {
		pdf.SetCreationDate(s.Date)
		pdf.SetModificationDate(s.Date)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(v string) string { return tr(latin1(v)) }

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	field := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, label, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, text(value), "", "L", false)
		pdf.Ln(2)
	}

	if !s.Date.IsZero() {
		field("Date:", s.Date.UTC().Format("02 Jan 2006 15:04 MST"))
	}
	field("Transcribed Text:", s.Transcript)
	field("Pronunciation Score:", s.scoreText())
	if s.Badge != "" {
		field("Badge:", s.Badge)
	}
	if s.Suggestion != "" {
		field("Suggestion:", s.Suggestion)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Grammar Issues:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	if len(s.Issues) == 0 {
		pdf.MultiCell(0, 6, "No grammar issues found.", "", "L", false)
	}
	for _, is := range s.Issues {
		pdf.MultiCell(0, 6, text("- "+is), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("report: render pdf: %w", err)
	}
	return nil
}

// PDF renders the report and returns the bytes.
func (s *Spoken) PDF() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.WritePDF(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
