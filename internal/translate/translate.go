// Package translate turns answers spoken in a regional language into English
// so the grammar checker can review them.
//
// Language identification runs locally with whatlanggo. Translation is
// delegated to an [llm.Provider]; text already identified as English is passed
// through without a model call.
package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/careervani/careervani/pkg/provider/llm"
)

// ErrEmptyText is returned when ToEnglish is called with blank text.
var ErrEmptyText = errors.New("translate: text is empty")

// ErrEmptyTranslation is returned when the model answers with nothing.
var ErrEmptyTranslation = errors.New("translate: model returned an empty translation")

const systemPrompt = `You translate interview answers into English.
Reply with the English translation only: no quotes, no notes, no transliteration.
Keep the speaker's meaning and tone. If the text is already English, return it unchanged.`

// Detection is the outcome of language identification.
type Detection struct {
	// Code is the ISO 639-1 code, or "" when no language was identified.
	Code string `json:"code"`

	// Name is the English name of the language, e.g. "Hindi".
	Name string `json:"name"`

	// Confidence is whatlanggo's confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// Reliable reports whether the confidence is high enough to act on.
	Reliable bool `json:"reliable"`
}

// IsEnglish reports whether the text was identified as English.
func (d Detection) IsEnglish() bool { return d.Code == "en" }

// Detect identifies the language of text.
func Detect(text string) Detection {
	info := whatlanggo.Detect(text)
	d := Detection{
		Confidence: info.Confidence,
		Reliable:   info.IsReliable(),
	}
	if info.Lang < 0 {
		return d
	}
	d.Code = info.Lang.Iso6391()
	d.Name = info.Lang.String()
	return d
}

// Result is a translated answer.
type Result struct {
	Original   string    `json:"original"`
	Translated string    `json:"translated"`
	Detected   Detection `json:"detected"`

	// Skipped is true when the text was already English.
	Skipped bool `json:"skipped"`
}

// FeedbackTranscript formats the result the way it is stored in a feedback
// record.
func (r *Result) FeedbackTranscript() string {
	return fmt.Sprintf("Original: %s || Translated: %s", r.Original, r.Translated)
}

// Option configures a [Service].
type Option func(*Service)

// WithTemperature sets the sampling temperature for translation requests.
// Defaults to 0.
func WithTemperature(t float64) Option {
	return func(s *Service) { s.temperature = t }
}

// WithMaxTokens caps the translation length. Defaults to 1024.
func WithMaxTokens(n int) Option {
	return func(s *Service) { s.maxTokens = n }
}

// Service translates text to English.
type Service struct {
	provider    llm.Provider
	temperature float64
	maxTokens   int
}

// New creates a Service backed by provider.
func New(provider llm.Provider, opts ...Option) (*Service, error) {
	if provider == nil {
		return nil, errors.New("translate: provider must not be nil")
	}
	s := &Service{provider: provider, maxTokens: 1024}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// ToEnglish detects the language of text and translates it to English.
func (s *Service) ToEnglish(ctx context.Context, text string) (*Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	det := Detect(text)
	res := &Result{Original: text, Detected: det}
	if det.IsEnglish() {
		res.Translated = text
		res.Skipped = true
		return res, nil
	}

	prompt := text
	if det.Name != "" {
		prompt = fmt.Sprintf("Source language (detected): %s\n\n%s", det.Name, text)
	}
	req := llm.Prompt(systemPrompt, prompt)
	req.Temperature = s.temperature
	req.MaxTokens = s.maxTokens
	resp, err := s.provider.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("translate: complete: %w", err)
	}

	var out string
	if resp != nil {
		out = cleanTranslation(resp.Content)
		if resp.Truncated {
			slog.Warn("translation hit the token limit", "lang", det.Code, "max_tokens", s.maxTokens)
		}
	}
	if out == "" {
		return nil, ErrEmptyTranslation
	}
	res.Translated = out

	slog.Debug("translated regional answer",
		"lang", det.Code,
		"confidence", det.Confidence,
		"in_len", len(text),
		"out_len", len(out),
	)
	return res, nil
}

// cleanTranslation strips code fences and wrapping quotes some models add.
func cleanTranslation(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	for _, q := range []string{`"`, "“", "'"} {
		end := q
		if q == "“" {
			end = "”"
		}
		if len(s) >= len(q)+len(end) && strings.HasPrefix(s, q) && strings.HasSuffix(s, end) {
			s = strings.TrimSpace(s[len(q) : len(s)-len(end)])
			break
		}
	}
	return s
}
