// Package languagetool provides a grammar.Checker backed by a LanguageTool
// server.
//
// It calls POST /v2/check with a form-encoded body and maps each returned
// match onto a grammar.Issue. Both the public API (https://api.languagetool.org)
// and a self-hosted server are supported.
//
// Usage:
//
//	c, err := languagetool.New("http://localhost:8081",
//	    languagetool.WithLanguage("en-GB"),
//	)
//	issues, err := c.Check(ctx, "she go to school")
package languagetool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/careervani/careervani/pkg/provider/grammar"
)

const (
	defaultLanguage = "en-US"

	// maxErrorBody bounds how much of an error response is read into the
	// returned error message.
	maxErrorBody = 512
)

var _ grammar.Checker = (*Checker)(nil)

// Option is a functional option for configuring a Checker.
type Option func(*Checker)

// WithLanguage sets the language code sent with every request. Defaults to
// "en-US".
func WithLanguage(lang string) Option {
	return func(c *Checker) {
		c.language = lang
	}
}

// WithAPIKey sets the username and API key for LanguageTool Premium.
func WithAPIKey(username, apiKey string) Option {
	return func(c *Checker) {
		c.username = username
		c.apiKey = apiKey
	}
}

// WithHTTPClient overrides the HTTP client. Defaults to a client with a 15 s
// timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Checker) {
		c.httpClient = hc
	}
}

// Checker implements grammar.Checker against a LanguageTool server.
type Checker struct {
	baseURL    string
	language   string
	username   string
	apiKey     string
	httpClient *http.Client
}

// New creates a Checker for the LanguageTool server at baseURL.
func New(baseURL string, opts ...Option) (*Checker, error) {
	if baseURL == "" {
		return nil, errors.New("languagetool: baseURL must not be empty")
	}
	c := &Checker{
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   defaultLanguage,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// checkResponse is the subset of the /v2/check reply that we use.
type checkResponse struct {
	Matches []struct {
		Message      string `json:"message"`
		Offset       int    `json:"offset"`
		Length       int    `json:"length"`
		Replacements []struct {
			Value string `json:"value"`
		} `json:"replacements"`
		Context struct {
			Text   string `json:"text"`
			Offset int    `json:"offset"`
			Length int    `json:"length"`
		} `json:"context"`
		Rule struct {
			ID string `json:"id"`
		} `json:"rule"`
	} `json:"matches"`
}

// Check sends text to the server and returns the reported issues.
// Empty or whitespace-only text is not sent and yields no issues.
func (c *Checker) Check(ctx context.Context, text string) ([]grammar.Issue, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("language", c.language)
	if c.apiKey != "" {
		form.Set("username", c.username)
		form.Set("apiKey", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/check", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("languagetool: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("languagetool: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("languagetool: server returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("languagetool: parse JSON response: %w", err)
	}

	runeAt := runeIndex(text)
	issues := make([]grammar.Issue, 0, len(result.Matches))
	for _, m := range result.Matches {
		start := runeAt[clamp(m.Offset, len(runeAt)-1)]
		end := runeAt[clamp(m.Offset+m.Length, len(runeAt)-1)]
		issue := grammar.Issue{
			Offset:  start,
			Length:  end - start,
			Context: m.Context.Text,
			Message: m.Message,
			RuleID:  m.Rule.ID,
		}
		for _, r := range m.Replacements {
			issue.Replacements = append(issue.Replacements, r.Value)
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// runeIndex maps each UTF-16 code unit offset of text, as reported by the
// server, to the rune offset it falls in. The final element is the rune
// count, so an offset equal to the UTF-16 length is valid.
func runeIndex(text string) []int {
	idx := make([]int, 0, len(text)+1)
	n := 0
	for _, r := range text {
		idx = append(idx, n)
		if utf16.RuneLen(r) == 2 {
			idx = append(idx, n)
		}
		n++
	}
	return append(idx, n)
}

func clamp(v, hi int) int {
	return max(0, min(v, hi))
}
