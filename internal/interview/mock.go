package interview

import (
	"fmt"
	"strings"

	"github.com/careervani/careervani/internal/followup"
)

// SummaryFilename is the attachment name of the mock interview transcript.
const SummaryFilename = "mock_interview.txt"

// Question is the question to show next.
type Question struct {
	Text  string `json:"question"`
	Index int    `json:"index"`
	Total int    `json:"total"`
	Last  bool   `json:"last"`
}

// Summary is the record of a finished mock interview.
type Summary struct {
	Domain followup.Domain `json:"domain"`
	Pairs  []QA            `json:"pairs"`
}

// Text renders the summary as the downloadable plain-text transcript.
func (s *Summary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mock Interview Summary - Domain: %s\n\n", s.Domain.Title())
	for i, p := range s.Pairs {
		fmt.Fprintf(&b, "Q%d: %s\nA%d: %s\n\n", i+1, p.Question, i+1, p.Answer)
	}
	return b.String()
}

// Step is the outcome of an answer: either the next question or, after the
// final question, the summary.
type Step struct {
	Next    *Question `json:"next,omitempty"`
	Summary *Summary  `json:"summary,omitempty"`
}

// StartMock begins a mock interview for userID in domain, replacing any
// running one. It also resets the user's video interview and points it at
// the same domain.
func (m *Manager) StartMock(userID int64, domain string) (*Question, error) {
	d, err := followup.ParseDomain(domain)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDomain, domain)
	}
	questions := m.bank.Questions(d)
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: %q has no questions", ErrInvalidDomain, domain)
	}

	now := m.now()
	m.mu.Lock()
	m.mocks[userID] = &mockSession{domain: d, questions: questions, touched: now}
	m.videos[userID] = &videoSession{domain: d, touched: now}
	m.mu.Unlock()

	return &Question{Text: questions[0], Index: 0, Total: len(questions), Last: len(questions) == 1}, nil
}

// SubmitAnswer records answer for the question at index. After the final
// question the session is closed and the summary returned.
func (m *Manager) SubmitAnswer(userID int64, index int, answer string) (*Step, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.mocks[userID]
	if !ok {
		return nil, ErrSessionExpired
	}
	if index < 0 || index >= len(s.questions) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidIndex, index, len(s.questions))
	}

	s.answers = append(s.answers, QA{Question: s.questions[index], Answer: answer})
	s.touched = m.now()

	next := index + 1
	if next < len(s.questions) {
		return &Step{Next: &Question{
			Text:  s.questions[next],
			Index: next,
			Total: len(s.questions),
			Last:  next == len(s.questions)-1,
		}}, nil
	}

	delete(m.mocks, userID)
	return &Step{Summary: &Summary{Domain: s.domain, Pairs: s.answers}}, nil
}
