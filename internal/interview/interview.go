// Package interview runs the two practice flows: a scripted mock interview
// that walks through a domain's question bank, and a video interview where
// each recorded answer is transcribed and the next question is picked from
// the ranked follow-ups.
//
// Session state is kept per user in memory and expires after an idle TTL.
package interview

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/careervani/careervani/internal/followup"
	"github.com/careervani/careervani/pkg/provider/stt"
)

var (
	// ErrInvalidDomain is returned for a domain outside the question banks.
	ErrInvalidDomain = errors.New("interview: invalid domain")

	// ErrSessionExpired is returned when no mock interview is running for
	// the user.
	ErrSessionExpired = errors.New("interview: session expired")

	// ErrInvalidIndex is returned when an answer names a question outside
	// the running interview.
	ErrInvalidIndex = errors.New("interview: question index out of range")

	// ErrNoResponses is returned by VideoLog before any video answer.
	ErrNoResponses = errors.New("interview: no video responses")
)

const (
	defaultTTL = 2 * time.Hour

	// DefaultVideoDomain is used for video answers before a mock interview
	// picked a domain.
	DefaultVideoDomain = followup.IT
)

// QA is one answered question.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type mockSession struct {
	domain    followup.Domain
	questions []string
	answers   []QA
	touched   time.Time
}

type videoSession struct {
	domain    followup.Domain
	responses []string
	touched   time.Time
}

// Option configures a [Manager].
type Option func(*Manager)

// WithTTL sets how long an idle session survives. Defaults to 2h.
func WithTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.ttl = d
		}
	}
}

// WithQuestionBank replaces the mock interview questions.
func WithQuestionBank(b followup.Bank) Option {
	return func(m *Manager) { m.bank = b }
}

// Manager owns all running interviews. Safe for concurrent use.
type Manager struct {
	ranker *followup.Ranker
	stt    stt.Provider
	bank   followup.Bank
	ttl    time.Duration
	now    func() time.Time

	mu     sync.Mutex
	mocks  map[int64]*mockSession
	videos map[int64]*videoSession
}

// NewManager creates a Manager. The ranker must rank over the same interview
// bank the mock flow asks from.
func NewManager(ranker *followup.Ranker, transcriber stt.Provider, opts ...Option) (*Manager, error) {
	if ranker == nil {
		return nil, errors.New("interview: ranker must not be nil")
	}
	if transcriber == nil {
		return nil, errors.New("interview: stt provider must not be nil")
	}
	m := &Manager{
		ranker: ranker,
		stt:    transcriber,
		bank:   followup.InterviewBank,
		ttl:    defaultTTL,
		now:    time.Now,
		mocks:  make(map[int64]*mockSession),
		videos: make(map[int64]*videoSession),
	}
	for _, o := range opts {
		o(m)
	}
	return m, nil
}

// Active returns the number of live mock and video sessions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.mocks) + len(m.videos)
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were removed.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.mocks {
		if s.touched.Before(cutoff) {
			delete(m.mocks, id)
			n++
		}
	}
	for id, s := range m.videos {
		if s.touched.Before(cutoff) {
			delete(m.videos, id)
			n++
		}
	}
	return n
}

// Run sweeps expired sessions every interval until ctx is done. It always
// returns nil so it can run inside an errgroup.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			m.Sweep()
		}
	}
}
