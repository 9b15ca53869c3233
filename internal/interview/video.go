package interview

import (
	"context"
	"fmt"
	"slices"

	"github.com/careervani/careervani/internal/followup"
	"github.com/careervani/careervani/pkg/provider/stt"
)

// VideoTurn is the result of one recorded answer.
type VideoTurn struct {
	Transcript   string `json:"transcript"`
	NextQuestion string `json:"next_question"`
	Answered     int    `json:"answered"`
}

// VideoLog pairs the ranked follow-up questions with the recorded answers.
type VideoLog struct {
	Domain followup.Domain `json:"domain"`
	Pairs  []QA            `json:"qa_pairs"`
}

// SubmitVideo transcribes a recorded answer, appends it to the user's video
// history and picks the next question from the follow-ups ranked against the
// whole history.
func (m *Manager) SubmitVideo(ctx context.Context, userID int64, audio stt.Audio) (*VideoTurn, error) {
	tr, err := m.stt.Transcribe(ctx, audio)
	if err != nil {
		return nil, fmt.Errorf("interview: transcribe: %w", err)
	}

	m.mu.Lock()
	s, ok := m.videos[userID]
	if !ok {
		s = &videoSession{domain: DefaultVideoDomain}
		m.videos[userID] = s
	}
	s.responses = append(s.responses, tr.Text)
	s.touched = m.now()
	domain := s.domain
	history := slices.Clone(s.responses)
	m.mu.Unlock()

	turn := &VideoTurn{Transcript: tr.Text, Answered: len(history)}
	if follow := m.ranker.FollowUps(domain, history); len(follow) > 0 {
		turn.NextQuestion = follow[len(history)%len(follow)]
	}
	return turn, nil
}

// VideoLog returns the user's video interview so far.
func (m *Manager) VideoLog(userID int64) (*VideoLog, error) {
	m.mu.Lock()
	s, ok := m.videos[userID]
	var (
		domain    followup.Domain
		responses []string
	)
	if ok {
		domain = s.domain
		responses = slices.Clone(s.responses)
	}
	m.mu.Unlock()

	if len(responses) == 0 {
		return nil, ErrNoResponses
	}

	questions := m.ranker.FollowUps(domain, responses)
	n := min(len(questions), len(responses))
	log := &VideoLog{Domain: domain, Pairs: make([]QA, n)}
	for i := range n {
		log.Pairs[i] = QA{Question: questions[i], Answer: responses[i]}
	}
	return log, nil
}
