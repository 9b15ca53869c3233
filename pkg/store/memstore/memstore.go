// Package memstore is an in-memory implementation of store.Store. Data lives
// only as long as the process.
package memstore

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/careervani/careervani/pkg/store"
)

var _ store.Store = (*Store)(nil)

// Store holds users and feedback in maps guarded by a mutex.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    map[int64]store.User
	byEmail  map[string]int64
	feedback map[int64]store.Feedback
	nextUser int64
	nextFB   int64
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		now:      time.Now,
		users:    make(map[int64]store.User),
		byEmail:  make(map[string]int64),
		feedback: make(map[int64]store.Feedback),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser implements store.UserStore.
func (s *Store) CreateUser(_ context.Context, email string, passwordHash []byte) (*store.User, error) {
	key := normalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[key]; ok {
		return nil, store.ErrDuplicateEmail
	}
	s.nextUser++
	u := store.User{
		ID:           s.nextUser,
		Email:        strings.TrimSpace(email),
		PasswordHash: slices.Clone(passwordHash),
		CreatedAt:    s.now().UTC(),
	}
	s.users[u.ID] = u
	s.byEmail[key] = u.ID
	return &u, nil
}

// UserByEmail implements store.UserStore.
func (s *Store) UserByEmail(ctx context.Context, email string) (*store.User, error) {
	s.mu.RLock()
	id, ok := s.byEmail[normalizeEmail(email)]
	s.mu.RUnlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.UserByID(ctx, id)
}

// UserByID implements store.UserStore.
func (s *Store) UserByID(_ context.Context, id int64) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

// SaveFeedback implements store.FeedbackStore.
func (s *Store) SaveFeedback(_ context.Context, fb *store.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextFB++
	fb.ID = s.nextFB
	if fb.Timestamp.IsZero() {
		fb.Timestamp = s.now().UTC()
	}
	stored := *fb
	if fb.PronScore != nil {
		v := *fb.PronScore
		stored.PronScore = &v
	}
	s.feedback[fb.ID] = stored
	return nil
}

// ListFeedback implements store.FeedbackStore.
func (s *Store) ListFeedback(_ context.Context, userID int64) ([]store.Feedback, error) {
	s.mu.RLock()
	out := []store.Feedback{}
	for _, fb := range s.feedback {
		if fb.UserID == userID {
			out = append(out, fb)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b store.Feedback) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

// GetFeedback implements store.FeedbackStore.
func (s *Store) GetFeedback(_ context.Context, userID, id int64) (*store.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fb, ok := s.feedback[id]
	if !ok || fb.UserID != userID {
		return nil, store.ErrNotFound
	}
	return &fb, nil
}
