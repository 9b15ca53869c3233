// Package store defines the persistence interfaces for CareerVani: user
// accounts and per-answer feedback records.
//
// Two implementations exist: [github.com/careervani/careervani/pkg/store/postgres]
// for production and [github.com/careervani/careervani/pkg/store/memstore] for
// tests and database-less development.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a lookup matches no row, or the row belongs
	// to another user.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicateEmail is returned by CreateUser when the email is taken.
	ErrDuplicateEmail = errors.New("store: email already exists")
)

// User is a registered account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Feedback is the persisted outcome of one reviewed answer.
type Feedback struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`

	// Transcript is the reviewed text. Regional answers store
	// "Original: … || Translated: …".
	Transcript string `json:"transcript"`

	// GrammarIssues holds the formatted suggestions joined with "; ".
	GrammarIssues string `json:"grammar_issues"`

	// PronScore is nil for answers that were not scored, such as regional
	// translations.
	PronScore *int `json:"pron_score"`

	Badge     string    `json:"badge"`
	Timestamp time.Time `json:"timestamp"`
}

// UserStore persists accounts. Emails are compared case-insensitively.
type UserStore interface {
	// CreateUser inserts a new account and returns it with ID and CreatedAt
	// set. Returns ErrDuplicateEmail if the email is taken.
	CreateUser(ctx context.Context, email string, passwordHash []byte) (*User, error)

	// UserByEmail returns the account for email or ErrNotFound.
	UserByEmail(ctx context.Context, email string) (*User, error)

	// UserByID returns the account with id or ErrNotFound.
	UserByID(ctx context.Context, id int64) (*User, error)
}

// FeedbackStore persists feedback records.
type FeedbackStore interface {
	// SaveFeedback inserts fb and sets its ID. A zero Timestamp is replaced
	// with the current time.
	SaveFeedback(ctx context.Context, fb *Feedback) error

	// ListFeedback returns the user's records, newest first.
	ListFeedback(ctx context.Context, userID int64) ([]Feedback, error)

	// GetFeedback returns record id if it belongs to userID, else ErrNotFound.
	GetFeedback(ctx context.Context, userID, id int64) (*Feedback, error)
}

// Store combines both interfaces.
type Store interface {
	UserStore
	FeedbackStore
}
