package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careervani/careervani/pkg/store"
)

var _ store.Store = (*Store)(nil)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Store is the PostgreSQL-backed store. All methods are safe for concurrent
// use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database at dsn, verifies the connection and runs
// [Migrate].
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Ping checks database connectivity. Used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases all pooled connections.
func (s *Store) Close() {
	s.pool.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// Users
// ─────────────────────────────────────────────────────────────────────────────

// CreateUser implements [store.UserStore].
func (s *Store) CreateUser(ctx context.Context, email string, passwordHash []byte) (*store.User, error) {
	const q = `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, password_hash, created_at`

	u, err := scanUser(s.pool.QueryRow(ctx, q, strings.TrimSpace(email), passwordHash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, store.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("postgres store: create user: %w", err)
	}
	return u, nil
}

// UserByEmail implements [store.UserStore].
func (s *Store) UserByEmail(ctx context.Context, email string) (*store.User, error) {
	const q = `
		SELECT id, email, password_hash, created_at
		FROM   users
		WHERE  lower(email) = lower($1)`

	u, err := scanUser(s.pool.QueryRow(ctx, q, strings.TrimSpace(email)))
	if err != nil {
		return nil, notFound("user by email", err)
	}
	return u, nil
}

// UserByID implements [store.UserStore].
func (s *Store) UserByID(ctx context.Context, id int64) (*store.User, error) {
	const q = `
		SELECT id, email, password_hash, created_at
		FROM   users
		WHERE  id = $1`

	u, err := scanUser(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, notFound("user by id", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*store.User, error) {
	var u store.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Feedback
// ─────────────────────────────────────────────────────────────────────────────

// SaveFeedback implements [store.FeedbackStore].
func (s *Store) SaveFeedback(ctx context.Context, fb *store.Feedback) error {
	const q = `
		INSERT INTO speech_feedback
		    (user_id, transcript, grammar_issues, pron_score, badge, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	if fb.Timestamp.IsZero() {
		fb.Timestamp = time.Now().UTC()
	}
	err := s.pool.QueryRow(ctx, q,
		fb.UserID,
		fb.Transcript,
		fb.GrammarIssues,
		fb.PronScore,
		fb.Badge,
		fb.Timestamp,
	).Scan(&fb.ID)
	if err != nil {
		return fmt.Errorf("postgres store: save feedback: %w", err)
	}
	return nil
}

// ListFeedback implements [store.FeedbackStore].
func (s *Store) ListFeedback(ctx context.Context, userID int64) ([]store.Feedback, error) {
	const q = `
		SELECT id, user_id, transcript, grammar_issues, pron_score, badge, timestamp
		FROM   speech_feedback
		WHERE  user_id = $1
		ORDER  BY timestamp DESC, id DESC`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres store: list feedback: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.Feedback, error) {
		fb, err := scanFeedback(row)
		if err != nil {
			return store.Feedback{}, err
		}
		return *fb, nil
	})
	if err != nil {
		return nil, fmt.Errorf("postgres store: scan feedback: %w", err)
	}
	if list == nil {
		list = []store.Feedback{}
	}
	return list, nil
}

// GetFeedback implements [store.FeedbackStore].
func (s *Store) GetFeedback(ctx context.Context, userID, id int64) (*store.Feedback, error) {
	const q = `
		SELECT id, user_id, transcript, grammar_issues, pron_score, badge, timestamp
		FROM   speech_feedback
		WHERE  id = $1 AND user_id = $2`

	fb, err := scanFeedback(s.pool.QueryRow(ctx, q, id, userID))
	if err != nil {
		return nil, notFound("get feedback", err)
	}
	return fb, nil
}

func scanFeedback(row pgx.Row) (*store.Feedback, error) {
	var fb store.Feedback
	if err := row.Scan(
		&fb.ID,
		&fb.UserID,
		&fb.Transcript,
		&fb.GrammarIssues,
		&fb.PronScore,
		&fb.Badge,
		&fb.Timestamp,
	); err != nil {
		return nil, err
	}
	return &fb, nil
}

// notFound maps pgx.ErrNoRows to store.ErrNotFound and wraps everything else.
func notFound(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return fmt.Errorf("postgres store: %s: %w", op, err)
}
