// Package postgres provides a PostgreSQL-backed implementation of
// [store.Store]: user accounts and speech feedback records.
//
// Usage:
//
//	s, err := postgres.NewStore(ctx, dsn)
//	if err != nil { … }
//	defer s.Close()
//
//	u, err := s.CreateUser(ctx, email, hash)
//	err = s.SaveFeedback(ctx, &store.Feedback{UserID: u.ID, …})
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ─────────────────────────────────────────────────────────────────────────────
// DDL: accounts
// ─────────────────────────────────────────────────────────────────────────────

const ddlUsers = `
CREATE TABLE IF NOT EXISTS users (
    id            BIGSERIAL    PRIMARY KEY,
    email         VARCHAR(150) NOT NULL,
    password_hash BYTEA        NOT NULL,
    created_at    TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower
    ON users (lower(email));`

// ─────────────────────────────────────────────────────────────────────────────
// DDL: speech feedback
// ─────────────────────────────────────────────────────────────────────────────

const ddlSpeechFeedback = `
CREATE TABLE IF NOT EXISTS speech_feedback (
    id             BIGSERIAL    PRIMARY KEY,
    user_id        BIGINT       NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    transcript     TEXT         NOT NULL,
    grammar_issues TEXT         NOT NULL DEFAULT '',
    pron_score     INTEGER,
    badge          VARCHAR(50)  NOT NULL DEFAULT '',
    timestamp      TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_speech_feedback_user_timestamp
    ON speech_feedback (user_id, timestamp DESC);`

// Migrate creates all tables and indexes if they do not already exist. It is
// idempotent and safe to call on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range []struct {
		name string
		sql  string
	}{
		{"users", ddlUsers},
		{"speech_feedback", ddlSpeechFeedback},
	} {
		if _, err := pool.Exec(ctx, stmt.sql); err != nil {
			return fmt.Errorf("migrate %s: %w", stmt.name, err)
		}
	}
	return nil
}
