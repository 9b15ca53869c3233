// Package feedback keeps an append-only JSON-lines copy of every saved
// feedback record next to the primary store. The file is a plain export for
// coaches and offline analysis; the primary store stays the source of truth.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/careervani/careervani/pkg/store"
)

var _ store.FeedbackStore = (*Archive)(nil)

// Record is a single line written to the archive file.
type Record struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Transcript    string    `json:"transcript"`
	GrammarIssues string    `json:"grammar_issues,omitempty"`
	PronScore     *int      `json:"pron_score"`
	Badge         string    `json:"badge"`
	Timestamp     time.Time `json:"timestamp"`
}

func recordOf(fb *store.Feedback) Record {
	return Record{
		ID:            fb.ID,
		UserID:        fb.UserID,
		Transcript:    fb.Transcript,
		GrammarIssues: fb.GrammarIssues,
		PronScore:     fb.PronScore,
		Badge:         fb.Badge,
		Timestamp:     fb.Timestamp.UTC(),
	}
}

// Archive wraps a [store.FeedbackStore] and appends every successfully saved
// record to a JSON-lines file. Reads go straight to the wrapped store.
//
// Thread-safe for concurrent use.
type Archive struct {
	store.FeedbackStore

	mu   sync.Mutex
	path string
}

// NewArchive returns an Archive writing to path. The file is created on the
// first save.
func NewArchive(next store.FeedbackStore, path string) *Archive {
	return &Archive{FeedbackStore: next, path: path}
}

// SaveFeedback stores fb in the wrapped store, then appends it to the file.
// An archive write failure is logged and does not fail the save.
func (a *Archive) SaveFeedback(ctx context.Context, fb *store.Feedback) error {
	if err := a.FeedbackStore.SaveFeedback(ctx, fb); err != nil {
		return err
	}
	if err := a.append(recordOf(fb)); err != nil {
		slog.Warn("feedback archive write failed", "path", a.path, "id", fb.ID, "err", err)
	}
	return nil
}

func (a *Archive) append(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("feedback: marshal: %w", err)
	}
	data = append(data, '\n')

	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("feedback: open file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("feedback: write: %w", err)
	}
	return nil
}
