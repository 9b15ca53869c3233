package feedback

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/careervani/careervani/pkg/store"
	"github.com/careervani/careervani/pkg/store/memstore"
)

func readRecords(t *testing.T, path string) []Record {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer f.Close()

	var out []Record
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("line %q: %v", sc.Text(), err)
		}
		out = append(out, r)
	}
	return out
}

func TestArchive_SaveAppendsLine(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "feedback.jsonl")
	a := NewArchive(memstore.New(), path)

	score := 8
	for _, fb := range []*store.Feedback{
		{UserID: 1, Transcript: "I am good at teamwork.", PronScore: &score, Badge: "👍 Good"},
		{UserID: 1, Transcript: "Original: a || Translated: b", Badge: "🌐 Regional"},
	} {
		if err := a.SaveFeedback(ctx, fb); err != nil {
			t.Fatalf("SaveFeedback: %v", err)
		}
	}

	recs := readRecords(t, path)
	if len(recs) != 2 {
		t.Fatalf("archive has %d lines, want 2", len(recs))
	}
	if recs[0].ID != 1 || recs[0].PronScore == nil || *recs[0].PronScore != 8 {
		t.Errorf("first record = %+v", recs[0])
	}
	if recs[1].PronScore != nil || recs[1].Badge != "🌐 Regional" {
		t.Errorf("second record = %+v", recs[1])
	}

	list, _ := a.ListFeedback(ctx, 1)
	if len(list) != 2 {
		t.Errorf("reads must reach the wrapped store, got %d records", len(list))
	}
}

type failingStore struct{ store.FeedbackStore }

func (failingStore) SaveFeedback(context.Context, *store.Feedback) error {
	return errors.New("db down")
}

func TestArchive_StoreErrorSkipsArchive(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "feedback.jsonl")
	a := NewArchive(failingStore{}, path)

	if err := a.SaveFeedback(context.Background(), &store.Feedback{UserID: 1}); err == nil {
		t.Fatal("expected store error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("archive file must not exist, stat err = %v", err)
	}
}

func TestArchive_FileErrorDoesNotFailSave(t *testing.T) {
	t.Parallel()

	a := NewArchive(memstore.New(), filepath.Join(t.TempDir(), "missing", "feedback.jsonl"))
	fb := &store.Feedback{UserID: 1, Transcript: "x"}
	if err := a.SaveFeedback(context.Background(), fb); err != nil {
		t.Fatalf("SaveFeedback: %v", err)
	}
	if fb.ID == 0 {
		t.Error("record must still be stored")
	}
}
