package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/careervani/careervani/pkg/store"
)

func TestUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()

	u, err := s.CreateUser(ctx, " Asha@Example.com ", []byte("hash"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID != 1 || u.Email != "Asha@Example.com" || u.CreatedAt.IsZero() {
		t.Errorf("user = %+v", u)
	}

	if _, err := s.CreateUser(ctx, "asha@example.com", []byte("other")); !errors.Is(err, store.ErrDuplicateEmail) {
		t.Errorf("duplicate: err = %v, want ErrDuplicateEmail", err)
	}

	got, err := s.UserByEmail(ctx, "ASHA@example.com")
	if err != nil || got.ID != u.ID || string(got.PasswordHash) != "hash" {
		t.Errorf("UserByEmail = %+v, %v", got, err)
	}
	if _, err := s.UserByEmail(ctx, "nobody@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown email: err = %v", err)
	}
	if _, err := s.UserByID(ctx, 42); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown id: err = %v", err)
	}
}

func TestFeedback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	score := 7
	first := &store.Feedback{UserID: 1, Transcript: "first", PronScore: &score, Badge: "👍 Good"}
	second := &store.Feedback{UserID: 1, Transcript: "second", Badge: "🌐 Regional"}
	other := &store.Feedback{UserID: 2, Transcript: "other"}
	for _, fb := range []*store.Feedback{first, second, other} {
		if err := s.SaveFeedback(ctx, fb); err != nil {
			t.Fatalf("SaveFeedback: %v", err)
		}
	}
	score = 1

	list, err := s.ListFeedback(ctx, 1)
	if err != nil {
		t.Fatalf("ListFeedback: %v", err)
	}
	if len(list) != 2 || list[0].Transcript != "second" || list[1].Transcript != "first" {
		t.Fatalf("list = %+v, want newest first", list)
	}
	if list[1].PronScore == nil || *list[1].PronScore != 7 {
		t.Errorf("stored score must not alias caller's pointer")
	}
	if list[0].PronScore != nil {
		t.Errorf("regional score = %v, want nil", *list[0].PronScore)
	}

	if _, err := s.GetFeedback(ctx, 1, other.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("foreign record: err = %v, want ErrNotFound", err)
	}
	got, err := s.GetFeedback(ctx, 2, other.ID)
	if err != nil || got.Transcript != "other" {
		t.Errorf("GetFeedback = %+v, %v", got, err)
	}

	empty, _ := s.ListFeedback(ctx, 99)
	if empty == nil || len(empty) != 0 {
		t.Errorf("empty list = %#v, want non-nil empty", empty)
	}
}
