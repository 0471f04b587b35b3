package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mangala-lk/backend/internal/domain/model"
	mongorepo "github.com/mangala-lk/backend/internal/repo/mongodb"
)

type stubActivityStore struct {
	entries []model.ActivityEntry
}

func (s *stubActivityStore) Insert(ctx context.Context, entry model.ActivityEntry) error {
	for _, existing := range s.entries {
		if existing.EventID == entry.EventID {
			return nil
		}
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubActivityStore) Query(ctx context.Context, filter mongorepo.ActivityFilter) ([]model.ActivityEntry, error) {
	var out []model.ActivityEntry
	for _, e := range s.entries {
		if filter.UserID != 0 && e.UserID != filter.UserID {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.EntityType != "" && e.EntityType != filter.EntityType {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func TestLogAssignsEventID(t *testing.T) {
	store := &stubActivityStore{}
	svc := NewService(store)

	entry, err := svc.Log(context.Background(), 7, LogInput{
		Action:     "profile.viewed",
		EntityType: "profile",
		EntityID:   "12",
	})
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if entry.EventID == "" {
		t.Fatal("expected a generated event id")
	}
	if entry.UserID != 7 || entry.Action != "profile.viewed" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if len(store.entries) != 1 {
		t.Fatalf("expected 1 stored entry, got %d", len(store.entries))
	}
}

func TestLogValidation(t *testing.T) {
	svc := NewService(&stubActivityStore{})
	ctx := context.Background()

	if _, err := svc.Log(ctx, 0, LogInput{Action: "x"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing user, got %v", err)
	}
	if _, err := svc.Log(ctx, 7, LogInput{Action: "  "}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank action, got %v", err)
	}
}

func TestAdminQueryFilters(t *testing.T) {
	store := &stubActivityStore{}
	svc := NewService(store)
	ctx := context.Background()

	for _, in := range []struct {
		userID int64
		action string
	}{
		{1, "proposal.sent"},
		{1, "profile.updated"},
		{2, "proposal.sent"},
	} {
		if _, err := svc.Log(ctx, in.userID, LogInput{Action: in.action, EntityType: "x"}); err != nil {
			t.Fatalf("log: %v", err)
		}
	}

	entries, err := svc.AdminQuery(ctx, mongorepo.ActivityFilter{UserID: 1, Action: "proposal.sent"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	now := time.Now()
	if _, err := svc.AdminQuery(ctx, mongorepo.ActivityFilter{From: now, To: now.Add(-time.Hour)}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for inverted range, got %v", err)
	}
}
