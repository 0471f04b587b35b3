package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mangala-lk/backend/internal/domain/model"
	"github.com/mangala-lk/backend/internal/pkg/validate"
	mongorepo "github.com/mangala-lk/backend/internal/repo/mongodb"
)

var ErrValidation = errors.New("invalid activity input")

type Store interface {
	Insert(ctx context.Context, entry model.ActivityEntry) error
	Query(ctx context.Context, filter mongorepo.ActivityFilter) ([]model.ActivityEntry, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

type LogInput struct {
	Action     string
	EntityType string
	EntityID   string
	Details    map[string]any
	IPAddress  string
	UserAgent  string
}

// Log records one of the caller's own actions. Event-driven entries
// arrive through the outbox worker instead, carrying the outbox event id.
func (s *Service) Log(ctx context.Context, userID int64, in LogInput) (model.ActivityEntry, error) {
	if s.store == nil {
		return model.ActivityEntry{}, fmt.Errorf("activity store is not configured")
	}
	if userID <= 0 {
		return model.ActivityEntry{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}

	if !validate.Required(in.Action) {
		return model.ActivityEntry{}, fmt.Errorf("action is required: %w", ErrValidation)
	}
	action := strings.TrimSpace(in.Action)

	entry := model.ActivityEntry{
		EventID:    uuid.NewString(),
		UserID:     userID,
		Action:     action,
		EntityType: strings.TrimSpace(in.EntityType),
		EntityID:   strings.TrimSpace(in.EntityID),
		Details:    in.Details,
		IPAddress:  strings.TrimSpace(in.IPAddress),
		UserAgent:  strings.TrimSpace(in.UserAgent),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.Insert(ctx, entry); err != nil {
		return model.ActivityEntry{}, fmt.Errorf("insert activity entry: %w", err)
	}

	return entry, nil
}

// AdminQuery searches the audit log. Filters combine with AND semantics.
func (s *Service) AdminQuery(ctx context.Context, filter mongorepo.ActivityFilter) ([]model.ActivityEntry, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, fmt.Errorf("date range is inverted: %w", ErrValidation)
	}

	entries, err := s.store.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query activity log: %w", err)
	}

	return entries, nil
}
