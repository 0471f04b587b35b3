package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mangala-lk/backend/internal/domain/enums"
	"github.com/mangala-lk/backend/internal/domain/model"
	"github.com/mangala-lk/backend/internal/pkg/validate"
)

var ErrValidation = errors.New("invalid notification input")

type Store interface {
	Append(ctx context.Context, userID int64, item model.NotificationItem) error
	Get(ctx context.Context, userID int64) (model.NotificationDoc, error)
	MarkRead(ctx context.Context, userID int64, notificationIDs []string) (int, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

type CreateInput struct {
	UserID    int64
	Type      string
	Title     string
	Content   string
	Link      string
	RelatedID string
}

// Create writes a notification directly, bypassing the outbox. It backs
// the admin endpoint; everything event-driven goes through the outbox
// instead.
func (s *Service) Create(ctx context.Context, in CreateInput) (model.NotificationItem, error) {
	if s.store == nil {
		return model.NotificationItem{}, fmt.Errorf("notification store is not configured")
	}
	if in.UserID <= 0 {
		return model.NotificationItem{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}

	ntype := enums.NotificationType(strings.ToUpper(strings.TrimSpace(in.Type)))
	if ntype == "" {
		ntype = enums.NotificationSystem
	}
	if !ntype.Valid() {
		return model.NotificationItem{}, fmt.Errorf("unknown notification type %q: %w", in.Type, ErrValidation)
	}

	if !validate.Required(in.Title) {
		return model.NotificationItem{}, fmt.Errorf("title is required: %w", ErrValidation)
	}
	title := strings.TrimSpace(in.Title)

	item := model.NotificationItem{
		NotificationID: uuid.NewString(),
		Type:           ntype,
		Title:          title,
		Content:        strings.TrimSpace(in.Content),
		Link:           strings.TrimSpace(in.Link),
		RelatedID:      strings.TrimSpace(in.RelatedID),
		CreatedAt:      s.now().UTC(),
	}
	if err := s.store.Append(ctx, in.UserID, item); err != nil {
		return model.NotificationItem{}, fmt.Errorf("append notification: %w", err)
	}

	return item, nil
}

type Page struct {
	Items       []model.NotificationItem `json:"items"`
	UnreadCount int                      `json:"unread_count"`
	Total       int                      `json:"total"`
}

// List returns the caller's notifications newest first. The per-user
// document is created on first read, so a fresh account gets an empty
// page rather than a 404.
func (s *Service) List(ctx context.Context, userID int64, skip, limit int) (Page, error) {
	doc, err := s.store.Get(ctx, userID)
	if err != nil {
		return Page{}, fmt.Errorf("get notifications: %w", err)
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if skip < 0 {
		skip = 0
	}

	// Items are stored oldest first; page from the tail.
	total := len(doc.Items)
	newest := make([]model.NotificationItem, 0, limit)
	for i := total - 1 - skip; i >= 0 && len(newest) < limit; i-- {
		newest = append(newest, doc.Items[i])
	}

	return Page{Items: newest, UnreadCount: doc.UnreadCount, Total: total}, nil
}

// MarkRead flips the given notifications to read and returns the
// recomputed unread count. Unknown or already-read ids are ignored.
func (s *Service) MarkRead(ctx context.Context, userID int64, notificationIDs []string) (int, error) {
	ids := make([]string, 0, len(notificationIDs))
	for _, id := range notificationIDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("no notification ids: %w", ErrValidation)
	}

	unread, err := s.store.MarkRead(ctx, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}

	return unread, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int, error) {
	count, err := s.store.UnreadCount(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("unread notification count: %w", err)
	}
	return count, nil
}
