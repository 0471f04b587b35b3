package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangala-lk/backend/internal/domain/enums"
	"github.com/mangala-lk/backend/internal/domain/model"
	pgrepo "github.com/mangala-lk/backend/internal/repo/postgres"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrPhotoNotFound   = errors.New("photo not found")
)

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (model.User, error)
	SetStatus(ctx context.Context, userID int64, status enums.AccountStatus) error
	SetVerified(ctx context.Context, userID int64, verified bool) error
}

type ProfileStore interface {
	GetByID(ctx context.Context, profileID int64) (model.Profile, error)
	SetModerationStatus(ctx context.Context, profileID int64, status enums.ModerationStatus) (int64, error)
}

type PhotoStore interface {
	SetApproved(ctx context.Context, photoID int64) (model.Photo, error)
}

type NotificationCounter interface {
	UnreadCount(ctx context.Context, userID int64) (int, error)
}

type MessageCounter interface {
	CountUnreadForUser(ctx context.Context, userID int64) (int64, error)
}

type Outbox interface {
	EnqueueTx(ctx context.Context, tx pgx.Tx, eventID, kind string, payload any) error
}

type Service struct {
	users         UserStore
	profiles      ProfileStore
	photos        PhotoStore
	notifications NotificationCounter
	messages      MessageCounter
	outbox        Outbox
	runTx         func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	now           func() time.Time
}

func NewService(pool *pgxpool.Pool, users UserStore, profiles ProfileStore, photos PhotoStore, notifications NotificationCounter, messages MessageCounter, outbox Outbox) *Service {
	return &Service{
		users:         users,
		profiles:      profiles,
		photos:        photos,
		notifications: notifications,
		messages:      messages,
		outbox:        outbox,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		},
		now: time.Now,
	}
}

type Summary struct {
	User                model.User `json:"user"`
	UnreadNotifications int        `json:"unread_notifications"`
	UnreadMessages      int64      `json:"unread_messages"`
}

// GetSummary joins the relational user row with the document-store unread
// counters for the header badge endpoint.
func (s *Service) GetSummary(ctx context.Context, userID int64) (Summary, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return Summary{}, ErrNotFound
		}
		return Summary{}, fmt.Errorf("get user: %w", err)
	}

	unreadNotifs, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("unread notifications: %w", err)
	}
	unreadMsgs, err := s.messages.CountUnreadForUser(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("unread messages: %w", err)
	}

	return Summary{User: user, UnreadNotifications: unreadNotifs, UnreadMessages: unreadMsgs}, nil
}

func (s *Service) Get(ctx context.Context, userID int64) (model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Suspend blocks an account. Existing sessions are revoked by the caller;
// this service only flips the row and records the action.
func (s *Service) Suspend(ctx context.Context, adminID, userID int64) error {
	return s.setStatus(ctx, adminID, userID, enums.AccountStatusSuspended, "user.suspended", "Account suspended", "Your account has been suspended by a moderator.")
}

func (s *Service) Activate(ctx context.Context, adminID, userID int64) error {
	return s.setStatus(ctx, adminID, userID, enums.AccountStatusActive, "user.activated", "Account reactivated", "Your account is active again.")
}

func (s *Service) Verify(ctx context.Context, adminID, userID int64) error {
	if err := s.users.SetVerified(ctx, userID, true); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("set verified: %w", err)
	}
	return s.recordAdminAction(ctx, adminID, "user.verified", "user", userID, nil)
}

// ApproveProfile clears a pending profile for public visibility and
// notifies its owner.
func (s *Service) ApproveProfile(ctx context.Context, adminID, profileID int64) error {
	return s.moderateProfile(ctx, adminID, profileID, enums.ModerationStatusApproved,
		enums.NotificationProfileApproved, "Profile approved", "Your profile has been approved and is now visible to other members.")
}

func (s *Service) RefuseProfile(ctx context.Context, adminID, profileID int64) error {
	return s.moderateProfile(ctx, adminID, profileID, enums.ModerationStatusRefused,
		enums.NotificationProfileRefused, "Profile refused", "Your profile was refused by moderation. Edit it and resubmit.")
}

func (s *Service) ApprovePhoto(ctx context.Context, adminID, photoID int64) error {
	photo, err := s.photos.SetApproved(ctx, photoID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPhotoNotFound) {
			return ErrPhotoNotFound
		}
		return fmt.Errorf("approve photo: %w", err)
	}

	profile, err := s.profiles.GetByID(ctx, photo.ProfileID)
	if err != nil {
		return fmt.Errorf("get photo owner profile: %w", err)
	}

	return s.runTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.enqueueNotification(ctx, tx, profile.UserID, enums.NotificationPhotoApproved,
			"Photo approved", "One of your photos has been approved.", strconv.FormatInt(photo.ID, 10)); err != nil {
			return err
		}
		return s.enqueueActivity(ctx, tx, adminID, "photo.approved", "photo", photo.ID, nil)
	})
}

func (s *Service) setStatus(ctx context.Context, adminID, userID int64, status enums.AccountStatus, action, title, content string) error {
	if err := s.users.SetStatus(ctx, userID, status); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("set status: %w", err)
	}

	return s.runTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.enqueueNotification(ctx, tx, userID, enums.NotificationSystem, title, content, strconv.FormatInt(userID, 10)); err != nil {
			return err
		}
		return s.enqueueActivity(ctx, tx, adminID, action, "user", userID, nil)
	})
}

func (s *Service) moderateProfile(ctx context.Context, adminID, profileID int64, status enums.ModerationStatus, notifType enums.NotificationType, title, content string) error {
	ownerID, err := s.profiles.SetModerationStatus(ctx, profileID, status)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("set moderation status: %w", err)
	}

	action := "profile.refused"
	if status == enums.ModerationStatusApproved {
		action = "profile.approved"
	}

	return s.runTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.enqueueNotification(ctx, tx, ownerID, notifType, title, content, strconv.FormatInt(profileID, 10)); err != nil {
			return err
		}
		return s.enqueueActivity(ctx, tx, adminID, action, "profile", profileID, nil)
	})
}

func (s *Service) recordAdminAction(ctx context.Context, adminID int64, action, entityType string, entityID int64, details map[string]any) error {
	return s.runTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.enqueueActivity(ctx, tx, adminID, action, entityType, entityID, details)
	})
}

func (s *Service) enqueueNotification(ctx context.Context, tx pgx.Tx, userID int64, notifType enums.NotificationType, title, content, relatedID string) error {
	item := model.NotificationItem{
		NotificationID: uuid.NewString(),
		EventID:        uuid.NewString(),
		Type:           notifType,
		Title:          title,
		Content:        content,
		RelatedID:      relatedID,
		CreatedAt:      s.now().UTC(),
	}
	payload := model.NotificationPayload{UserID: userID, Item: item}
	if err := s.outbox.EnqueueTx(ctx, tx, item.EventID, model.OutboxKindNotification, payload); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

func (s *Service) enqueueActivity(ctx context.Context, tx pgx.Tx, userID int64, action, entityType string, entityID int64, details map[string]any) error {
	entry := model.ActivityEntry{
		EventID:    uuid.NewString(),
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   strconv.FormatInt(entityID, 10),
		Details:    details,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.outbox.EnqueueTx(ctx, tx, entry.EventID, model.OutboxKindActivity, entry); err != nil {
		return fmt.Errorf("enqueue activity: %w", err)
	}
	return nil
}
