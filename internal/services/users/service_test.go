package users

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mangala-lk/backend/internal/domain/enums"
	"github.com/mangala-lk/backend/internal/domain/model"
	pgrepo "github.com/mangala-lk/backend/internal/repo/postgres"
)

type stubUserStore struct {
	users map[int64]model.User
}

func (s *stubUserStore) GetByID(ctx context.Context, userID int64) (model.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUserStore) SetStatus(ctx context.Context, userID int64, status enums.AccountStatus) error {
	u, ok := s.users[userID]
	if !ok {
		return pgrepo.ErrUserNotFound
	}
	u.Status = status
	s.users[userID] = u
	return nil
}

func (s *stubUserStore) SetVerified(ctx context.Context, userID int64, verified bool) error {
	u, ok := s.users[userID]
	if !ok {
		return pgrepo.ErrUserNotFound
	}
	u.IsVerified = verified
	s.users[userID] = u
	return nil
}

type stubProfileStore struct {
	profiles map[int64]model.Profile
}

func (s *stubProfileStore) GetByID(ctx context.Context, profileID int64) (model.Profile, error) {
	p, ok := s.profiles[profileID]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	return p, nil
}

func (s *stubProfileStore) SetModerationStatus(ctx context.Context, profileID int64, status enums.ModerationStatus) (int64, error) {
	p, ok := s.profiles[profileID]
	if !ok {
		return 0, pgrepo.ErrProfileNotFound
	}
	p.ModerationStatus = status
	s.profiles[profileID] = p
	return p.UserID, nil
}

type stubPhotoStore struct {
	photos map[int64]model.Photo
}

func (s *stubPhotoStore) SetApproved(ctx context.Context, photoID int64) (model.Photo, error) {
	p, ok := s.photos[photoID]
	if !ok {
		return model.Photo{}, pgrepo.ErrPhotoNotFound
	}
	p.IsApproved = true
	s.photos[photoID] = p
	return p, nil
}

type stubNotifCounter struct{ count int }

func (s *stubNotifCounter) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.count, nil
}

type stubMsgCounter struct{ count int64 }

func (s *stubMsgCounter) CountUnreadForUser(ctx context.Context, userID int64) (int64, error) {
	return s.count, nil
}

type enqueued struct {
	kind    string
	payload any
}

type stubOutbox struct {
	events []enqueued
}

func (s *stubOutbox) EnqueueTx(ctx context.Context, tx pgx.Tx, eventID, kind string, payload any) error {
	s.events = append(s.events, enqueued{kind: kind, payload: payload})
	return nil
}

func (s *stubOutbox) lastNotification(t *testing.T) model.NotificationPayload {
	t.Helper()
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].kind == model.OutboxKindNotification {
			raw, _ := json.Marshal(s.events[i].payload)
			var p model.NotificationPayload
			_ = json.Unmarshal(raw, &p)
			return p
		}
	}
	t.Fatal("no notification event enqueued")
	return model.NotificationPayload{}
}

func newServiceForTest() (*Service, *stubUserStore, *stubProfileStore, *stubOutbox) {
	users := &stubUserStore{users: map[int64]model.User{
		1: {ID: 1, Role: enums.RoleAdmin, Status: enums.AccountStatusActive},
		7: {ID: 7, Role: enums.RoleClient, Status: enums.AccountStatusActive},
	}}
	profiles := &stubProfileStore{profiles: map[int64]model.Profile{
		70: {ID: 70, UserID: 7, ModerationStatus: enums.ModerationStatusPending},
	}}
	photos := &stubPhotoStore{photos: map[int64]model.Photo{
		700: {ID: 700, ProfileID: 70},
	}}
	outbox := &stubOutbox{}
	svc := &Service{
		users:         users,
		profiles:      profiles,
		photos:        photos,
		notifications: &stubNotifCounter{count: 3},
		messages:      &stubMsgCounter{count: 5},
		outbox:        outbox,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return fn(ctx, nil)
		},
		now: time.Now,
	}
	return svc, users, profiles, outbox
}

func TestGetSummary(t *testing.T) {
	svc, _, _, _ := newServiceForTest()

	sum, err := svc.GetSummary(context.Background(), 7)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.User.ID != 7 || sum.UnreadNotifications != 3 || sum.UnreadMessages != 5 {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	if _, err := svc.GetSummary(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSuspendAndActivate(t *testing.T) {
	svc, users, _, outbox := newServiceForTest()
	ctx := context.Background()

	if err := svc.Suspend(ctx, 1, 7); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if users.users[7].Status != enums.AccountStatusSuspended {
		t.Fatalf("expected SUSPENDED, got %q", users.users[7].Status)
	}
	notif := outbox.lastNotification(t)
	if notif.UserID != 7 || notif.Item.Type != enums.NotificationSystem {
		t.Fatalf("expected SYSTEM notification for user 7, got %+v", notif)
	}

	if err := svc.Activate(ctx, 1, 7); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if users.users[7].Status != enums.AccountStatusActive {
		t.Fatalf("expected ACTIVE, got %q", users.users[7].Status)
	}

	if err := svc.Suspend(ctx, 1, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVerify(t *testing.T) {
	svc, users, _, _ := newServiceForTest()

	if err := svc.Verify(context.Background(), 1, 7); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !users.users[7].IsVerified {
		t.Fatal("expected user verified")
	}
}

func TestModerateProfile(t *testing.T) {
	svc, _, profiles, outbox := newServiceForTest()
	ctx := context.Background()

	if err := svc.ApproveProfile(ctx, 1, 70); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if profiles.profiles[70].ModerationStatus != enums.ModerationStatusApproved {
		t.Fatalf("expected APPROVED, got %q", profiles.profiles[70].ModerationStatus)
	}
	notif := outbox.lastNotification(t)
	if notif.UserID != 7 || notif.Item.Type != enums.NotificationProfileApproved {
		t.Fatalf("expected PROFILE_APPROVED for owner, got %+v", notif)
	}

	if err := svc.RefuseProfile(ctx, 1, 70); err != nil {
		t.Fatalf("refuse: %v", err)
	}
	if profiles.profiles[70].ModerationStatus != enums.ModerationStatusRefused {
		t.Fatalf("expected REFUSED, got %q", profiles.profiles[70].ModerationStatus)
	}

	if err := svc.ApproveProfile(ctx, 1, 999); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestApprovePhotoNotifiesOwner(t *testing.T) {
	svc, _, _, outbox := newServiceForTest()
	ctx := context.Background()

	if err := svc.ApprovePhoto(ctx, 1, 700); err != nil {
		t.Fatalf("approve photo: %v", err)
	}
	notif := outbox.lastNotification(t)
	if notif.UserID != 7 || notif.Item.Type != enums.NotificationPhotoApproved {
		t.Fatalf("expected PHOTO_APPROVED for owner, got %+v", notif)
	}

	if err := svc.ApprovePhoto(ctx, 1, 999); !errors.Is(err, ErrPhotoNotFound) {
		t.Fatalf("expected ErrPhotoNotFound, got %v", err)
	}
}
