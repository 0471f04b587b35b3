package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mangala-lk/backend/internal/domain/model"
	authsvc "github.com/mangala-lk/backend/internal/services/auth"
	notifsvc "github.com/mangala-lk/backend/internal/services/notifications"
	"github.com/mangala-lk/backend/internal/transport/http/dto"
)

type fakeNotificationStore struct {
	docs map[int64]*model.NotificationDoc
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{docs: map[int64]*model.NotificationDoc{}}
}

func (s *fakeNotificationStore) doc(userID int64) *model.NotificationDoc {
	d, ok := s.docs[userID]
	if !ok {
		d = &model.NotificationDoc{UserID: userID}
		s.docs[userID] = d
	}
	return d
}

func (s *fakeNotificationStore) Append(ctx context.Context, userID int64, item model.NotificationItem) error {
	d := s.doc(userID)
	d.Items = append(d.Items, item)
	d.UnreadCount++
	return nil
}

func (s *fakeNotificationStore) Get(ctx context.Context, userID int64) (model.NotificationDoc, error) {
	return *s.doc(userID), nil
}

func (s *fakeNotificationStore) MarkRead(ctx context.Context, userID int64, notificationIDs []string) (int, error) {
	d := s.doc(userID)
	wanted := map[string]bool{}
	for _, id := range notificationIDs {
		wanted[id] = true
	}
	d.UnreadCount = 0
	for i := range d.Items {
		if wanted[d.Items[i].NotificationID] {
			d.Items[i].IsRead = true
		}
		if !d.Items[i].IsRead {
			d.UnreadCount++
		}
	}
	return d.UnreadCount, nil
}

func (s *fakeNotificationStore) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.doc(userID).UnreadCount, nil
}

func authedRequest(method, target string, body []byte, identity authsvc.Identity) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	return req.WithContext(authsvc.WithIdentity(req.Context(), identity))
}

func TestNotificationListRequiresAuth(t *testing.T) {
	handler := NewNotificationHandler(notifsvc.NewService(newFakeNotificationStore()))

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestNotificationListAndMarkRead(t *testing.T) {
	store := newFakeNotificationStore()
	service := notifsvc.NewService(store)
	handler := NewNotificationHandler(service)
	identity := authsvc.Identity{UserID: 7, SID: "sid", Role: "CLIENT"}

	_ = store.Append(context.Background(), 7, model.NotificationItem{
		NotificationID: "n1",
		Title:          "New proposal",
		CreatedAt:      time.Now(),
	})

	rec := httptest.NewRecorder()
	handler.List(rec, authedRequest(http.MethodGet, "/notifications", nil, identity))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var listRes dto.NotificationListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &listRes); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listRes.Notifications) != 1 || listRes.UnreadCount != 1 {
		t.Fatalf("unexpected list response: %+v", listRes)
	}

	body, _ := json.Marshal(dto.NotificationMarkReadRequest{IDs: []string{"n1"}})
	rec = httptest.NewRecorder()
	handler.MarkRead(rec, authedRequest(http.MethodPost, "/notifications/mark-read", body, identity))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var markRes dto.NotificationMarkReadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &markRes); err != nil {
		t.Fatalf("decode mark-read response: %v", err)
	}
	if markRes.UnreadCount != 0 {
		t.Fatalf("expected unread 0, got %d", markRes.UnreadCount)
	}
}

func TestNotificationMarkReadValidation(t *testing.T) {
	handler := NewNotificationHandler(notifsvc.NewService(newFakeNotificationStore()))
	identity := authsvc.Identity{UserID: 7, SID: "sid", Role: "CLIENT"}

	body, _ := json.Marshal(dto.NotificationMarkReadRequest{IDs: nil})
	rec := httptest.NewRecorder()
	handler.MarkRead(rec, authedRequest(http.MethodPost, "/notifications/mark-read", body, identity))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestNotificationCreate(t *testing.T) {
	handler := NewNotificationHandler(notifsvc.NewService(newFakeNotificationStore()))
	identity := authsvc.Identity{UserID: 1, SID: "sid", Role: "ADMIN"}

	body, _ := json.Marshal(dto.NotificationCreateRequest{
		UserID: 7,
		Type:   "SYSTEM",
		Title:  "Maintenance window",
	})
	rec := httptest.NewRecorder()
	handler.Create(rec, authedRequest(http.MethodPost, "/notifications/create", body, identity))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var res dto.NotificationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.NotificationID == "" || res.Type != "SYSTEM" {
		t.Fatalf("unexpected response: %+v", res)
	}
}
