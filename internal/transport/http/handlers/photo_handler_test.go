package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/mangala-lk/backend/internal/domain/model"
	pgrepo "github.com/mangala-lk/backend/internal/repo/postgres"
	authsvc "github.com/mangala-lk/backend/internal/services/auth"
	photosvc "github.com/mangala-lk/backend/internal/services/photos"
	httperrors "github.com/mangala-lk/backend/internal/transport/http/errors"
)

type fakePhotoStore struct {
	count int
}

func (s *fakePhotoStore) Create(ctx context.Context, profileID int64, url, originalName string, sizeBytes int64, mimeType string) (model.Photo, error) {
	s.count++
	return model.Photo{ID: int64(s.count), ProfileID: profileID, URL: url}, nil
}

func (s *fakePhotoStore) Get(ctx context.Context, photoID int64) (model.Photo, error) {
	return model.Photo{}, pgrepo.ErrPhotoNotFound
}

func (s *fakePhotoStore) ListByProfile(ctx context.Context, profileID int64, approvedOnly bool) ([]model.Photo, error) {
	return nil, nil
}

func (s *fakePhotoStore) CountByProfile(ctx context.Context, profileID int64) (int, error) {
	return s.count, nil
}

func (s *fakePhotoStore) SetMain(ctx context.Context, profileID, photoID int64) error {
	return pgrepo.ErrPhotoNotFound
}

func (s *fakePhotoStore) Delete(ctx context.Context, photoID int64) (pgrepo.DeletedPhoto, error) {
	return pgrepo.DeletedPhoto{}, pgrepo.ErrPhotoNotFound
}

type fakePhotoProfiles struct{}

func (fakePhotoProfiles) GetByUserID(ctx context.Context, userID int64) (model.Profile, error) {
	return model.Profile{ID: 70, UserID: userID}, nil
}

type discardStorage struct{}

func (discardStorage) Save(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	_, _ = io.Copy(io.Discard, body)
	return "mem://" + key, nil
}

func (discardStorage) Remove(ctx context.Context, url string) error { return nil }

func multipartPhotoBody(t *testing.T, names ...string) ([]byte, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, name := range names {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="photos"; filename="`+name+`"`)
		header.Set("Content-Type", "image/jpeg")
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := io.Copy(part, strings.NewReader("fake jpeg bytes")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf.Bytes(), writer.FormDataContentType()
}

// A full profile's upload must come back as a 409 whose details say how
// many photos the profile already holds, not just a generic message.
func TestPhotoUploadLimitReportsCurrentCount(t *testing.T) {
	store := &fakePhotoStore{count: pgrepo.MaxPhotosPerProfile()}
	service := photosvc.NewService(store, fakePhotoProfiles{}, discardStorage{}, nil)
	handler := NewPhotoHandler(service)
	identity := authsvc.Identity{UserID: 7, SID: "sid", Role: "CLIENT"}

	body, contentType := multipartPhotoBody(t, "one-too-many.jpg")
	req := authedRequest(http.MethodPost, "/profile/photos/upload", body, identity)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	handler.Upload(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	var apiErr httperrors.APIError
	if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if apiErr.Code != "PHOTO_LIMIT_REACHED" {
		t.Fatalf("unexpected error code: %+v", apiErr)
	}
	details, ok := apiErr.Details.(string)
	if !ok || !strings.Contains(details, "already has 10 photos") {
		t.Fatalf("expected count in details, got %+v", apiErr.Details)
	}
}

func TestPhotoUploadWithinLimitSucceeds(t *testing.T) {
	store := &fakePhotoStore{}
	service := photosvc.NewService(store, fakePhotoProfiles{}, discardStorage{}, nil)
	handler := NewPhotoHandler(service)
	identity := authsvc.Identity{UserID: 7, SID: "sid", Role: "CLIENT"}

	body, contentType := multipartPhotoBody(t, "first.jpg")
	req := authedRequest(http.MethodPost, "/profile/photos/upload", body, identity)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	handler.Upload(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.count != 1 {
		t.Fatalf("expected one stored photo, got %d", store.count)
	}
}
