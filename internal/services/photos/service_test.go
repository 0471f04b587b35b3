package photos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/mangala-lk/backend/internal/domain/enums"
	"github.com/mangala-lk/backend/internal/domain/model"
	pgrepo "github.com/mangala-lk/backend/internal/repo/postgres"
)

type stubPhotoStore struct {
	photos map[int64]model.Photo
	nextID int64
}

func newStubPhotoStore() *stubPhotoStore {
	return &stubPhotoStore{photos: map[int64]model.Photo{}, nextID: 1}
}

func (s *stubPhotoStore) Create(ctx context.Context, profileID int64, url, originalName string, sizeBytes int64, mimeType string) (model.Photo, error) {
	count := 0
	for _, p := range s.photos {
		if p.ProfileID == profileID {
			count++
		}
	}
	if count >= pgrepo.MaxPhotosPerProfile() {
		return model.Photo{}, pgrepo.ErrPhotoLimitReached
	}
	photo := model.Photo{
		ID:           s.nextID,
		ProfileID:    profileID,
		URL:          url,
		IsMain:       count == 0,
		OriginalName: originalName,
		SizeBytes:    sizeBytes,
		MimeType:     mimeType,
	}
	s.nextID++
	s.photos[photo.ID] = photo
	return photo, nil
}

func (s *stubPhotoStore) Get(ctx context.Context, photoID int64) (model.Photo, error) {
	p, ok := s.photos[photoID]
	if !ok {
		return model.Photo{}, pgrepo.ErrPhotoNotFound
	}
	return p, nil
}

func (s *stubPhotoStore) ListByProfile(ctx context.Context, profileID int64, approvedOnly bool) ([]model.Photo, error) {
	var out []model.Photo
	for _, p := range s.photos {
		if p.ProfileID != profileID {
			continue
		}
		if approvedOnly && !p.IsApproved {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *stubPhotoStore) CountByProfile(ctx context.Context, profileID int64) (int, error) {
	count := 0
	for _, p := range s.photos {
		if p.ProfileID == profileID {
			count++
		}
	}
	return count, nil
}

func (s *stubPhotoStore) SetMain(ctx context.Context, profileID, photoID int64) error {
	target, ok := s.photos[photoID]
	if !ok || target.ProfileID != profileID {
		return pgrepo.ErrPhotoNotFound
	}
	for id, p := range s.photos {
		if p.ProfileID == profileID {
			p.IsMain = id == photoID
			s.photos[id] = p
		}
	}
	return nil
}

func (s *stubPhotoStore) Delete(ctx context.Context, photoID int64) (pgrepo.DeletedPhoto, error) {
	p, ok := s.photos[photoID]
	if !ok {
		return pgrepo.DeletedPhoto{}, pgrepo.ErrPhotoNotFound
	}
	delete(s.photos, photoID)
	return pgrepo.DeletedPhoto{Photo: p}, nil
}

type stubProfileStore struct {
	profiles map[int64]model.Profile
}

func (s *stubProfileStore) GetByUserID(ctx context.Context, userID int64) (model.Profile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	return p, nil
}

type memStorage struct {
	files   map[string][]byte
	removed []string
}

func newMemStorage() *memStorage {
	return &memStorage{files: map[string][]byte{}}
}

func (s *memStorage) Save(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	url := "mem://" + key
	s.files[url] = data
	return url, nil
}

func (s *memStorage) Remove(ctx context.Context, url string) error {
	delete(s.files, url)
	s.removed = append(s.removed, url)
	return nil
}

func newServiceForTest() (*Service, *stubPhotoStore, *memStorage) {
	store := newStubPhotoStore()
	profiles := &stubProfileStore{profiles: map[int64]model.Profile{
		7: {ID: 70, UserID: 7},
		8: {ID: 80, UserID: 8},
	}}
	storage := newMemStorage()
	return NewService(store, profiles, storage, nil), store, storage
}

func jpegFile(name string) UploadFile {
	return UploadFile{Name: name, Size: 1024, ContentType: "image/jpeg", Body: strings.NewReader("fake jpeg bytes")}
}

func TestUploadFirstPhotoBecomesMain(t *testing.T) {
	svc, _, storage := newServiceForTest()

	res, err := svc.Upload(context.Background(), 7, []UploadFile{jpegFile("a.jpg"), jpegFile("b.jpg")})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(res.Saved) != 2 {
		t.Fatalf("expected 2 saved, got %d", len(res.Saved))
	}
	if !res.Saved[0].IsMain || res.Saved[1].IsMain {
		t.Fatalf("expected only the first photo to be main: %+v", res.Saved)
	}
	if len(storage.files) != 2 {
		t.Fatalf("expected 2 stored files, got %d", len(storage.files))
	}
}

func TestUploadSkipsBadFiles(t *testing.T) {
	svc, _, _ := newServiceForTest()

	files := []UploadFile{
		jpegFile("ok.jpg"),
		{Name: "notes.txt", Size: 100, ContentType: "text/plain", Body: strings.NewReader("x")},
		{Name: "huge.png", Size: maxPhotoBytes + 1, ContentType: "image/png", Body: strings.NewReader("x")},
	}
	res, err := svc.Upload(context.Background(), 7, files)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(res.Saved) != 1 || len(res.Skipped) != 2 {
		t.Fatalf("expected 1 saved / 2 skipped, got %d / %d", len(res.Saved), len(res.Skipped))
	}
}

func TestUploadRejectsBatchOverCap(t *testing.T) {
	svc, _, _ := newServiceForTest()
	ctx := context.Background()

	var first []UploadFile
	for i := 0; i < 9; i++ {
		first = append(first, jpegFile(fmt.Sprintf("p%d.jpg", i)))
	}
	if _, err := svc.Upload(ctx, 7, first); err != nil {
		t.Fatalf("seed upload: %v", err)
	}

	// 9 existing + 2 new would exceed the cap of 10: reject the batch.
	if _, err := svc.Upload(ctx, 7, []UploadFile{jpegFile("x.jpg"), jpegFile("y.jpg")}); !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}

	// A single file still fits.
	res, err := svc.Upload(ctx, 7, []UploadFile{jpegFile("last.jpg")})
	if err != nil {
		t.Fatalf("final upload: %v", err)
	}
	if len(res.Saved) != 1 {
		t.Fatalf("expected 1 saved, got %d", len(res.Saved))
	}
}

func TestUploadWithoutProfile(t *testing.T) {
	svc, _, _ := newServiceForTest()

	if _, err := svc.Upload(context.Background(), 99, []UploadFile{jpegFile("a.jpg")}); !errors.Is(err, ErrProfileRequired) {
		t.Fatalf("expected ErrProfileRequired, got %v", err)
	}
}

func TestSetMainOwnership(t *testing.T) {
	svc, _, _ := newServiceForTest()
	ctx := context.Background()

	res, err := svc.Upload(ctx, 7, []UploadFile{jpegFile("a.jpg"), jpegFile("b.jpg")})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	second := res.Saved[1].ID

	if err := svc.SetMain(ctx, 8, second); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for another user, got %v", err)
	}
	if err := svc.SetMain(ctx, 7, second); err != nil {
		t.Fatalf("set main: %v", err)
	}
}

func TestDeleteRemovesFile(t *testing.T) {
	svc, store, storage := newServiceForTest()
	ctx := context.Background()

	res, err := svc.Upload(ctx, 7, []UploadFile{jpegFile("a.jpg")})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	photo := res.Saved[0]

	if err := svc.Delete(ctx, 8, false, photo.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if err := svc.Delete(ctx, 7, false, photo.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.photos[photo.ID]; ok {
		t.Fatal("expected photo record removed")
	}
	if len(storage.removed) != 1 || storage.removed[0] != photo.URL {
		t.Fatalf("expected file removed, got %v", storage.removed)
	}

	if err := svc.Delete(ctx, 7, false, photo.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListApprovedOnlyForOthers(t *testing.T) {
	svc, store, _ := newServiceForTest()
	ctx := context.Background()

	res, err := svc.Upload(ctx, 7, []UploadFile{jpegFile("a.jpg"), jpegFile("b.jpg")})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	approved := store.photos[res.Saved[0].ID]
	approved.IsApproved = true
	store.photos[approved.ID] = approved

	own, err := svc.List(ctx, 7, enums.RoleClient, 7)
	if err != nil {
		t.Fatalf("owner list: %v", err)
	}
	if len(own) != 2 {
		t.Fatalf("owner should see all photos, got %d", len(own))
	}

	other, err := svc.List(ctx, 8, enums.RoleClient, 7)
	if err != nil {
		t.Fatalf("member list: %v", err)
	}
	if len(other) != 1 || !other[0].IsApproved {
		t.Fatalf("member should only see approved photos, got %+v", other)
	}
}
