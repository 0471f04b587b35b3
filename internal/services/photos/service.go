package photos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mangala-lk/backend/internal/domain/enums"
	"github.com/mangala-lk/backend/internal/domain/model"
	pgrepo "github.com/mangala-lk/backend/internal/repo/postgres"
)

const maxPhotoBytes = 5 << 20

var (
	ErrValidation      = errors.New("invalid photo input")
	ErrNotFound        = errors.New("photo not found")
	ErrForbidden       = errors.New("photo does not belong to caller")
	ErrProfileRequired = errors.New("profile required before uploading photos")
	ErrLimitExceeded   = errors.New("photo limit exceeded")
)

var allowedMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type Store interface {
	Create(ctx context.Context, profileID int64, url, originalName string, sizeBytes int64, mimeType string) (model.Photo, error)
	Get(ctx context.Context, photoID int64) (model.Photo, error)
	ListByProfile(ctx context.Context, profileID int64, approvedOnly bool) ([]model.Photo, error)
	CountByProfile(ctx context.Context, profileID int64) (int, error)
	SetMain(ctx context.Context, profileID, photoID int64) error
	Delete(ctx context.Context, photoID int64) (pgrepo.DeletedPhoto, error)
}

type ProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (model.Profile, error)
}

type Storage interface {
	Save(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, url string) error
}

type Service struct {
	store    Store
	profiles ProfileStore
	storage  Storage
	logger   *zap.Logger
}

func NewService(store Store, profiles ProfileStore, storage Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, profiles: profiles, storage: storage, logger: logger}
}

type UploadFile struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

type SkippedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type UploadResult struct {
	Saved   []model.Photo `json:"saved"`
	Skipped []SkippedFile `json:"skipped,omitempty"`
}

// Upload stores a batch of photos for the caller's profile. The whole
// batch is rejected when it would push the profile past the photo cap;
// individual files that fail type or size checks are skipped and
// reported, and the rest still go through.
func (s *Service) Upload(ctx context.Context, userID int64, files []UploadFile) (UploadResult, error) {
	if s.store == nil || s.profiles == nil || s.storage == nil {
		return UploadResult{}, fmt.Errorf("photo dependencies are not configured")
	}
	if len(files) == 0 {
		return UploadResult{}, fmt.Errorf("no files in upload: %w", ErrValidation)
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return UploadResult{}, ErrProfileRequired
		}
		return UploadResult{}, fmt.Errorf("get profile: %w", err)
	}

	existing, err := s.store.CountByProfile(ctx, profile.ID)
	if err != nil {
		return UploadResult{}, fmt.Errorf("count photos: %w", err)
	}
	if existing+len(files) > pgrepo.MaxPhotosPerProfile() {
		return UploadResult{}, fmt.Errorf("profile already has %d photos: %w", existing, ErrLimitExceeded)
	}

	var result UploadResult
	for _, f := range files {
		ext, ok := allowedMimeTypes[strings.ToLower(f.ContentType)]
		if !ok {
			result.Skipped = append(result.Skipped, SkippedFile{Name: f.Name, Reason: "unsupported file type"})
			continue
		}
		if f.Size <= 0 || f.Size > maxPhotoBytes {
			result.Skipped = append(result.Skipped, SkippedFile{Name: f.Name, Reason: "file exceeds 5MB limit"})
			continue
		}

		key := fmt.Sprintf("profiles/%d/%s%s", userID, uuid.NewString(), ext)
		url, err := s.storage.Save(ctx, key, f.Body, f.Size, f.ContentType)
		if err != nil {
			return result, fmt.Errorf("store photo file: %w", err)
		}

		photo, err := s.store.Create(ctx, profile.ID, url, sanitizeName(f.Name), f.Size, strings.ToLower(f.ContentType))
		if err != nil {
			if removeErr := s.storage.Remove(ctx, url); removeErr != nil {
				s.logger.Warn("orphan photo file left behind", zap.String("url", url), zap.Error(removeErr))
			}
			if errors.Is(err, pgrepo.ErrPhotoLimitReached) {
				return result, ErrLimitExceeded
			}
			return result, fmt.Errorf("create photo record: %w", err)
		}

		result.Saved = append(result.Saved, photo)
	}

	return result, nil
}

// List returns a profile's photos. Members other than the owner only see
// approved ones.
func (s *Service) List(ctx context.Context, viewerID int64, viewerRole enums.Role, ownerUserID int64) ([]model.Photo, error) {
	profile, err := s.profiles.GetByUserID(ctx, ownerUserID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	approvedOnly := viewerID != ownerUserID && viewerRole != enums.RoleAdmin
	photos, err := s.store.ListByProfile(ctx, profile.ID, approvedOnly)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}

	return photos, nil
}

func (s *Service) SetMain(ctx context.Context, userID, photoID int64) error {
	profile, photo, err := s.ownedPhoto(ctx, userID, photoID)
	if err != nil {
		return err
	}

	if err := s.store.SetMain(ctx, profile.ID, photo.ID); err != nil {
		if errors.Is(err, pgrepo.ErrPhotoNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("set main photo: %w", err)
	}

	return nil
}

// Delete removes a photo record and then its file. The file removal is
// best effort: the record is already gone, so a storage failure only
// leaves an orphan file behind.
func (s *Service) Delete(ctx context.Context, userID int64, isAdmin bool, photoID int64) error {
	photo, err := s.store.Get(ctx, photoID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPhotoNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get photo: %w", err)
	}

	if !isAdmin {
		profile, err := s.profiles.GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrProfileNotFound) {
				return ErrForbidden
			}
			return fmt.Errorf("get profile: %w", err)
		}
		if photo.ProfileID != profile.ID {
			return ErrForbidden
		}
	}

	deleted, err := s.store.Delete(ctx, photoID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPhotoNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete photo: %w", err)
	}

	if err := s.storage.Remove(ctx, deleted.Photo.URL); err != nil {
		s.logger.Warn("photo file not removed", zap.String("url", deleted.Photo.URL), zap.Error(err))
	}

	return nil
}

func (s *Service) ownedPhoto(ctx context.Context, userID, photoID int64) (model.Profile, model.Photo, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Profile{}, model.Photo{}, ErrForbidden
		}
		return model.Profile{}, model.Photo{}, fmt.Errorf("get profile: %w", err)
	}

	photo, err := s.store.Get(ctx, photoID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPhotoNotFound) {
			return model.Profile{}, model.Photo{}, ErrNotFound
		}
		return model.Profile{}, model.Photo{}, fmt.Errorf("get photo: %w", err)
	}

	if photo.ProfileID != profile.ID {
		return model.Profile{}, model.Photo{}, ErrForbidden
	}

	return profile, photo, nil
}

func sanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
