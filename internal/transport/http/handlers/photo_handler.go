package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/mangala-lk/backend/internal/services/auth"
	photosvc "github.com/mangala-lk/backend/internal/services/photos"
	"github.com/mangala-lk/backend/internal/transport/http/dto"
	httperrors "github.com/mangala-lk/backend/internal/transport/http/errors"
)

// Ten photos of 5MB each plus form overhead.
const maxPhotoUploadSize = 55 << 20

type PhotoHandler struct {
	service *photosvc.Service
}

func NewPhotoHandler(service *photosvc.Service) *PhotoHandler {
	return &PhotoHandler{service: service}
}

func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PHOTO_SERVICE_UNAVAILABLE", "photo service is unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoUploadSize)
	if err := r.ParseMultipartForm(maxPhotoUploadSize); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	headers := r.MultipartForm.File["photos"]
	if len(headers) == 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "photos field is required")
		return
	}

	files := make([]photosvc.UploadFile, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			writeBadRequest(w, "VALIDATION_ERROR", "unreadable file in upload")
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		files = append(files, photosvc.UploadFile{
			Name:        header.Filename,
			Size:        header.Size,
			ContentType: contentType,
			Body:        file,
		})
	}

	res, err := h.service.Upload(r.Context(), identity.UserID, files)
	if err != nil {
		handlePhotoError(w, err)
		return
	}

	saved := make([]dto.PhotoResponse, 0, len(res.Saved))
	for _, photo := range res.Saved {
		saved = append(saved, dto.NewPhotoResponse(photo))
	}

	httperrors.Write(w, http.StatusCreated, dto.PhotoUploadResponse{Saved: saved, Skipped: res.Skipped})
}

func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PHOTO_SERVICE_UNAVAILABLE", "photo service is unavailable")
		return
	}

	ownerID, ok := pathID(r, "userID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	photos, err := h.service.List(r.Context(), identity.UserID, identity.Role, ownerID)
	if err != nil {
		handlePhotoError(w, err)
		return
	}

	items := make([]dto.PhotoResponse, 0, len(photos))
	for _, photo := range photos {
		items = append(items, dto.NewPhotoResponse(photo))
	}

	httperrors.Write(w, http.StatusOK, dto.PhotoListResponse{Photos: items})
}

func (h *PhotoHandler) SetMain(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PHOTO_SERVICE_UNAVAILABLE", "photo service is unavailable")
		return
	}

	photoID, ok := pathID(r, "photoID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid photo id")
		return
	}

	if err := h.service.SetMain(r.Context(), identity.UserID, photoID); err != nil {
		handlePhotoError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PHOTO_SERVICE_UNAVAILABLE", "photo service is unavailable")
		return
	}

	photoID, ok := pathID(r, "photoID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid photo id")
		return
	}

	isAdmin := identity.IsAdmin()
	if err := h.service.Delete(r.Context(), identity.UserID, isAdmin, photoID); err != nil {
		handlePhotoError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func handlePhotoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, photosvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid photo request")
	case errors.Is(err, photosvc.ErrProfileRequired):
		writeBadRequest(w, "PROFILE_REQUIRED", "create a profile before uploading photos")
	case errors.Is(err, photosvc.ErrLimitExceeded):
		// The service wraps the sentinel with how full the profile
		// already is; pass that on instead of a generic message.
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code:    "PHOTO_LIMIT_REACHED",
			Message: "photo limit reached",
			Details: err.Error(),
		})
	case errors.Is(err, photosvc.ErrForbidden):
		writeForbidden(w, "FORBIDDEN", "photo does not belong to caller")
	case errors.Is(err, photosvc.ErrNotFound):
		writeNotFound(w, "PHOTO_NOT_FOUND", "photo not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
