package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/mangala-lk/backend/internal/services/auth"
	usersvc "github.com/mangala-lk/backend/internal/services/users"
	"github.com/mangala-lk/backend/internal/transport/http/dto"
	httperrors "github.com/mangala-lk/backend/internal/transport/http/errors"
)

type UserHandler struct {
	service *usersvc.Service
}

func NewUserHandler(service *usersvc.Service) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Summary(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	summary, err := h.service.GetSummary(r.Context(), identity.UserID)
	if err != nil {
		handleUserError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UserSummaryResponse{
		User:                dto.NewUserResponse(summary.User),
		UnreadNotifications: summary.UnreadNotifications,
		UnreadMessages:      summary.UnreadMessages,
	})
}

func handleUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usersvc.ErrNotFound):
		writeNotFound(w, "USER_NOT_FOUND", "user not found")
	case errors.Is(err, usersvc.ErrProfileNotFound):
		writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
	case errors.Is(err, usersvc.ErrPhotoNotFound):
		writeNotFound(w, "PHOTO_NOT_FOUND", "photo not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
