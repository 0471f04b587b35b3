package handlers

import (
	"context"
	"net/http"

	authsvc "github.com/mangala-lk/backend/internal/services/auth"
	usersvc "github.com/mangala-lk/backend/internal/services/users"
	"github.com/mangala-lk/backend/internal/transport/http/dto"
	httperrors "github.com/mangala-lk/backend/internal/transport/http/errors"
)

// AdminHandler serves the moderation endpoints. The route table mounts it
// behind the ADMIN role check.
type AdminHandler struct {
	service *usersvc.Service
}

func NewAdminHandler(service *usersvc.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	userID, ok := pathID(r, "userID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	user, err := h.service.Get(r.Context(), userID)
	if err != nil {
		handleUserError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewUserResponse(user))
}

func (h *AdminHandler) SuspendUser(w http.ResponseWriter, r *http.Request) {
	h.userAction(w, r, h.service.Suspend)
}

func (h *AdminHandler) ActivateUser(w http.ResponseWriter, r *http.Request) {
	h.userAction(w, r, h.service.Activate)
}

func (h *AdminHandler) VerifyUser(w http.ResponseWriter, r *http.Request) {
	h.userAction(w, r, h.service.Verify)
}

func (h *AdminHandler) ApproveProfile(w http.ResponseWriter, r *http.Request) {
	h.entityAction(w, r, "profileID", h.service.ApproveProfile)
}

func (h *AdminHandler) RefuseProfile(w http.ResponseWriter, r *http.Request) {
	h.entityAction(w, r, "profileID", h.service.RefuseProfile)
}

func (h *AdminHandler) ApprovePhoto(w http.ResponseWriter, r *http.Request) {
	h.entityAction(w, r, "photoID", h.service.ApprovePhoto)
}

func (h *AdminHandler) userAction(w http.ResponseWriter, r *http.Request, action adminAction) {
	h.entityAction(w, r, "userID", action)
}

type adminAction func(ctx context.Context, adminID, entityID int64) error

func (h *AdminHandler) entityAction(w http.ResponseWriter, r *http.Request, param string, action adminAction) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	entityID, ok := pathID(r, param)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid id")
		return
	}

	if err := action(r.Context(), identity.UserID, entityID); err != nil {
		handleUserError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}
