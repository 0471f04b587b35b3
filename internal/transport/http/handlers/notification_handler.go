package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/mangala-lk/backend/internal/services/auth"
	notifsvc "github.com/mangala-lk/backend/internal/services/notifications"
	"github.com/mangala-lk/backend/internal/transport/http/dto"
	httperrors "github.com/mangala-lk/backend/internal/transport/http/errors"
)

type NotificationHandler struct {
	service *notifsvc.Service
}

func NewNotificationHandler(service *notifsvc.Service) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "NOTIFICATION_SERVICE_UNAVAILABLE", "notification service is unavailable")
		return
	}

	skip := queryIntOrDefault(r, "skip", 0)
	limit := queryIntOrDefault(r, "limit", 20)

	page, err := h.service.List(r.Context(), identity.UserID, skip, limit)
	if err != nil {
		handleNotificationError(w, err)
		return
	}

	items := make([]dto.NotificationResponse, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, dto.NewNotificationResponse(item))
	}

	httperrors.Write(w, http.StatusOK, dto.NotificationListResponse{
		Notifications: items,
		UnreadCount:   page.UnreadCount,
		Total:         page.Total,
	})
}

// Create is admin-only; the route table enforces the role.
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "NOTIFICATION_SERVICE_UNAVAILABLE", "notification service is unavailable")
		return
	}

	var req dto.NotificationCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	item, err := h.service.Create(r.Context(), notifsvc.CreateInput{
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     req.Title,
		Content:   req.Content,
		Link:      req.Link,
		RelatedID: req.RelatedID,
	})
	if err != nil {
		handleNotificationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.NewNotificationResponse(item))
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "NOTIFICATION_SERVICE_UNAVAILABLE", "notification service is unavailable")
		return
	}

	var req dto.NotificationMarkReadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	unread, err := h.service.MarkRead(r.Context(), identity.UserID, req.IDs)
	if err != nil {
		handleNotificationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NotificationMarkReadResponse{UnreadCount: unread})
}

func handleNotificationError(w http.ResponseWriter, err error) {
	if errors.Is(err, notifsvc.ErrValidation) {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid notification request")
		return
	}
	writeInternal(w, "INTERNAL_ERROR", "internal server error")
}
