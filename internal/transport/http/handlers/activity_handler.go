package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	mongorepo "github.com/mangala-lk/backend/internal/repo/mongodb"
	activitysvc "github.com/mangala-lk/backend/internal/services/activity"
	authsvc "github.com/mangala-lk/backend/internal/services/auth"
	"github.com/mangala-lk/backend/internal/transport/http/dto"
	httperrors "github.com/mangala-lk/backend/internal/transport/http/errors"
)

type ActivityHandler struct {
	service *activitysvc.Service
}

func NewActivityHandler(service *activitysvc.Service) *ActivityHandler {
	return &ActivityHandler{service: service}
}

func (h *ActivityHandler) Log(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "ACTIVITY_SERVICE_UNAVAILABLE", "activity service is unavailable")
		return
	}

	var req dto.ActivityLogRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	entry, err := h.service.Log(r.Context(), identity.UserID, activitysvc.LogInput{
		Action:     req.Action,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Details:    req.Details,
		IPAddress:  r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	})
	if err != nil {
		handleActivityError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.NewActivityEntryResponse(entry))
}

// Query is admin-only; the route table enforces the role.
func (h *ActivityHandler) Query(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "ACTIVITY_SERVICE_UNAVAILABLE", "activity service is unavailable")
		return
	}

	filter := mongorepo.ActivityFilter{
		Action:     r.URL.Query().Get("action"),
		EntityType: r.URL.Query().Get("entity_type"),
		Skip:       queryIntOrDefault(r, "skip", 0),
		Limit:      queryIntOrDefault(r, "limit", 50),
	}
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid user_id filter")
			return
		}
		filter.UserID = userID
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeBadRequest(w, "VALIDATION_ERROR", "from must be RFC3339")
			return
		}
		filter.From = from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeBadRequest(w, "VALIDATION_ERROR", "to must be RFC3339")
			return
		}
		filter.To = to
	}

	entries, err := h.service.AdminQuery(r.Context(), filter)
	if err != nil {
		handleActivityError(w, err)
		return
	}

	items := make([]dto.ActivityEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewActivityEntryResponse(entry))
	}

	httperrors.Write(w, http.StatusOK, dto.ActivityListResponse{Entries: items})
}

func handleActivityError(w http.ResponseWriter, err error) {
	if errors.Is(err, activitysvc.ErrValidation) {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid activity request")
		return
	}
	writeInternal(w, "INTERNAL_ERROR", "internal server error")
}
