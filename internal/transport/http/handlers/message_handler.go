package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/mangala-lk/backend/internal/services/auth"
	convsvc "github.com/mangala-lk/backend/internal/services/conversations"
	"github.com/mangala-lk/backend/internal/transport/http/dto"
	httperrors "github.com/mangala-lk/backend/internal/transport/http/errors"
)

type MessageHandler struct {
	service *convsvc.Service
}

func NewMessageHandler(service *convsvc.Service) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGE_SERVICE_UNAVAILABLE", "message service is unavailable")
		return
	}

	limit := queryIntOrDefault(r, "limit", 20)
	conversations, err := h.service.List(r.Context(), identity.UserID, limit)
	if err != nil {
		handleMessageError(w, err)
		return
	}

	items := make([]dto.ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		items = append(items, dto.NewConversationResponse(c))
	}

	httperrors.Write(w, http.StatusOK, dto.ConversationListResponse{Conversations: items})
}

func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGE_SERVICE_UNAVAILABLE", "message service is unavailable")
		return
	}

	conversationID := chi.URLParam(r, "conversationID")
	if conversationID == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid conversation id")
		return
	}

	conversation, err := h.service.Get(r.Context(), identity.UserID, conversationID)
	if err != nil {
		handleMessageError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewConversationResponse(conversation))
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGE_SERVICE_UNAVAILABLE", "message service is unavailable")
		return
	}

	var req dto.MessageSendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	res, err := h.service.Send(r.Context(), identity.UserID, req.ReceiverID, req.Content)
	if err != nil {
		handleMessageError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.MessageSendResponse{
		ConversationID: res.PairKey,
		Message:        dto.NewMessageResponse(res.Message),
	})
}

func handleMessageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, convsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid message request")
	case errors.Is(err, convsvc.ErrReceiverUnavailable):
		writeConflict(w, "RECEIVER_UNAVAILABLE", "receiver cannot be messaged")
	case errors.Is(err, convsvc.ErrNotFound):
		writeNotFound(w, "CONVERSATION_NOT_FOUND", "conversation not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
