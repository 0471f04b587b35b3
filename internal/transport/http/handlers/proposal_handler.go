package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/mangala-lk/backend/internal/domain/model"
	authsvc "github.com/mangala-lk/backend/internal/services/auth"
	proposalsvc "github.com/mangala-lk/backend/internal/services/proposals"
	"github.com/mangala-lk/backend/internal/transport/http/dto"
	httperrors "github.com/mangala-lk/backend/internal/transport/http/errors"
)

type ProposalHandler struct {
	service *proposalsvc.Service
}

func NewProposalHandler(service *proposalsvc.Service) *ProposalHandler {
	return &ProposalHandler{service: service}
}

func (h *ProposalHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROPOSAL_SERVICE_UNAVAILABLE", "proposal service is unavailable")
		return
	}

	var req dto.ProposalSendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	proposal, err := h.service.Send(r.Context(), identity.UserID, req.ReceiverID, req.Message)
	if err != nil {
		handleProposalError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.NewProposalResponse(proposal))
}

func (h *ProposalHandler) Respond(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROPOSAL_SERVICE_UNAVAILABLE", "proposal service is unavailable")
		return
	}

	proposalID, ok := pathID(r, "proposalID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid proposal id")
		return
	}

	var req dto.ProposalRespondRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	proposal, err := h.service.Respond(r.Context(), identity.UserID, proposalID, req.Accept)
	if err != nil {
		handleProposalError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewProposalResponse(proposal))
}

func (h *ProposalHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROPOSAL_SERVICE_UNAVAILABLE", "proposal service is unavailable")
		return
	}

	proposalID, ok := pathID(r, "proposalID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid proposal id")
		return
	}

	proposal, err := h.service.Withdraw(r.Context(), identity.UserID, proposalID)
	if err != nil {
		handleProposalError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewProposalResponse(proposal))
}

// List dispatches on the box query parameter; received is the default.
func (h *ProposalHandler) List(w http.ResponseWriter, r *http.Request) {
	switch box := r.URL.Query().Get("box"); box {
	case "", "received":
		h.ListReceived(w, r)
	case "sent":
		h.ListSent(w, r)
	default:
		writeBadRequest(w, "VALIDATION_ERROR", "box must be sent or received")
	}
}

func (h *ProposalHandler) ListSent(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListSent)
}

func (h *ProposalHandler) ListReceived(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListReceived)
}

func (h *ProposalHandler) list(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context, userID int64, limit, offset int) ([]model.Proposal, error)) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROPOSAL_SERVICE_UNAVAILABLE", "proposal service is unavailable")
		return
	}

	limit := queryIntOrDefault(r, "limit", 20)
	offset := queryIntOrDefault(r, "offset", 0)

	proposals, err := fetch(r.Context(), identity.UserID, limit, offset)
	if err != nil {
		handleProposalError(w, err)
		return
	}

	items := make([]dto.ProposalResponse, 0, len(proposals))
	for _, p := range proposals {
		items = append(items, dto.NewProposalResponse(p))
	}

	httperrors.Write(w, http.StatusOK, dto.ProposalListResponse{Proposals: items})
}

func handleProposalError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, proposalsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid proposal request")
	case errors.Is(err, proposalsvc.ErrDuplicate):
		writeConflict(w, "PROPOSAL_EXISTS", "an open proposal already exists for this pair")
	case errors.Is(err, proposalsvc.ErrAlreadyResponded):
		writeConflict(w, "PROPOSAL_CLOSED", "proposal is no longer open")
	case errors.Is(err, proposalsvc.ErrForbidden):
		writeForbidden(w, "FORBIDDEN", "proposal does not involve caller")
	case errors.Is(err, proposalsvc.ErrReceiverUnavailable):
		writeConflict(w, "RECEIVER_UNAVAILABLE", "receiver cannot accept proposals")
	case errors.Is(err, proposalsvc.ErrNotFound):
		writeNotFound(w, "PROPOSAL_NOT_FOUND", "proposal not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
