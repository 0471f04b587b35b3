package dto

import (
	"time"

	"github.com/mangala-lk/backend/internal/domain/model"
)

type ProposalSendRequest struct {
	ReceiverID int64  `json:"receiver_id"`
	Message    string `json:"message"`
}

type ProposalRespondRequest struct {
	Accept bool `json:"accept"`
}

type ProposalResponse struct {
	ID          int64      `json:"id"`
	SenderID    int64      `json:"sender_id"`
	ReceiverID  int64      `json:"receiver_id"`
	Status      string     `json:"status"`
	Message     string     `json:"message,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

func NewProposalResponse(p model.Proposal) ProposalResponse {
	return ProposalResponse{
		ID:          p.ID,
		SenderID:    p.SenderID,
		ReceiverID:  p.ReceiverID,
		Status:      string(p.Status),
		Message:     p.Message,
		CreatedAt:   p.CreatedAt,
		RespondedAt: p.RespondedAt,
	}
}

type ProposalListResponse struct {
	Proposals []ProposalResponse `json:"proposals"`
}
