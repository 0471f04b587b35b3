package model

import (
	"time"

	"github.com/mangala-lk/backend/internal/domain/enums"
)

type Proposal struct {
	ID          int64                `json:"id"`
	SenderID    int64                `json:"sender_id"`
	ReceiverID  int64                `json:"receiver_id"`
	Status      enums.ProposalStatus `json:"status"`
	Message     string               `json:"message"`
	CreatedAt   time.Time            `json:"created_at"`
	RespondedAt *time.Time           `json:"responded_at"`
}
