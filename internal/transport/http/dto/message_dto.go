package dto

import (
	"time"

	"github.com/mangala-lk/backend/internal/domain/model"
)

type MessageSendRequest struct {
	ReceiverID int64  `json:"receiver_id"`
	Content    string `json:"content"`
}

type MessageResponse struct {
	MessageID string     `json:"message_id"`
	SenderID  int64      `json:"sender_id"`
	Content   string     `json:"content"`
	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewMessageResponse(m model.Message) MessageResponse {
	return MessageResponse{
		MessageID: m.MessageID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		IsRead:    m.IsRead,
		ReadAt:    m.ReadAt,
		CreatedAt: m.CreatedAt,
	}
}

type ConversationResponse struct {
	ConversationID string            `json:"conversation_id"`
	Participants   []int64           `json:"participants"`
	Messages       []MessageResponse `json:"messages"`
	LastMessageAt  time.Time         `json:"last_message_at"`
}

func NewConversationResponse(c model.Conversation) ConversationResponse {
	messages := make([]MessageResponse, 0, len(c.Messages))
	for _, m := range c.Messages {
		messages = append(messages, NewMessageResponse(m))
	}
	return ConversationResponse{
		ConversationID: c.PairKey,
		Participants:   c.Participants,
		Messages:       messages,
		LastMessageAt:  c.LastMessageAt,
	}
}

type ConversationListResponse struct {
	Conversations []ConversationResponse `json:"conversations"`
}

type MessageSendResponse struct {
	ConversationID string          `json:"conversation_id"`
	Message        MessageResponse `json:"message"`
}
