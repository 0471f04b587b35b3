package dto

import (
	"time"

	"github.com/mangala-lk/backend/internal/domain/model"
)

type NotificationCreateRequest struct {
	UserID    int64  `json:"user_id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Link      string `json:"link"`
	RelatedID string `json:"related_id"`
}

type NotificationMarkReadRequest struct {
	IDs []string `json:"ids"`
}

type NotificationResponse struct {
	NotificationID string     `json:"notification_id"`
	Type           string     `json:"type"`
	Title          string     `json:"title"`
	Content        string    `json:"content,omitempty"`
	Link           string    `json:"link,omitempty"`
	RelatedID      string    `json:"related_id,omitempty"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewNotificationResponse(item model.NotificationItem) NotificationResponse {
	return NotificationResponse{
		NotificationID: item.NotificationID,
		Type:           string(item.Type),
		Title:          item.Title,
		Content:        item.Content,
		Link:           item.Link,
		RelatedID:      item.RelatedID,
		IsRead:         item.IsRead,
		CreatedAt:      item.CreatedAt,
	}
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int                    `json:"unread_count"`
	Total         int                    `json:"total"`
}

type NotificationMarkReadResponse struct {
	UnreadCount int `json:"unread_count"`
}
