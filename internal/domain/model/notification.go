package model

import (
	"time"

	"github.com/mangala-lk/backend/internal/domain/enums"
)

// NotificationDoc is the single per-user document embedding all of that
// user's notifications. UnreadCount is recomputed inside the same update
// that mutates Items, never incremented blindly.
type NotificationDoc struct {
	UserID        int64              `bson:"user_id" json:"user_id"`
	Items         []NotificationItem `bson:"items" json:"items"`
	UnreadCount   int                `bson:"unread_count" json:"unread_count"`
	LastUpdatedAt time.Time          `bson:"last_updated_at" json:"last_updated_at"`
}

type NotificationItem struct {
	NotificationID string                 `bson:"notification_id" json:"notification_id"`
	EventID        string                 `bson:"event_id,omitempty" json:"-"`
	Type           enums.NotificationType `bson:"type" json:"type"`
	Title          string                 `bson:"title" json:"title"`
	Content        string                 `bson:"content" json:"content"`
	Link           string                 `bson:"link,omitempty" json:"link,omitempty"`
	RelatedID      string                 `bson:"related_id,omitempty" json:"related_id,omitempty"`
	IsRead         bool                   `bson:"is_read" json:"is_read"`
	CreatedAt      time.Time              `bson:"created_at" json:"created_at"`
}
