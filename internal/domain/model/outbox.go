package model

import (
	"encoding/json"
	"time"
)

// Outbox kinds. Each kind maps to one idempotent document-store write.
const (
	OutboxKindNotification = "notification.create"
	OutboxKindActivity     = "activity.log"
)

type OutboxEvent struct {
	ID            int64           `json:"id"`
	EventID       string          `json:"event_id"`
	Kind          string          `json:"kind"`
	Payload       json.RawMessage `json:"payload"`
	Attempts      int             `json:"attempts"`
	NextAttemptAt time.Time       `json:"next_attempt_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NotificationPayload is the outbox payload for OutboxKindNotification.
type NotificationPayload struct {
	UserID int64            `json:"user_id"`
	Item   NotificationItem `json:"item"`
}
