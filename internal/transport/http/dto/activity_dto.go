package dto

import (
	"time"

	"github.com/mangala-lk/backend/internal/domain/model"
)

type ActivityLogRequest struct {
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Details    map[string]any `json:"details"`
}

type ActivityEntryResponse struct {
	EventID    string         `json:"event_id"`
	UserID     int64          `json:"user_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type,omitempty"`
	EntityID   string         `json:"entity_id,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	IPAddress  string         `json:"ip_address,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func NewActivityEntryResponse(e model.ActivityEntry) ActivityEntryResponse {
	return ActivityEntryResponse{
		EventID:    e.EventID,
		UserID:     e.UserID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Details:    e.Details,
		IPAddress:  e.IPAddress,
		UserAgent:  e.UserAgent,
		CreatedAt:  e.CreatedAt,
	}
}

type ActivityListResponse struct {
	Entries []ActivityEntryResponse `json:"entries"`
}
