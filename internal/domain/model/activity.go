package model

import "time"

// ActivityEntry is a write-once audit record. EventID deduplicates outbox
// replays; entries written directly through the API get a fresh one.
type ActivityEntry struct {
	EventID    string         `bson:"event_id" json:"event_id"`
	UserID     int64          `bson:"user_id" json:"user_id"`
	Action     string         `bson:"action" json:"action"`
	EntityType string         `bson:"entity_type" json:"entity_type"`
	EntityID   string         `bson:"entity_id,omitempty" json:"entity_id,omitempty"`
	Details    map[string]any `bson:"details,omitempty" json:"details,omitempty"`
	IPAddress  string         `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent  string         `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	CreatedAt  time.Time      `bson:"created_at" json:"created_at"`
}
