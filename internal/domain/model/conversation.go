package model

import "time"

// Conversation is a document-store thread between exactly two users.
// PairKey is derived from the sorted participant ids, so a pair maps to a
// single document regardless of who wrote first.
type Conversation struct {
	PairKey       string    `bson:"pair_key" json:"pair_key"`
	Participants  []int64   `bson:"participants" json:"participants"`
	Messages      []Message `bson:"messages" json:"messages"`
	LastMessageAt time.Time `bson:"last_message_at" json:"last_message_at"`
	IsActive      bool      `bson:"is_active" json:"is_active"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

type Message struct {
	MessageID   string     `bson:"message_id" json:"message_id"`
	SenderID    int64      `bson:"sender_id" json:"sender_id"`
	Content     string     `bson:"content" json:"content"`
	Attachments []string   `bson:"attachments,omitempty" json:"attachments,omitempty"`
	IsRead      bool       `bson:"is_read" json:"is_read"`
	ReadAt      *time.Time `bson:"read_at,omitempty" json:"read_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
}
