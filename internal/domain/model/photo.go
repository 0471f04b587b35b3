package model

import "time"

type Photo struct {
	ID           int64     `json:"id"`
	ProfileID    int64     `json:"profile_id"`
	URL          string    `json:"url"`
	IsMain       bool      `json:"is_main"`
	IsApproved   bool      `json:"is_approved"`
	OriginalName string    `json:"original_name"`
	SizeBytes    int64     `json:"size_bytes"`
	MimeType     string    `json:"mime_type"`
	CreatedAt    time.Time `json:"created_at"`
}
