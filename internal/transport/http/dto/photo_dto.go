package dto

import (
	"time"

	"github.com/mangala-lk/backend/internal/domain/model"
	photosvc "github.com/mangala-lk/backend/internal/services/photos"
)

type PhotoResponse struct {
	ID           int64     `json:"id"`
	URL          string    `json:"url"`
	IsMain       bool      `json:"is_main"`
	IsApproved   bool      `json:"is_approved"`
	OriginalName string    `json:"original_name,omitempty"`
	SizeBytes    int64     `json:"size_bytes"`
	MimeType     string    `json:"mime_type"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewPhotoResponse(p model.Photo) PhotoResponse {
	return PhotoResponse{
		ID:           p.ID,
		URL:          p.URL,
		IsMain:       p.IsMain,
		IsApproved:   p.IsApproved,
		OriginalName: p.OriginalName,
		SizeBytes:    p.SizeBytes,
		MimeType:     p.MimeType,
		CreatedAt:    p.CreatedAt,
	}
}

type PhotoUploadResponse struct {
	Saved   []PhotoResponse        `json:"saved"`
	Skipped []photosvc.SkippedFile `json:"skipped,omitempty"`
}

type PhotoListResponse struct {
	Photos []PhotoResponse `json:"photos"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}
