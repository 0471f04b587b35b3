package dto

import (
	"time"

	"github.com/mangala-lk/backend/internal/domain/model"
)

type UserResponse struct {
	ID               int64      `json:"id"`
	Email            string     `json:"email"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Role             string     `json:"role"`
	Status           string     `json:"status"`
	IsVerified       bool       `json:"is_verified"`
	ProfileCompleted bool       `json:"profile_completed"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func NewUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Role:             string(u.Role),
		Status:           string(u.Status),
		IsVerified:       u.IsVerified,
		ProfileCompleted: u.ProfileCompleted,
		LastLoginAt:      u.LastLoginAt,
		CreatedAt:        u.CreatedAt,
	}
}

type UserSummaryResponse struct {
	User                UserResponse `json:"user"`
	UnreadNotifications int          `json:"unread_notifications"`
	UnreadMessages      int64        `json:"unread_messages"`
}
