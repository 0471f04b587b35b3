package model

import (
	"time"

	"github.com/mangala-lk/backend/internal/domain/enums"
)

type User struct {
	ID               int64               `json:"id"`
	Email            string              `json:"email"`
	FirstName        string              `json:"first_name"`
	LastName         string              `json:"last_name"`
	Role             enums.Role          `json:"role"`
	Status           enums.AccountStatus `json:"status"`
	IsVerified       bool                `json:"is_verified"`
	ProfileCompleted bool                `json:"profile_completed"`
	LastLoginAt      *time.Time          `json:"last_login_at"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}
