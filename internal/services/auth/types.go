package auth

import (
	"errors"
	"time"

	"github.com/mangala-lk/backend/internal/domain/enums"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrEmailTaken       = errors.New("email already registered")
	ErrAccountSuspended = errors.New("account suspended")
	ErrSessionNotFound  = errors.New("session not found")
	ErrRefreshNotFound  = errors.New("refresh token not found")
)

type SessionRecord struct {
	SID          string
	UserID       int64
	Role         enums.Role
	RefreshToken string
	ExpiresAt    time.Time
}

type AccessClaims struct {
	UserID    int64
	SID       string
	Role      enums.Role
	ExpiresAt time.Time
}

type Me struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	Role      string
}

type AuthResult struct {
	AccessToken   string
	RefreshToken  string
	AccessExpires time.Time
	Me            Me
}
