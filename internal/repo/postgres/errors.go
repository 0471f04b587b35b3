package postgres

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrPhotoNotFound     = errors.New("photo not found")
	ErrPhotoLimitReached = errors.New("photo limit reached")
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrDuplicateProposal = errors.New("active proposal already exists for pair")
)
