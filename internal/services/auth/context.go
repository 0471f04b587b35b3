package auth

import (
	"context"

	"github.com/mangala-lk/backend/internal/domain/enums"
)

type identityContextKey string

const identityKey identityContextKey = "auth_identity"

// Identity is the authenticated caller as seen by handlers: the user id,
// the redis session the token was minted for, and the account role.
type Identity struct {
	UserID int64
	SID    string
	Role   enums.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == enums.RoleAdmin
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
