package middleware

import (
	"context"

	"tourbooking/internal/entity"

	"github.com/google/uuid"
)

// Identity is the authenticated caller, as resolved by Protect.
type Identity struct {
	AccountID uuid.UUID
	Role      entity.Role
}

type identityKey struct{}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}
