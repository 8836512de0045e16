package middleware

import (
	"context"
	"net/http"
	"strings"

	"tourbooking/internal/entity"
	"tourbooking/internal/service"
)

const msgForbidden = "You do not have permission to perform this action"

// RestrictTo admits only identities holding one of roles. It must follow
// Protect in the same chain.
func RestrictTo(roles ...entity.Role) Stage {
	allowed := make(map[entity.Role]struct{}, len(roles))
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
		names = append(names, string(role))
	}
	return Stage{
		Name:             "restrictTo(" + strings.Join(names, ",") + ")",
		RequiresIdentity: true,
		Run: func(ctx context.Context, r *http.Request) (context.Context, error) {
			identity, ok := IdentityFromContext(ctx)
			if !ok {
				return ctx, service.Authentication(msgNotLoggedIn)
			}
			if _, ok := allowed[identity.Role]; !ok {
				return ctx, service.Authorization(msgForbidden)
			}
			return ctx, nil
		},
	}
}
