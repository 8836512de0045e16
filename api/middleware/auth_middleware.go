package middleware

import (
	"context"
	"net/http"
	"strings"

	"tourbooking/internal/entity"
	"tourbooking/internal/service"
)

const msgNotLoggedIn = "You are not logged in! Please log in to get access."

// Authenticator resolves a bearer token to the account it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.Account, error)
}

// Protect requires a valid bearer token for a live account whose password has
// not changed since the token was issued.
func Protect(auth Authenticator) Stage {
	return Stage{
		Name:             "protect",
		ProvidesIdentity: true,
		Run: func(ctx context.Context, r *http.Request) (context.Context, error) {
			token := extractBearerToken(r)
			if token == "" {
				return ctx, service.Authentication(msgNotLoggedIn)
			}
			account, err := auth.Authenticate(ctx, token)
			if err != nil {
				return ctx, err
			}
			return WithIdentity(ctx, Identity{AccountID: account.ID, Role: account.Role}), nil
		},
	}
}

func extractBearerToken(r *http.Request) string {
	authorization := r.Header.Get("Authorization")
	if authorization == "" {
		return ""
	}
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
