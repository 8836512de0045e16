package service

import (
	"context"
	"time"

	"tourbooking/internal/utils"
)

type AuthConfig struct {
	ResetTokenTTL     time.Duration
	MinPasswordLength int
	// PasswordChangeSkew backdates passwordChangedAt so a token issued right
	// after the change is never older than the change itself.
	PasswordChangeSkew time.Duration
}

// Notifier delivers out-of-band messages to an account's address.
type Notifier interface {
	Send(ctx context.Context, address string, subject string, body string) error
}

type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, hash string, password string) (bool, error)
}

type TokenService interface {
	Sign(subjectID string) (string, error)
	Verify(token string) (*utils.Claims, error)
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}
