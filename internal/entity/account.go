package entity

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleGuide, RoleLeadGuide:
		return true
	}
	return false
}

var ErrIncompleteResetToken = errors.New("password reset token and expiry must be set together")

type Account struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name  string    `gorm:"type:varchar(255);not null" validate:"required"`
	Email string    `gorm:"type:varchar(255);uniqueIndex;not null" validate:"required,email"`
	Role  Role      `gorm:"type:account_role;default:'user';not null" validate:"required,oneof=user admin guide lead-guide"`

	// PasswordHash is only loaded when a read asks for it explicitly.
	PasswordHash string `gorm:"type:text;not null" validate:"required,startswith=$2"`

	PasswordChangedAt      *time.Time
	PasswordResetTokenHash *string `gorm:"type:text;index"`
	PasswordResetExpiresAt *time.Time

	Active bool `gorm:"default:true;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the invariants a fully validated save must hold.
func (a *Account) Validate(v *validator.Validate) error {
	if v == nil {
		v = validator.New()
	}
	if err := v.Struct(a); err != nil {
		return err
	}
	if (a.PasswordResetTokenHash == nil) != (a.PasswordResetExpiresAt == nil) {
		return ErrIncompleteResetToken
	}
	return nil
}

// ChangedPasswordAfter reports whether the password was changed after a
// credential issued at issuedAt. Comparison is done in whole seconds, the
// precision tokens carry.
func (a *Account) ChangedPasswordAfter(issuedAt time.Time) bool {
	if a.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Unix() < a.PasswordChangedAt.Unix()
}

// SetResetToken opens a reset window.
func (a *Account) SetResetToken(tokenHash string, expiresAt time.Time) {
	a.PasswordResetTokenHash = &tokenHash
	a.PasswordResetExpiresAt = &expiresAt
}

func (a *Account) ClearResetToken() {
	a.PasswordResetTokenHash = nil
	a.PasswordResetExpiresAt = nil
}
