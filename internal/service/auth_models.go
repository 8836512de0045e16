package service

import (
	"tourbooking/internal/entity"

	"github.com/google/uuid"
)

type SignupInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
	IPAddress       *string
}

type LoginInput struct {
	Email     string
	Password  string
	IPAddress *string
}

type ForgotPasswordInput struct {
	Email string
	// ResetURLPrefix is completed with the raw reset secret to form the
	// link sent to the account holder.
	ResetURLPrefix string
	IPAddress      *string
}

type ResetPasswordInput struct {
	Token           string
	Password        string
	PasswordConfirm string
	IPAddress       *string
}

type ChangePasswordInput struct {
	AccountID       uuid.UUID
	CurrentPassword string
	Password        string
	PasswordConfirm string
	IPAddress       *string
}

type UpdateMeInput struct {
	AccountID uuid.UUID
	Name      *string
	Email     *string
	// PasswordFieldsPresent is set when the request tried to change the
	// password through the profile route.
	PasswordFieldsPresent bool
}

// AuthResult is returned by every operation that logs the account in.
type AuthResult struct {
	Token   string
	Account *entity.Account
}
