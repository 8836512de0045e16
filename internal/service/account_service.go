package service

import (
	"context"
	"strings"

	"tourbooking/internal/entity"
	"tourbooking/internal/repository"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

func (s *AuthService) GetMe(ctx context.Context, accountID uuid.UUID) (*entity.Account, error) {
	return s.GetAccount(ctx, accountID)
}

// GetAccount looks up any active account by id. Deactivated accounts are
// reported as missing.
func (s *AuthService) GetAccount(ctx context.Context, accountID uuid.UUID) (*entity.Account, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, Internal(err)
	}
	if account == nil {
		return nil, NotFound("No account found with that ID")
	}
	return account, nil
}

// UpdateMe changes profile fields only. Passwords go through ChangePassword so
// that passwordChangedAt is always stamped.
func (s *AuthService) UpdateMe(ctx context.Context, input UpdateMeInput) (*entity.Account, error) {
	if input.PasswordFieldsPresent {
		return nil, Validation("This route is not for password updates. Please use /updateMyPassword")
	}

	account, err := s.accounts.FindByID(ctx, input.AccountID, repository.WithPassword())
	if err != nil {
		return nil, Internal(err)
	}
	if account == nil {
		return nil, NotFound("No account found with that ID")
	}

	if input.Name != nil {
		account.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		account.Email = normalizeEmail(*input.Email)
	}
	if err := s.accounts.Save(ctx, account, repository.SaveOptions{Validate: true}); err != nil {
		return nil, classifyStoreError(err)
	}

	account.PasswordHash = ""
	return account, nil
}

// DeactivateMe soft-deletes the account. Every read filters it afterwards,
// which also invalidates its outstanding tokens.
func (s *AuthService) DeactivateMe(ctx context.Context, accountID uuid.UUID, ipAddress *string) error {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return Internal(err)
	}
	if account == nil {
		return NotFound("No account found with that ID")
	}

	account.Active = false
	if err := s.accounts.Save(ctx, account, repository.SaveOptions{Validate: false}); err != nil {
		return Internal(err)
	}
	s.logSecurity(ctx, &account.ID, ipAddress, entity.AccountDeactivated, nil)
	return nil
}

func (s *AuthService) ListAccounts(ctx context.Context, limit, offset int) ([]entity.Account, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	accounts, err := s.accounts.List(ctx, limit, offset)
	if err != nil {
		return nil, Internal(err)
	}
	return accounts, nil
}

// AccountActivity returns the most recent security events of an account.
func (s *AuthService) AccountActivity(ctx context.Context, accountID uuid.UUID, limit int) ([]entity.SecurityLog, error) {
	if s.securityLogs == nil {
		return nil, nil
	}
	logs, err := s.securityLogs.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, Internal(err)
	}
	return logs, nil
}
