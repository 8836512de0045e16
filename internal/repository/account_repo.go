package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tourbooking/internal/entity"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrResetWindowClosed reports a redemption that found no open reset
	// window for the account, usually because another request used it first.
	ErrResetWindowClosed = errors.New("password reset window already closed")
)

// accountColumns is the default projection. password_hash is only selected
// through WithPassword.
var accountColumns = []string{
	"id", "name", "email", "role", "active", "password_changed_at",
	"password_reset_token_hash", "password_reset_expires_at", "created_at", "updated_at",
}

// ReadOption adjusts the column projection of a read.
type ReadOption func(*readOptions)

type readOptions struct {
	withPassword bool
}

// WithPassword includes the password hash, which reads omit by default.
func WithPassword() ReadOption {
	return func(o *readOptions) { o.withPassword = true }
}

type SaveOptions struct {
	// Validate runs the full entity validation before writing. Partial
	// updates of bookkeeping fields skip it.
	Validate bool
}

type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	FindByID(ctx context.Context, id uuid.UUID, opts ...ReadOption) (*entity.Account, error)
	FindByEmail(ctx context.Context, email string, opts ...ReadOption) (*entity.Account, error)
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*entity.Account, error)
	Save(ctx context.Context, account *entity.Account, opts SaveOptions) error
	RedeemResetToken(ctx context.Context, account *entity.Account, tokenHash string, now time.Time) error
	List(ctx context.Context, limit, offset int) ([]entity.Account, error)
}

type accountRepository struct {
	db       *gorm.DB
	validate *validator.Validate
}

func NewAccountRepository(db *gorm.DB, validate *validator.Validate) AccountRepository {
	if validate == nil {
		validate = validator.New()
	}
	return &accountRepository{db: db, validate: validate}
}

// activeOnly is applied to every read so deactivated accounts never leak.
func activeOnly(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}

func (r *accountRepository) read(ctx context.Context, opts []ReadOption) *gorm.DB {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}
	columns := accountColumns
	if o.withPassword {
		columns = append(append([]string{}, accountColumns...), "password_hash")
	}
	return r.db.WithContext(ctx).Select(columns).Scopes(activeOnly)
}

func (r *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	if err := account.Validate(r.validate); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID, opts ...ReadOption) (*entity.Account, error) {
	var account entity.Account
	err := r.read(ctx, opts).
		Where("id = ?", id).
		First(&account).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string, opts ...ReadOption) (*entity.Account, error) {
	var account entity.Account
	err := r.read(ctx, opts).
		Where("email = ?", email).
		First(&account).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// FindByResetToken matches only while the reset window is still open; an
// expired pair simply never matches.
func (r *accountRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*entity.Account, error) {
	var account entity.Account
	err := r.read(ctx, nil).
		Where("password_reset_token_hash = ? AND password_reset_expires_at > ?", tokenHash, now).
		First(&account).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by reset token: %w", err)
	}
	return &account, nil
}

// Save writes the mutable columns of an account. The password hash is only
// written when it is loaded, so a projected read can be saved back safely.
func (r *accountRepository) Save(ctx context.Context, account *entity.Account, opts SaveOptions) error {
	if opts.Validate {
		if err := account.Validate(r.validate); err != nil {
			return err
		}
	}
	columns := []string{
		"name", "email", "role", "active",
		"password_changed_at", "password_reset_token_hash", "password_reset_expires_at",
	}
	if account.PasswordHash != "" {
		columns = append(columns, "password_hash")
	}
	result := r.db.WithContext(ctx).
		Model(account).
		Select(columns).
		Updates(account)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update account: %w", result.Error)
	}
	return nil
}

// RedeemResetToken stores the new password of account and closes its reset
// window in one conditional update. The update only matches while tokenHash
// is still the open window, so a secret is redeemed at most once.
func (r *accountRepository) RedeemResetToken(ctx context.Context, account *entity.Account, tokenHash string, now time.Time) error {
	if err := account.Validate(r.validate); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&entity.Account{}).
		Scopes(activeOnly).
		Where("id = ? AND password_reset_token_hash = ? AND password_reset_expires_at > ?", account.ID, tokenHash, now).
		Updates(map[string]any{
			"password_hash":             account.PasswordHash,
			"password_changed_at":       account.PasswordChangedAt,
			"password_reset_token_hash": nil,
			"password_reset_expires_at": nil,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to redeem reset token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrResetWindowClosed
	}
	return nil
}

func (r *accountRepository) List(ctx context.Context, limit, offset int) ([]entity.Account, error) {
	var accounts []entity.Account
	query := r.read(ctx, nil).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}
