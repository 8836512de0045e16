package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tourbooking/internal/entity"
	"tourbooking/internal/repository"
	"tourbooking/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const (
	defaultResetTokenTTL      = 10 * time.Minute
	defaultMinPasswordLength  = 8
	defaultPasswordChangeSkew = time.Second

	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

type AuthService struct {
	accounts     repository.AccountRepository
	securityLogs repository.SecurityLogRepository

	notifier     Notifier
	passwordHash PasswordHasher
	tokens       TokenService
	clock        Clock
	logger       logrus.FieldLogger
	config       AuthConfig
}

func NewAuthService(
	accounts repository.AccountRepository,
	securityLogs repository.SecurityLogRepository,
	notifier Notifier,
	passwordHash PasswordHasher,
	tokens TokenService,
	clock Clock,
	logger logrus.FieldLogger,
	config AuthConfig,
) *AuthService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthService{
		accounts:     accounts,
		securityLogs: securityLogs,
		notifier:     notifier,
		passwordHash: passwordHash,
		tokens:       tokens,
		clock:        clock,
		logger:       logger,
		config:       config,
	}
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	switch {
	case name == "":
		return nil, Validation("Please tell us your name!")
	case email == "":
		return nil, Validation("Please provide your email!")
	}

	account := &entity.Account{
		Name:   name,
		Email:  email,
		Role:   entity.RoleUser,
		Active: true,
	}
	if err := s.setPassword(ctx, account, input.Password, input.PasswordConfirm, false); err != nil {
		return nil, err
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, classifyStoreError(err)
	}

	s.logSecurity(ctx, &account.ID, input.IPAddress, entity.Signup, nil)
	return s.issue(account)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, Validation("Please provide email and password")
	}

	account, err := s.accounts.FindByEmail(ctx, email, repository.WithPassword())
	if err != nil {
		return nil, Internal(err)
	}
	if account == nil {
		// Pay for one bcrypt round so unknown emails are not distinguishable
		// by latency.
		_, _ = s.passwordHash.Hash(ctx, input.Password)
		s.logSecurity(ctx, nil, input.IPAddress, entity.LoginFailed, map[string]any{"email": email})
		return nil, Authentication(MsgIncorrectCredentials)
	}

	ok, err := s.passwordHash.Verify(ctx, account.PasswordHash, input.Password)
	if err != nil {
		return nil, Internal(err)
	}
	if !ok {
		s.logSecurity(ctx, &account.ID, input.IPAddress, entity.LoginFailed, map[string]any{"email": email})
		return nil, Authentication(MsgIncorrectCredentials)
	}

	s.logSecurity(ctx, &account.ID, input.IPAddress, entity.LoginSuccess, nil)
	return s.issue(account)
}

// ForgotPassword opens a reset window and delivers the raw secret. The
// secret exists only in the delivered message; the account keeps its hash.
func (s *AuthService) ForgotPassword(ctx context.Context, input ForgotPasswordInput) error {
	email := normalizeEmail(input.Email)
	if email == "" {
		return Validation("Please provide your email!")
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return Internal(err)
	}
	if account == nil {
		return NotFound("There is no user with this email address")
	}

	secret, err := utils.NewResetSecret()
	if err != nil {
		return Internal(err)
	}
	account.SetResetToken(secret.Hash, s.now().Add(s.resetTokenTTL()))
	if err := s.accounts.Save(ctx, account, repository.SaveOptions{Validate: false}); err != nil {
		return Internal(err)
	}

	subject := fmt.Sprintf("Your password reset token (valid for %d min)", int(s.resetTokenTTL().Minutes()))
	body := fmt.Sprintf(
		"Forgot your password? Submit a PATCH request with your new password and passwordConfirm to: %s%s\n"+
			"If you didn't forget your password, please ignore this email!",
		input.ResetURLPrefix, secret.Raw,
	)
	if err := s.notifier.Send(ctx, account.Email, subject, body); err != nil {
		return s.rollbackReset(ctx, account, input.IPAddress, err)
	}

	s.logSecurity(ctx, &account.ID, input.IPAddress, entity.ResetRequested, nil)
	return nil
}

// rollbackReset clears a reset window whose secret never reached the user.
func (s *AuthService) rollbackReset(ctx context.Context, account *entity.Account, ipAddress *string, sendErr error) error {
	account.ClearResetToken()
	// The request context may be the reason delivery failed; the rollback
	// must still reach the store.
	clearCtx := context.WithoutCancel(ctx)
	cause := sendErr
	if err := s.accounts.Save(clearCtx, account, repository.SaveOptions{Validate: false}); err != nil {
		s.logger.WithError(err).WithField("account_id", account.ID).Error("failed to clear password reset token")
		cause = errors.Join(sendErr, err)
	}
	s.logSecurity(clearCtx, &account.ID, ipAddress, entity.ResetDeliveryFailure, nil)
	return TransientDependency("There was an error sending the email. Try again later!", cause)
}

func (s *AuthService) ResetPassword(ctx context.Context, input ResetPasswordInput) (*AuthResult, error) {
	tokenHash, err := utils.HashResetSecret(input.Token)
	if err != nil {
		return nil, InvalidOrExpiredToken("Token is invalid or has expired")
	}

	now := s.now()
	found, err := s.accounts.FindByResetToken(ctx, tokenHash, now)
	if err != nil {
		return nil, Internal(err)
	}
	if found == nil {
		return nil, InvalidOrExpiredToken("Token is invalid or has expired")
	}
	account, err := s.accounts.FindByID(ctx, found.ID, repository.WithPassword())
	if err != nil {
		return nil, Internal(err)
	}
	if account == nil {
		return nil, InvalidOrExpiredToken("Token is invalid or has expired")
	}

	if err := s.setPassword(ctx, account, input.Password, input.PasswordConfirm, true); err != nil {
		return nil, err
	}
	account.ClearResetToken()
	// Concurrent redemptions of one secret race here; only one update matches.
	if err := s.accounts.RedeemResetToken(ctx, account, tokenHash, now); err != nil {
		if errors.Is(err, repository.ErrResetWindowClosed) {
			return nil, InvalidOrExpiredToken("Token is invalid or has expired")
		}
		return nil, classifyStoreError(err)
	}

	s.logSecurity(ctx, &account.ID, input.IPAddress, entity.Reset, nil)
	return s.issue(account)
}

func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) (*AuthResult, error) {
	account, err := s.accounts.FindByID(ctx, input.AccountID, repository.WithPassword())
	if err != nil {
		return nil, Internal(err)
	}
	if account == nil {
		return nil, Authentication("The account belonging to this token no longer exists.")
	}

	ok, err := s.passwordHash.Verify(ctx, account.PasswordHash, input.CurrentPassword)
	if err != nil {
		return nil, Internal(err)
	}
	if !ok {
		return nil, Authentication("Your current password is wrong")
	}

	if err := s.setPassword(ctx, account, input.Password, input.PasswordConfirm, true); err != nil {
		return nil, err
	}
	if err := s.accounts.Save(ctx, account, repository.SaveOptions{Validate: true}); err != nil {
		return nil, classifyStoreError(err)
	}

	s.logSecurity(ctx, &account.ID, input.IPAddress, entity.PasswordChanged, nil)
	return s.issue(account)
}

// Authenticate resolves the account behind a bearer token. A token issued
// before the latest password change is rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.Account, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return nil, Authentication("Your token has expired! Please log in again.")
		}
		return nil, Authentication("Invalid token! Please log in again.")
	}
	accountID, err := uuid.Parse(claims.SubjectID())
	if err != nil {
		return nil, Authentication("Invalid token! Please log in again.")
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, Internal(err)
	}
	if account == nil {
		return nil, Authentication("The account belonging to this token no longer exists.")
	}
	if account.ChangedPasswordAfter(claims.IssuedAtTime()) {
		return nil, Authentication("Password was changed recently! Please log in again.")
	}
	return account, nil
}

// setPassword hashes a new password onto account. Every change except the
// initial one stamps passwordChangedAt.
func (s *AuthService) setPassword(ctx context.Context, account *entity.Account, password, confirm string, stamp bool) error {
	switch {
	case password == "":
		return Validation("Please provide a password!")
	case confirm == "":
		return Validation("Please confirm your password!")
	case len(password) < s.minPasswordLength():
		return Validation(fmt.Sprintf("Password must be at least %d characters long", s.minPasswordLength()))
	case len(password) > maxPasswordBytes:
		return Validation(fmt.Sprintf("Password must be at most %d bytes long", maxPasswordBytes))
	case password != confirm:
		return Validation("Passwords are not the same!")
	}

	hash, err := s.passwordHash.Hash(ctx, password)
	if err != nil {
		return Internal(err)
	}
	account.PasswordHash = hash
	if stamp {
		changedAt := s.now().Add(-s.passwordChangeSkew())
		account.PasswordChangedAt = &changedAt
	}
	return nil
}

func (s *AuthService) issue(account *entity.Account) (*AuthResult, error) {
	token, err := s.tokens.Sign(account.ID.String())
	if err != nil {
		return nil, Internal(err)
	}
	return &AuthResult{Token: token, Account: account}, nil
}

func classifyStoreError(err error) error {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return Conflict("An account with this email already exists. Please use another email!")
	case errors.As(err, &validationErrs):
		return Validation(describeValidation(validationErrs))
	}
	return Internal(err)
}

func describeValidation(errs validator.ValidationErrors) string {
	messages := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		switch fieldErr.Field() {
		case "Email":
			messages = append(messages, "Please provide a valid email!")
		case "Name":
			messages = append(messages, "Please tell us your name!")
		case "Role":
			messages = append(messages, "Invalid role")
		default:
			messages = append(messages, fmt.Sprintf("Invalid %s", strings.ToLower(fieldErr.Field())))
		}
	}
	return "Invalid input data. " + strings.Join(messages, ". ")
}

func (s *AuthService) logSecurity(
	ctx context.Context,
	accountID *uuid.UUID,
	ipAddress *string,
	action entity.SecurityAction,
	metadata map[string]any,
) {
	if s.securityLogs == nil {
		return
	}
	var payload datatypes.JSON
	if metadata != nil {
		bytes, err := json.Marshal(metadata)
		if err != nil {
			s.logger.WithError(err).Warn("failed to encode security log metadata")
		} else {
			payload = datatypes.JSON(bytes)
		}
	}

	log := &entity.SecurityLog{
		AccountID: accountID,
		IPAddress: ipAddress,
		Action:    action,
		Metadata:  payload,
	}
	if err := s.securityLogs.Log(ctx, log); err != nil {
		s.logger.WithError(err).WithField("action", action).Warn("failed to record security event")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock.Now()
}

func (s *AuthService) resetTokenTTL() time.Duration {
	if s.config.ResetTokenTTL > 0 {
		return s.config.ResetTokenTTL
	}
	return defaultResetTokenTTL
}

func (s *AuthService) minPasswordLength() int {
	if s.config.MinPasswordLength > 0 {
		return s.config.MinPasswordLength
	}
	return defaultMinPasswordLength
}

func (s *AuthService) passwordChangeSkew() time.Duration {
	if s.config.PasswordChangeSkew > 0 {
		return s.config.PasswordChangeSkew
	}
	return defaultPasswordChangeSkew
}
