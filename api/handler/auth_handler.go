package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tourbooking/api/middleware"
	"tourbooking/internal/dto"
	"tourbooking/internal/entity"
	"tourbooking/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	TokenCookieName = "jwt"

	defaultResetPath = "/api/v1/users/resetPassword/"
	defaultCookieTTL = 90 * 24 * time.Hour
)

// AuthService is what the handlers need from the authentication flow.
type AuthService interface {
	Signup(ctx context.Context, input service.SignupInput) (*service.AuthResult, error)
	Login(ctx context.Context, input service.LoginInput) (*service.AuthResult, error)
	ForgotPassword(ctx context.Context, input service.ForgotPasswordInput) error
	ResetPassword(ctx context.Context, input service.ResetPasswordInput) (*service.AuthResult, error)
	ChangePassword(ctx context.Context, input service.ChangePasswordInput) (*service.AuthResult, error)
	GetMe(ctx context.Context, accountID uuid.UUID) (*entity.Account, error)
	GetAccount(ctx context.Context, accountID uuid.UUID) (*entity.Account, error)
	UpdateMe(ctx context.Context, input service.UpdateMeInput) (*entity.Account, error)
	DeactivateMe(ctx context.Context, accountID uuid.UUID, ipAddress *string) error
	ListAccounts(ctx context.Context, limit, offset int) ([]entity.Account, error)
	AccountActivity(ctx context.Context, accountID uuid.UUID, limit int) ([]entity.SecurityLog, error)
}

type AuthHandler struct {
	Service  AuthService
	Validate *validator.Validate

	CookieDomain  string
	CookieTTL     time.Duration
	SecureCookies bool
	SameSite      http.SameSite
	// BaseURL is the public origin reset links point at. When empty the
	// request's own scheme and host are used, which only suits development.
	BaseURL   string
	ResetPath string
	Now       func() time.Time
}

func NewAuthHandler(svc AuthService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{
		Service:   svc,
		Validate:  validate,
		CookieTTL: defaultCookieTTL,
		SameSite:  http.SameSiteStrictMode,
		ResetPath: defaultResetPath,
	}
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req dto.SignupRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	result, err := h.Service.Signup(c.Request().Context(), service.SignupInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		IPAddress:       stringPtr(c.RealIP()),
	})
	if err != nil {
		return err
	}
	return h.sendToken(c, http.StatusCreated, result)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	result, err := h.Service.Login(c.Request().Context(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: stringPtr(c.RealIP()),
	})
	if err != nil {
		return err
	}
	return h.sendToken(c, http.StatusOK, result)
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req dto.ForgotPasswordRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	err := h.Service.ForgotPassword(c.Request().Context(), service.ForgotPasswordInput{
		Email:          req.Email,
		ResetURLPrefix: h.resetURLPrefix(c),
		IPAddress:      stringPtr(c.RealIP()),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Status: "success", Message: "Token sent to email!"})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req dto.ResetPasswordRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	result, err := h.Service.ResetPassword(c.Request().Context(), service.ResetPasswordInput{
		Token:           c.Param("token"),
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		IPAddress:       stringPtr(c.RealIP()),
	})
	if err != nil {
		return err
	}
	return h.sendToken(c, http.StatusOK, result)
}

func (h *AuthHandler) UpdateMyPassword(c echo.Context) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req dto.UpdatePasswordRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	result, err := h.Service.ChangePassword(c.Request().Context(), service.ChangePasswordInput{
		AccountID:       identity.AccountID,
		CurrentPassword: req.PasswordCurrent,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		IPAddress:       stringPtr(c.RealIP()),
	})
	if err != nil {
		return err
	}
	return h.sendToken(c, http.StatusOK, result)
}

func (h *AuthHandler) Me(c echo.Context) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	account, err := h.Service.GetMe(c.Request().Context(), identity.AccountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.UserEnvelope{
		Status: "success",
		Data:   dto.UserData{User: dto.UserResponseFromEntity(account)},
	})
}

func (h *AuthHandler) UpdateMe(c echo.Context) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req dto.UpdateMeRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	account, err := h.Service.UpdateMe(c.Request().Context(), service.UpdateMeInput{
		AccountID:             identity.AccountID,
		Name:                  req.Name,
		Email:                 req.Email,
		PasswordFieldsPresent: req.HasPasswordFields(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.UserEnvelope{
		Status: "success",
		Data:   dto.UserData{User: dto.UserResponseFromEntity(account)},
	})
}

func (h *AuthHandler) DeleteMe(c echo.Context) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	if err := h.Service.DeactivateMe(c.Request().Context(), identity.AccountID, stringPtr(c.RealIP())); err != nil {
		return err
	}
	h.clearTokenCookie(c)
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) MyActivity(c echo.Context) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	limit, _ := parseLimitOffset(c)
	logs, err := h.Service.AccountActivity(c.Request().Context(), identity.AccountID, limit)
	if err != nil {
		return err
	}
	events := dto.SecurityEventsFromEntities(logs)
	return c.JSON(http.StatusOK, dto.ActivityEnvelope{Status: "success", Results: len(events), Data: events})
}

func (h *AuthHandler) GetUser(c echo.Context) error {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return service.Validation("Invalid id: " + c.Param("id"))
	}
	account, err := h.Service.GetAccount(c.Request().Context(), accountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.UserEnvelope{
		Status: "success",
		Data:   dto.UserData{User: dto.UserResponseFromEntity(account)},
	})
}

func (h *AuthHandler) ListUsers(c echo.Context) error {
	limit, offset := parseLimitOffset(c)
	accounts, err := h.Service.ListAccounts(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	users := dto.UserResponsesFromEntities(accounts)
	return c.JSON(http.StatusOK, dto.UsersEnvelope{
		Status:  "success",
		Results: len(users),
		Data:    dto.UsersData{Users: users},
	})
}

func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// sendToken answers with a fresh token in the body and in the jwt cookie.
func (h *AuthHandler) sendToken(c echo.Context, status int, result *service.AuthResult) error {
	c.SetCookie(&http.Cookie{
		Name:     TokenCookieName,
		Value:    result.Token,
		Path:     "/",
		Domain:   h.CookieDomain,
		Expires:  h.now().Add(h.CookieTTL),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: h.SameSite,
	})
	return c.JSON(status, dto.AuthResponse{
		Status: "success",
		Token:  result.Token,
		Data:   dto.UserData{User: dto.UserResponseFromEntity(result.Account)},
	})
}

func (h *AuthHandler) resetURLPrefix(c echo.Context) string {
	if h.BaseURL != "" {
		return strings.TrimRight(h.BaseURL, "/") + h.ResetPath
	}
	return fmt.Sprintf("%s://%s%s", c.Scheme(), c.Request().Host, h.ResetPath)
}

func (h *AuthHandler) clearTokenCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: h.SameSite,
	})
}

func (h *AuthHandler) bind(c echo.Context, target any) error {
	if err := decodeJSON(c, target); err != nil {
		return service.Validation("Invalid request body: " + err.Error())
	}
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(target)
}

func (h *AuthHandler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

func requireIdentity(c echo.Context) (middleware.Identity, error) {
	identity, ok := middleware.IdentityFromContext(c.Request().Context())
	if !ok {
		return middleware.Identity{}, service.Authentication("You are not logged in! Please log in to get access.")
	}
	return identity, nil
}

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func parseLimitOffset(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return limit, offset
}

func stringPtr(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
