package dto

import (
	"time"

	"tourbooking/internal/entity"
)

// Password fields are capped at bcrypt's 72 character input limit.

type SignupRequest struct {
	Name            string `json:"name" validate:"max=255"`
	Email           string `json:"email" validate:"max=255"`
	Password        string `json:"password" validate:"max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"max=255"`
	Password string `json:"password" validate:"max=72"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"max=255"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"max=72"`
}

type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" validate:"max=72"`
	Password        string `json:"password" validate:"max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"max=72"`
}

// UpdateMeRequest accepts the password fields only to reject them with a
// pointer to the right route.
type UpdateMeRequest struct {
	Name            *string `json:"name" validate:"omitempty,max=255"`
	Email           *string `json:"email" validate:"omitempty,max=255"`
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"passwordConfirm"`
	PasswordCurrent *string `json:"passwordCurrent"`
}

func (r UpdateMeRequest) HasPasswordFields() bool {
	return r.Password != nil || r.PasswordConfirm != nil || r.PasswordCurrent != nil
}

type UserResponse struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Role              string     `json:"role"`
	PasswordChangedAt *time.Time `json:"passwordChangedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type UserData struct {
	User UserResponse `json:"user"`
}

type UsersData struct {
	Users []UserResponse `json:"users"`
}

type AuthResponse struct {
	Status string   `json:"status"`
	Token  string   `json:"token"`
	Data   UserData `json:"data"`
}

type UserEnvelope struct {
	Status string   `json:"status"`
	Data   UserData `json:"data"`
}

type UsersEnvelope struct {
	Status  string    `json:"status"`
	Results int       `json:"results"`
	Data    UsersData `json:"data"`
}

type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SecurityEventResponse struct {
	Action    string    `json:"action"`
	IPAddress *string   `json:"ipAddress,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type ActivityEnvelope struct {
	Status  string                  `json:"status"`
	Results int                     `json:"results"`
	Data    []SecurityEventResponse `json:"data"`
}

func UserResponseFromEntity(account *entity.Account) UserResponse {
	return UserResponse{
		ID:                account.ID.String(),
		Name:              account.Name,
		Email:             account.Email,
		Role:              string(account.Role),
		PasswordChangedAt: account.PasswordChangedAt,
		CreatedAt:         account.CreatedAt,
		UpdatedAt:         account.UpdatedAt,
	}
}

func UserResponsesFromEntities(accounts []entity.Account) []UserResponse {
	responses := make([]UserResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, UserResponseFromEntity(&accounts[i]))
	}
	return responses
}

func SecurityEventsFromEntities(logs []entity.SecurityLog) []SecurityEventResponse {
	responses := make([]SecurityEventResponse, 0, len(logs))
	for _, log := range logs {
		responses = append(responses, SecurityEventResponse{
			Action:    string(log.Action),
			IPAddress: log.IPAddress,
			CreatedAt: log.CreatedAt,
		})
	}
	return responses
}
