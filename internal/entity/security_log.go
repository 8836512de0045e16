package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SecurityAction string

const (
	Signup               SecurityAction = "signup"
	LoginSuccess         SecurityAction = "login_success"
	LoginFailed          SecurityAction = "login_failed"
	ResetRequested       SecurityAction = "password_reset_requested"
	Reset                SecurityAction = "password_reset"
	PasswordChanged      SecurityAction = "password_changed"
	AccountDeactivated   SecurityAction = "account_deactivated"
	ResetDeliveryFailure SecurityAction = "password_reset_delivery_failed"
)

type SecurityLog struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	AccountID *uuid.UUID `gorm:"type:uuid;index"`
	Account   *Account   `gorm:"constraint:OnDelete:SET NULL"`

	IPAddress *string        `gorm:"type:varchar(45)"`
	Action    SecurityAction `gorm:"type:security_action;not null"`

	Metadata datatypes.JSON

	CreatedAt time.Time
}
