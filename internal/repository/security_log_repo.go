package repository

import (
	"context"
	"fmt"

	"tourbooking/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultSecurityLogLimit = 50

type SecurityLogRepository interface {
	Log(ctx context.Context, log *entity.SecurityLog) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]entity.SecurityLog, error)
}

type securityLogRepository struct {
	db *gorm.DB
}

func NewSecurityLogRepository(db *gorm.DB) SecurityLogRepository {
	return &securityLogRepository{db: db}
}

func (r *securityLogRepository) Log(ctx context.Context, log *entity.SecurityLog) error {
	if err := r.db.WithContext(ctx).Omit("Account").Create(log).Error; err != nil {
		return fmt.Errorf("failed to write security log: %w", err)
	}
	return nil
}

// ListByAccount returns the newest events first.
func (r *securityLogRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]entity.SecurityLog, error) {
	if limit <= 0 {
		limit = defaultSecurityLogLimit
	}
	var logs []entity.SecurityLog
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list security logs: %w", err)
	}
	return logs, nil
}
