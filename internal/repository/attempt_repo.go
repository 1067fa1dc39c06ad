package repository

import (
	"context"

	"github.com/kursadbilgin/hiretrack/internal/domain"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	Create(ctx context.Context, a *domain.EmailAttempt) error
	GetByTaskID(ctx context.Context, taskID string) ([]domain.EmailAttempt, error)
}

type GormAttemptRepo struct {
	db *gorm.DB
}

func NewGormAttemptRepo(db *gorm.DB) *GormAttemptRepo {
	return &GormAttemptRepo{db: db}
}

func (r *GormAttemptRepo) Create(ctx context.Context, a *domain.EmailAttempt) error {
	model := emailAttemptModelFromDomain(a)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if a != nil {
		*a = *emailAttemptModelToDomain(model)
	}
	return nil
}

func (r *GormAttemptRepo) GetByTaskID(ctx context.Context, taskID string) ([]domain.EmailAttempt, error) {
	var models []EmailAttemptModel
	err := r.db.WithContext(ctx).
		Where("email_task_id = ?", taskID).
		Order("attempt_number ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	attempts := make([]domain.EmailAttempt, 0, len(models))
	for i := range models {
		attempts = append(attempts, *emailAttemptModelToDomain(&models[i]))
	}
	return attempts, nil
}
