package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kursadbilgin/hiretrack/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmailTaskRepository interface {
	Create(ctx context.Context, t *domain.EmailTask) error
	GetByID(ctx context.Context, id string) (*domain.EmailTask, error)
	UpdateStatus(ctx context.Context, id string, status domain.EmailStatus) error
	UpdateStatusWithRetry(ctx context.Context, id string, status domain.EmailStatus, nextRetryAt time.Time) error
	MarkFailed(ctx context.Context, id string) error
	// LockForSending claims a task for delivery; returns nil when the task is
	// already in-flight, failed, or gone.
	LockForSending(ctx context.Context, id string) (*domain.EmailTask, error)
	GetDueForRetry(ctx context.Context, limit int) ([]domain.EmailTask, error)
	ClearNextRetryAt(ctx context.Context, id string) error
	// Delete removes a delivered task; the queue does not retain successes.
	Delete(ctx context.Context, id string) error
	ListFailed(ctx context.Context, limit int) ([]domain.EmailTask, error)
}

type GormEmailTaskRepo struct {
	db *gorm.DB
}

func NewGormEmailTaskRepo(db *gorm.DB) *GormEmailTaskRepo {
	return &GormEmailTaskRepo{db: db}
}

func (r *GormEmailTaskRepo) Create(ctx context.Context, t *domain.EmailTask) error {
	model := emailTaskModelFromDomain(t)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if t != nil {
		*t = *emailTaskModelToDomain(model)
	}
	return nil
}

func (r *GormEmailTaskRepo) GetByID(ctx context.Context, id string) (*domain.EmailTask, error) {
	var model EmailTaskModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return emailTaskModelToDomain(&model), nil
}

func (r *GormEmailTaskRepo) UpdateStatus(ctx context.Context, id string, status domain.EmailStatus) error {
	result := r.db.WithContext(ctx).
		Model(&EmailTaskModel{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormEmailTaskRepo) UpdateStatusWithRetry(ctx context.Context, id string, status domain.EmailStatus, nextRetryAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&EmailTaskModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        status,
			"next_retry_at": nextRetryAt,
			"attempt_count": gorm.Expr("attempt_count + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormEmailTaskRepo) MarkFailed(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&EmailTaskModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        domain.EmailStatusFailed,
			"next_retry_at": nil,
			"attempt_count": gorm.Expr("attempt_count + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormEmailTaskRepo) LockForSending(ctx context.Context, id string) (*domain.EmailTask, error) {
	var model EmailTaskModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	// Skip tasks another worker already claimed or that ran out of attempts.
	switch model.Status {
	case domain.EmailStatusSending, domain.EmailStatusFailed:
		return nil, nil
	}

	model.Status = domain.EmailStatusSending
	if err := r.db.WithContext(ctx).
		Model(&model).
		Update("status", domain.EmailStatusSending).Error; err != nil {
		return nil, err
	}

	return emailTaskModelToDomain(&model), nil
}

func (r *GormEmailTaskRepo) GetDueForRetry(ctx context.Context, limit int) ([]domain.EmailTask, error) {
	var models []EmailTaskModel
	err := r.db.WithContext(ctx).
		Where("status IN ? AND next_retry_at <= ?",
			[]domain.EmailStatus{domain.EmailStatusPending, domain.EmailStatusQueued},
			time.Now()).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.EmailTask, 0, len(models))
	for i := range models {
		tasks = append(tasks, *emailTaskModelToDomain(&models[i]))
	}
	return tasks, nil
}

func (r *GormEmailTaskRepo) ClearNextRetryAt(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&EmailTaskModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        domain.EmailStatusQueued,
			"next_retry_at": nil,
		}).Error
}

func (r *GormEmailTaskRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&EmailTaskModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormEmailTaskRepo) ListFailed(ctx context.Context, limit int) ([]domain.EmailTask, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", domain.EmailStatusFailed).
		Order("updated_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []EmailTaskModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	tasks := make([]domain.EmailTask, 0, len(models))
	for i := range models {
		tasks = append(tasks, *emailTaskModelToDomain(&models[i]))
	}
	return tasks, nil
}
