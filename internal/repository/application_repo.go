package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/hiretrack/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StageCount is one bucket of a group-by-stage aggregation.
type StageCount struct {
	Stage domain.Stage `gorm:"column:stage"`
	Count int          `gorm:"column:count"`
}

// JobCount is one bucket of a group-by-job aggregation.
type JobCount struct {
	JobID string `gorm:"column:job_id"`
	Count int    `gorm:"column:count"`
}

type ApplicationRepository interface {
	Create(ctx context.Context, a *domain.Application) error
	GetByID(ctx context.Context, id string) (*domain.Application, error)
	FindByCandidateAndJob(ctx context.Context, candidateID, jobID string) (*domain.Application, error)
	// TransitionStage validates the requested stage against the current one
	// under a row lock and commits the stage update together with exactly one
	// history record, or nothing at all.
	TransitionStage(ctx context.Context, id string, newStage domain.Stage, changedBy *string) (*domain.Application, *domain.ApplicationHistory, error)
	ListHistory(ctx context.Context, applicationID string) ([]domain.ApplicationHistory, error)
	ListByCandidate(ctx context.Context, candidateID string, limit int) ([]domain.Application, error)
	ListByJob(ctx context.Context, jobID string, stage *domain.Stage) ([]domain.Application, error)
	ListAll(ctx context.Context) ([]domain.Application, error)
	CountByCandidate(ctx context.Context, candidateID string) (int64, error)
	CountByStageForCandidate(ctx context.Context, candidateID string) ([]StageCount, error)
	CountByStageForJobs(ctx context.Context, jobIDs []string) ([]StageCount, error)
	CountPerJob(ctx context.Context, jobIDs []string) ([]JobCount, error)
	CountByJobs(ctx context.Context, jobIDs []string) (int64, error)
	Delete(ctx context.Context, id string) error
}

type GormApplicationRepo struct {
	db *gorm.DB
}

func NewGormApplicationRepo(db *gorm.DB) *GormApplicationRepo {
	return &GormApplicationRepo{db: db}
}

func (r *GormApplicationRepo) Create(ctx context.Context, a *domain.Application) error {
	model := applicationModelFromDomain(a)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateApplication
		}
		return err
	}
	if a != nil {
		*a = *applicationModelToDomain(model)
	}
	return nil
}

func (r *GormApplicationRepo) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	var model ApplicationModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return applicationModelToDomain(&model), nil
}

func (r *GormApplicationRepo) FindByCandidateAndJob(ctx context.Context, candidateID, jobID string) (*domain.Application, error) {
	var model ApplicationModel
	err := r.db.WithContext(ctx).
		Where("candidate_id = ? AND job_id = ?", candidateID, jobID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return applicationModelToDomain(&model), nil
}

func (r *GormApplicationRepo) TransitionStage(
	ctx context.Context,
	id string,
	newStage domain.Stage,
	changedBy *string,
) (*domain.Application, *domain.ApplicationHistory, error) {
	var app *domain.Application
	var record *domain.ApplicationHistory

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model ApplicationModel
		// The row lock serializes concurrent transitions on the same
		// application; the validation below always sees the committed stage.
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&model, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}

		previous := model.Stage
		if !previous.CanTransitionTo(newStage) {
			return &domain.InvalidTransitionError{From: previous, To: newStage}
		}

		if err := tx.Model(&model).Update("stage", newStage).Error; err != nil {
			return err
		}

		historyModel := ApplicationHistoryModel{
			ID:            uuid.NewString(),
			ApplicationID: model.ID,
			PreviousStage: previous,
			NewStage:      newStage,
			ChangedBy:     changedBy,
			CreatedAt:     time.Now().UTC(),
		}
		if err := tx.Create(&historyModel).Error; err != nil {
			return err
		}

		model.Stage = newStage
		app = applicationModelToDomain(&model)
		record = historyModelToDomain(&historyModel)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return app, record, nil
}

func (r *GormApplicationRepo) ListHistory(ctx context.Context, applicationID string) ([]domain.ApplicationHistory, error) {
	var models []ApplicationHistoryModel
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	history := make([]domain.ApplicationHistory, 0, len(models))
	for i := range models {
		history = append(history, *historyModelToDomain(&models[i]))
	}
	return history, nil
}

func (r *GormApplicationRepo) ListByCandidate(ctx context.Context, candidateID string, limit int) ([]domain.Application, error) {
	query := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []ApplicationModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return applicationsToDomain(models), nil
}

func (r *GormApplicationRepo) ListByJob(ctx context.Context, jobID string, stage *domain.Stage) ([]domain.Application, error) {
	query := r.db.WithContext(ctx).Where("job_id = ?", jobID)
	if stage != nil {
		query = query.Where("stage = ?", *stage)
	}

	var models []ApplicationModel
	if err := query.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	return applicationsToDomain(models), nil
}

func (r *GormApplicationRepo) ListAll(ctx context.Context) ([]domain.Application, error) {
	var models []ApplicationModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	return applicationsToDomain(models), nil
}

func (r *GormApplicationRepo) CountByCandidate(ctx context.Context, candidateID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&ApplicationModel{}).
		Where("candidate_id = ?", candidateID).
		Count(&total).Error
	return total, err
}

func (r *GormApplicationRepo) CountByStageForCandidate(ctx context.Context, candidateID string) ([]StageCount, error) {
	var counts []StageCount
	err := r.db.WithContext(ctx).
		Model(&ApplicationModel{}).
		Select("stage, COUNT(*) as count").
		Where("candidate_id = ?", candidateID).
		Group("stage").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *GormApplicationRepo) CountByStageForJobs(ctx context.Context, jobIDs []string) ([]StageCount, error) {
	if len(jobIDs) == 0 {
		return nil, nil
	}

	var counts []StageCount
	err := r.db.WithContext(ctx).
		Model(&ApplicationModel{}).
		Select("stage, COUNT(*) as count").
		Where("job_id IN ?", jobIDs).
		Group("stage").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *GormApplicationRepo) CountPerJob(ctx context.Context, jobIDs []string) ([]JobCount, error) {
	if len(jobIDs) == 0 {
		return nil, nil
	}

	var counts []JobCount
	err := r.db.WithContext(ctx).
		Model(&ApplicationModel{}).
		Select("job_id, COUNT(*) as count").
		Where("job_id IN ?", jobIDs).
		Group("job_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *GormApplicationRepo) CountByJobs(ctx context.Context, jobIDs []string) (int64, error) {
	if len(jobIDs) == 0 {
		return 0, nil
	}

	var total int64
	err := r.db.WithContext(ctx).
		Model(&ApplicationModel{}).
		Where("job_id IN ?", jobIDs).
		Count(&total).Error
	return total, err
}

func (r *GormApplicationRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&ApplicationModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func applicationsToDomain(models []ApplicationModel) []domain.Application {
	applications := make([]domain.Application, 0, len(models))
	for i := range models {
		applications = append(applications, *applicationModelToDomain(&models[i]))
	}
	return applications
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
