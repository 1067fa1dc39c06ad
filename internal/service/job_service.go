package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kursadbilgin/hiretrack/internal/domain"
	"github.com/kursadbilgin/hiretrack/internal/repository"
	"go.uber.org/zap"
)

// JobService owns job postings.
type JobService struct {
	jobs   repository.JobRepository
	logger *zap.Logger
}

func NewJobService(jobs repository.JobRepository, logger *zap.Logger) (*JobService, error) {
	if jobs == nil {
		return nil, fmt.Errorf("job repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobService{jobs: jobs, logger: logger}, nil
}

// Create opens a new posting owned by the calling recruiter.
func (s *JobService) Create(ctx context.Context, actor *domain.User, job *domain.Job) (*domain.Job, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: actor is required", domain.ErrUnauthorized)
	}
	if actor.Role != domain.RoleRecruiter && actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: only recruiters can create job postings", domain.ErrUnauthorized)
	}
	if job == nil {
		return nil, fmt.Errorf("%w: job is required", domain.ErrValidation)
	}

	job.ID = uuid.NewString()
	job.Title = strings.TrimSpace(job.Title)
	job.Description = strings.TrimSpace(job.Description)
	job.PostedBy = actor.ID
	if job.Status == "" {
		job.Status = domain.JobStatusOpen
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobService) Get(ctx context.Context, id string) (*domain.Job, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: job id is required", domain.ErrValidation)
	}
	return s.jobs.GetByID(ctx, strings.TrimSpace(id))
}

func (s *JobService) List(ctx context.Context) ([]domain.Job, error) {
	return s.jobs.List(ctx)
}
