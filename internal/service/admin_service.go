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

const defaultFailedTaskLimit = 50

// FailedEmailTask pairs a failed task with its attempt audit trail.
type FailedEmailTask struct {
	Task     domain.EmailTask
	Attempts []domain.EmailAttempt
}

// AdminService backs the admin surface: user management and operational
// visibility. Route guards keep non-admins out; the service trusts its caller.
type AdminService struct {
	users        repository.UserRepository
	jobs         repository.JobRepository
	applications repository.ApplicationRepository
	tasks        repository.EmailTaskRepository
	attempts     repository.AttemptRepository
	logger       *zap.Logger
}

func NewAdminService(
	users repository.UserRepository,
	jobs repository.JobRepository,
	applications repository.ApplicationRepository,
	tasks repository.EmailTaskRepository,
	attempts repository.AttemptRepository,
	logger *zap.Logger,
) (*AdminService, error) {
	if users == nil || jobs == nil || applications == nil {
		return nil, fmt.Errorf("user, job and application repositories are required")
	}
	if tasks == nil || attempts == nil {
		return nil, fmt.Errorf("email task and attempt repositories are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AdminService{
		users:        users,
		jobs:         jobs,
		applications: applications,
		tasks:        tasks,
		attempts:     attempts,
		logger:       logger,
	}, nil
}

func (s *AdminService) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, fmt.Errorf("%w: user is required", domain.ErrValidation)
	}

	user.ID = uuid.NewString()
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))
	if user.Role == "" {
		user.Role = domain.RoleCandidate
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *AdminService) UpdateUserRole(ctx context.Context, id string, role string) (*domain.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}

	parsed, err := domain.ParseRoleFromString(role)
	if err != nil {
		return nil, err
	}

	return s.users.UpdateRole(ctx, strings.TrimSpace(id), parsed)
}

func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	return s.users.Delete(ctx, strings.TrimSpace(id))
}

func (s *AdminService) ListApplications(ctx context.Context) ([]domain.Application, error) {
	return s.applications.ListAll(ctx)
}

func (s *AdminService) DeleteApplication(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: application id is required", domain.ErrValidation)
	}
	return s.applications.Delete(ctx, strings.TrimSpace(id))
}

func (s *AdminService) DeleteJob(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: job id is required", domain.ErrValidation)
	}
	return s.jobs.Delete(ctx, strings.TrimSpace(id))
}

// ListFailedEmailTasks returns tasks that exhausted their retry budget,
// newest first, each with its attempt history.
func (s *AdminService) ListFailedEmailTasks(ctx context.Context, limit int) ([]FailedEmailTask, error) {
	if limit <= 0 {
		limit = defaultFailedTaskLimit
	}

	tasks, err := s.tasks.ListFailed(ctx, limit)
	if err != nil {
		return nil, err
	}

	failed := make([]FailedEmailTask, 0, len(tasks))
	for i := range tasks {
		attempts, err := s.attempts.GetByTaskID(ctx, tasks[i].ID)
		if err != nil {
			s.logger.Warn("failed to load attempts for failed email task",
				zap.String("taskId", tasks[i].ID),
				zap.Error(err),
			)
			attempts = nil
		}
		failed = append(failed, FailedEmailTask{Task: tasks[i], Attempts: attempts})
	}

	return failed, nil
}
