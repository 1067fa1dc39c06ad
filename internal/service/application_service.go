package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kursadbilgin/hiretrack/internal/domain"
	"github.com/kursadbilgin/hiretrack/internal/observability"
	"github.com/kursadbilgin/hiretrack/internal/repository"
	"go.uber.org/zap"
)

const (
	subjectApplicationSubmitted = "Application Submitted"
	subjectNewApplication       = "New Application Received"
	subjectStatusUpdated        = "Application Status Updated"
)

// EmailEnqueuer accepts an email into the durable notification queue.
type EmailEnqueuer interface {
	Enqueue(ctx context.Context, recipient, subject, body string) (*domain.EmailTask, error)
}

// ApplicationService owns submission and the stage pipeline. Notifications go
// out only after the database commit; a queue that cannot accept a task never
// rolls back an application.
type ApplicationService struct {
	applications repository.ApplicationRepository
	jobs         repository.JobRepository
	users        repository.UserRepository
	emails       EmailEnqueuer
	logger       *zap.Logger
	metrics      *observability.Metrics
}

func NewApplicationService(
	applications repository.ApplicationRepository,
	jobs repository.JobRepository,
	users repository.UserRepository,
	emails EmailEnqueuer,
	logger *zap.Logger,
) (*ApplicationService, error) {
	if applications == nil {
		return nil, fmt.Errorf("application repository is required")
	}
	if jobs == nil {
		return nil, fmt.Errorf("job repository is required")
	}
	if users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if emails == nil {
		return nil, fmt.Errorf("email enqueuer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ApplicationService{
		applications: applications,
		jobs:         jobs,
		users:        users,
		emails:       emails,
		logger:       logger,
	}, nil
}

func (s *ApplicationService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Submit creates an application in the Applied stage. The (candidate, job)
// pair is unique at the store level, so concurrent duplicate submissions
// resolve to exactly one row regardless of interleaving.
func (s *ApplicationService) Submit(ctx context.Context, actor *domain.User, jobID string) (*domain.Application, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if actor == nil {
		return nil, fmt.Errorf("%w: actor is required", domain.ErrUnauthorized)
	}
	if actor.Role != domain.RoleCandidate {
		return nil, fmt.Errorf("%w: only candidates can submit applications", domain.ErrUnauthorized)
	}
	if strings.TrimSpace(jobID) == "" {
		return nil, fmt.Errorf("%w: job id is required", domain.ErrValidation)
	}

	job, err := s.jobs.GetByID(ctx, strings.TrimSpace(jobID))
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobStatusOpen {
		return nil, fmt.Errorf("%w: job %s is no longer accepting applications", domain.ErrConflict, job.ID)
	}

	application := &domain.Application{
		ID:          uuid.NewString(),
		CandidateID: actor.ID,
		JobID:       job.ID,
		Stage:       domain.StageApplied,
	}
	if err := application.Validate(); err != nil {
		return nil, err
	}

	if err := s.applications.Create(ctx, application); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncSubmission()
	}

	s.enqueueEmail(ctx, actor.Email, subjectApplicationSubmitted,
		fmt.Sprintf("Your application for %s has been submitted.", job.Title))

	recruiter, err := s.users.GetByID(ctx, job.PostedBy)
	if err != nil {
		s.logger.Warn("failed to load recruiter for submission alert",
			zap.String("jobId", job.ID),
			zap.String("recruiterId", job.PostedBy),
			zap.Error(err),
		)
		return application, nil
	}
	s.enqueueEmail(ctx, recruiter.Email, subjectNewApplication,
		fmt.Sprintf("%s has applied for your job posting %q.", actor.Name, job.Title))

	return application, nil
}

// ChangeStage moves an application through the pipeline. The stage update and
// its history record commit atomically; the candidate notification is queued
// only once the transition is durable.
func (s *ApplicationService) ChangeStage(
	ctx context.Context,
	actor *domain.User,
	applicationID string,
	newStage domain.Stage,
) (*domain.Application, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.authorizeStageChange(ctx, actor, applicationID); err != nil {
		return nil, err
	}
	if !newStage.IsValid() {
		return nil, fmt.Errorf("%w: invalid stage %q", domain.ErrValidation, newStage)
	}

	application, record, err := s.applications.TransitionStage(ctx, applicationID, newStage, &actor.ID)
	if err != nil {
		var transitionErr *domain.InvalidTransitionError
		if errors.As(err, &transitionErr) && s.metrics != nil {
			s.metrics.IncTransitionRejected(transitionErr.From.String(), transitionErr.To.String())
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncStageTransition(record.PreviousStage.String(), record.NewStage.String())
	}

	s.notifyStageChange(ctx, application, record.NewStage)

	return application, nil
}

// Get returns one application, restricted to the candidate who owns it, the
// recruiter who posted the job, or an admin.
func (s *ApplicationService) Get(ctx context.Context, actor *domain.User, id string) (*domain.Application, error) {
	application, err := s.applications.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(ctx, actor, application); err != nil {
		return nil, err
	}
	return application, nil
}

// History returns the transition history oldest-first.
func (s *ApplicationService) History(ctx context.Context, actor *domain.User, id string) ([]domain.ApplicationHistory, error) {
	application, err := s.applications.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(ctx, actor, application); err != nil {
		return nil, err
	}
	return s.applications.ListHistory(ctx, application.ID)
}

// ListOwn returns the calling candidate's applications, newest first.
func (s *ApplicationService) ListOwn(ctx context.Context, actor *domain.User, limit int) ([]domain.Application, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: actor is required", domain.ErrUnauthorized)
	}
	return s.applications.ListByCandidate(ctx, actor.ID, limit)
}

// ListForJob returns applications for one posting, optionally filtered by
// stage. Recruiters see only their own postings.
func (s *ApplicationService) ListForJob(
	ctx context.Context,
	actor *domain.User,
	jobID string,
	stage *domain.Stage,
) ([]domain.Application, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: actor is required", domain.ErrUnauthorized)
	}

	job, err := s.jobs.GetByID(ctx, strings.TrimSpace(jobID))
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && job.PostedBy != actor.ID {
		return nil, fmt.Errorf("%w: job %s belongs to another recruiter", domain.ErrUnauthorized, job.ID)
	}

	return s.applications.ListByJob(ctx, job.ID, stage)
}

func (s *ApplicationService) authorizeStageChange(ctx context.Context, actor *domain.User, applicationID string) error {
	if actor == nil {
		return fmt.Errorf("%w: actor is required", domain.ErrUnauthorized)
	}
	if strings.TrimSpace(applicationID) == "" {
		return fmt.Errorf("%w: application id is required", domain.ErrValidation)
	}

	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleRecruiter:
		application, err := s.applications.GetByID(ctx, applicationID)
		if err != nil {
			return err
		}
		job, err := s.jobs.GetByID(ctx, application.JobID)
		if err != nil {
			return err
		}
		if job.PostedBy != actor.ID {
			return fmt.Errorf("%w: job %s belongs to another recruiter", domain.ErrUnauthorized, job.ID)
		}
		return nil
	default:
		return fmt.Errorf("%w: candidates cannot change application stages", domain.ErrUnauthorized)
	}
}

func (s *ApplicationService) authorizeView(ctx context.Context, actor *domain.User, application *domain.Application) error {
	if actor == nil {
		return fmt.Errorf("%w: actor is required", domain.ErrUnauthorized)
	}

	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleCandidate:
		if application.CandidateID == actor.ID {
			return nil
		}
	case domain.RoleRecruiter:
		job, err := s.jobs.GetByID(ctx, application.JobID)
		if err != nil {
			return err
		}
		if job.PostedBy == actor.ID {
			return nil
		}
	}

	return fmt.Errorf("%w: application %s is not visible to this user", domain.ErrUnauthorized, application.ID)
}

func (s *ApplicationService) notifyStageChange(ctx context.Context, application *domain.Application, newStage domain.Stage) {
	candidate, err := s.users.GetByID(ctx, application.CandidateID)
	if err != nil {
		s.logger.Warn("failed to load candidate for stage change notification",
			zap.String("applicationId", application.ID),
			zap.String("candidateId", application.CandidateID),
			zap.Error(err),
		)
		return
	}

	title := application.JobID
	if job, err := s.jobs.GetByID(ctx, application.JobID); err == nil {
		title = job.Title
	}

	s.enqueueEmail(ctx, candidate.Email, subjectStatusUpdated,
		fmt.Sprintf("Your application for %s is now at stage: %s.", title, newStage))
}

func (s *ApplicationService) enqueueEmail(ctx context.Context, recipient, subject, body string) {
	if _, err := s.emails.Enqueue(ctx, recipient, subject, body); err != nil {
		s.logger.Error("failed to enqueue email",
			zap.String("recipient", recipient),
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}
