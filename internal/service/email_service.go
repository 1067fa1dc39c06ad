package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/hiretrack/internal/domain"
	"github.com/kursadbilgin/hiretrack/internal/observability"
	"github.com/kursadbilgin/hiretrack/internal/queue"
	"github.com/kursadbilgin/hiretrack/internal/repository"
	"go.uber.org/zap"
)

// EmailService accepts email tasks into the durable queue. A task is accepted
// once its row is committed; the broker publish that follows is best-effort,
// the retry scanner picks up anything the broker did not take.
type EmailService struct {
	tasks       repository.EmailTaskRepository
	publisher   queue.Publisher
	logger      *zap.Logger
	maxAttempts int
	now         func() time.Time
}

func NewEmailService(
	tasks repository.EmailTaskRepository,
	publisher queue.Publisher,
	maxAttempts int,
	logger *zap.Logger,
) (*EmailService, error) {
	if tasks == nil {
		return nil, fmt.Errorf("email task repository is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	if maxAttempts <= 0 {
		maxAttempts = domain.DefaultEmailMaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &EmailService{
		tasks:       tasks,
		publisher:   publisher,
		logger:      logger,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}, nil
}

// Enqueue persists the task and hands it to the broker. The returned error is
// non-nil only when the task could not be durably accepted; a failed publish
// is logged and left for the retry scanner.
func (s *EmailService) Enqueue(ctx context.Context, recipient, subject, body string) (*domain.EmailTask, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	now := s.now().UTC()
	task := &domain.EmailTask{
		ID:          uuid.NewString(),
		Recipient:   strings.TrimSpace(recipient),
		Subject:     strings.TrimSpace(subject),
		Body:        body,
		Status:      domain.EmailStatusPending,
		MaxAttempts: s.maxAttempts,
		// Due immediately, so the scanner re-publishes if the broker is down.
		NextRetryAt: &now,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to persist email task: %w", err)
	}

	correlationID, _ := observability.CorrelationIDFromContext(ctx)
	msg := queue.EmailMessage{
		TaskID:        task.ID,
		CorrelationID: correlationID,
	}
	if err := s.publisher.Publish(ctx, queue.EmailQueueName, msg); err != nil {
		s.logger.Error("failed to publish email task, leaving for retry scanner",
			zap.String("taskId", task.ID),
			zap.Error(err),
		)
		return task, nil
	}

	if err := s.tasks.ClearNextRetryAt(ctx, task.ID); err != nil {
		s.logger.Error("failed to mark email task as queued after publish",
			zap.String("taskId", task.ID),
			zap.Error(err),
		)
		return task, nil
	}
	task.Status = domain.EmailStatusQueued
	task.NextRetryAt = nil

	return task, nil
}
