package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/hiretrack/internal/domain"
	"github.com/kursadbilgin/hiretrack/internal/mailer"
	"github.com/kursadbilgin/hiretrack/internal/observability"
	"github.com/kursadbilgin/hiretrack/internal/queue"
	"github.com/kursadbilgin/hiretrack/internal/ratelimit"
	"github.com/kursadbilgin/hiretrack/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	minWorkerConcurrency = 1
	mailRateBucket       = "mail"
	maxRetryDelay        = 60 * time.Second
	baseRetryDelay       = 5 * time.Second
	maxRetryJitterMillis = 250
)

// WorkerService drains the email queue. Delivery is at-least-once: a crash
// between send and bookkeeping redelivers the message, and the SENDING claim
// keeps two live workers off the same task.
type WorkerService struct {
	tasks       repository.EmailTaskRepository
	attempts    repository.AttemptRepository
	consumer    queue.Consumer
	mailer      mailer.Mailer
	rateLimiter ratelimit.RateLimiter
	logger      *zap.Logger
	metrics     *observability.Metrics
	concurrency int
	now         func() time.Time
	randIntn    func(n int) int
}

func NewWorkerService(
	tasks repository.EmailTaskRepository,
	attempts repository.AttemptRepository,
	consumer queue.Consumer,
	m mailer.Mailer,
	rateLimiter ratelimit.RateLimiter,
	concurrency int,
	logger *zap.Logger,
) (*WorkerService, error) {
	if concurrency < minWorkerConcurrency {
		concurrency = minWorkerConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WorkerService{
		tasks:       tasks,
		attempts:    attempts,
		consumer:    consumer,
		mailer:      m,
		rateLimiter: rateLimiter,
		logger:      logger,
		concurrency: concurrency,
		now:         time.Now,
		randIntn:    rand.Intn,
	}, nil
}

func (s *WorkerService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Start consumes the email queue until context cancellation.
func (s *WorkerService) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	g, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < s.concurrency; i++ {
		workerID := i + 1

		g.Go(func() error {
			s.logger.Info("worker started",
				zap.Int("workerId", workerID),
				zap.String("queue", queue.EmailQueueName),
			)

			err := s.consumer.Consume(groupCtx, queue.EmailQueueName, s.processMessage)
			if err != nil {
				s.logger.Error("worker stopped with error",
					zap.Int("workerId", workerID),
					zap.Error(err),
				)
				return err
			}

			s.logger.Info("worker stopped", zap.Int("workerId", workerID))
			return nil
		})
	}

	return g.Wait()
}

func (s *WorkerService) processMessage(ctx context.Context, msg queue.EmailMessage) error {
	task, err := s.tasks.LockForSending(ctx, msg.TaskID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Already delivered and deleted, or never existed; ack and move on.
			s.logger.Debug("email task not found during lock, skipping",
				zap.String("taskId", msg.TaskID),
			)
			return nil
		}
		return fmt.Errorf("failed to lock email task for sending: %w", err)
	}

	// Nil means another worker claimed it or the task is terminal.
	if task == nil {
		return nil
	}

	if s.metrics != nil {
		s.metrics.IncWorkerInFlight()
		defer s.metrics.DecWorkerInFlight()
	}

	if err := s.rateLimiter.Wait(ctx, mailRateBucket); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	attemptNumber := task.AttemptCount + 1
	sendStart := s.now()
	resp, sendErr := s.mailer.Send(ctx, *task)
	if s.metrics != nil {
		s.metrics.ObserveEmailSendDuration(s.now().Sub(sendStart))
	}

	if err := s.recordAttempt(ctx, task.ID, attemptNumber, resp, sendErr); err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}

	if sendErr == nil {
		// Delivered tasks leave the queue; the attempt rows are the audit trail.
		if err := s.tasks.Delete(ctx, task.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("failed to remove delivered email task: %w", err)
		}
		if s.metrics != nil {
			s.metrics.IncEmailSent()
		}
		return nil
	}

	isTransient := mailer.IsTransient(sendErr)
	maxAttempts := task.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = domain.DefaultEmailMaxAttempts
	}

	if isTransient && attemptNumber < maxAttempts {
		nextRetryAt := s.now().Add(s.computeRetryDelay(attemptNumber))
		if err := s.tasks.UpdateStatusWithRetry(ctx, task.ID, domain.EmailStatusQueued, nextRetryAt); err != nil {
			return fmt.Errorf("failed to update email task for retry: %w", err)
		}
		if s.metrics != nil {
			s.metrics.IncRetryScheduled()
		}
		return nil
	}

	if err := s.tasks.MarkFailed(ctx, task.ID); err != nil {
		return fmt.Errorf("failed to mark email task as failed: %w", err)
	}
	if s.metrics != nil {
		reason := "permanent_error"
		if isTransient {
			reason = "retry_exhausted"
		}
		s.metrics.IncEmailFailed(reason)
	}
	s.logger.Warn("email task failed permanently",
		zap.String("taskId", task.ID),
		zap.Int("attempts", attemptNumber),
		zap.Bool("transient", isTransient),
	)

	return nil
}

func (s *WorkerService) computeRetryDelay(attemptNumber int) time.Duration {
	if attemptNumber < 1 {
		attemptNumber = 1
	}

	delay := baseRetryDelay
	for i := 1; i < attemptNumber; i++ {
		delay *= 2
		if delay >= maxRetryDelay {
			delay = maxRetryDelay
			break
		}
	}

	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}

	jitterMillis := 0
	if s.randIntn != nil && maxRetryJitterMillis > 0 {
		jitterMillis = s.randIntn(maxRetryJitterMillis + 1)
	}

	return delay + time.Duration(jitterMillis)*time.Millisecond
}

func (s *WorkerService) recordAttempt(
	ctx context.Context,
	taskID string,
	attemptNumber int,
	resp *mailer.SendResponse,
	sendErr error,
) error {
	var statusCode *int
	var responseBody *string
	var attemptErr *string

	if resp != nil {
		if resp.StatusCode > 0 {
			value := resp.StatusCode
			statusCode = &value
		}
		if body := strings.TrimSpace(resp.Body); body != "" {
			value := resp.Body
			responseBody = &value
		}
	}

	if sendErr != nil {
		value := sendErr.Error()
		attemptErr = &value

		var mailErr *mailer.SendError
		if errors.As(sendErr, &mailErr) && mailErr.StatusCode > 0 && statusCode == nil {
			value := mailErr.StatusCode
			statusCode = &value
		}
	}

	attempt := &domain.EmailAttempt{
		ID:            uuid.NewString(),
		EmailTaskID:   taskID,
		AttemptNumber: attemptNumber,
		StatusCode:    statusCode,
		ResponseBody:  responseBody,
		Error:         attemptErr,
		CreatedAt:     s.now().UTC(),
	}

	return s.attempts.Create(ctx, attempt)
}
