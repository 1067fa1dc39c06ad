package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kursadbilgin/hiretrack/internal/queue"
	"github.com/kursadbilgin/hiretrack/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultRetryScanInterval = 5 * time.Second
	defaultRetryScanLimit    = 100
)

// RetryScanner periodically re-enqueues due email tasks. It also sweeps up
// tasks whose initial publish never reached the broker.
type RetryScanner struct {
	tasks     repository.EmailTaskRepository
	publisher queue.Publisher
	logger    *zap.Logger
	interval  time.Duration
	limit     int
}

func NewRetryScanner(
	tasks repository.EmailTaskRepository,
	publisher queue.Publisher,
	interval time.Duration,
	limit int,
	logger *zap.Logger,
) (*RetryScanner, error) {
	if tasks == nil {
		return nil, fmt.Errorf("email task repository is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	if interval <= 0 {
		interval = defaultRetryScanInterval
	}
	if limit <= 0 {
		limit = defaultRetryScanLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RetryScanner{
		tasks:     tasks,
		publisher: publisher,
		logger:    logger,
		interval:  interval,
		limit:     limit,
	}, nil
}

func (s *RetryScanner) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Run an initial scan so already-due tasks do not wait for the first ticker edge.
	if err := s.scanDue(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("retry scanner initial scan failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.scanDue(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Error("retry scanner scan failed", zap.Error(err))
			}
		}
	}
}

func (s *RetryScanner) scanDue(ctx context.Context) error {
	dueTasks, err := s.tasks.GetDueForRetry(ctx, s.limit)
	if err != nil {
		return fmt.Errorf("failed to fetch due email tasks: %w", err)
	}

	for i := range dueTasks {
		task := dueTasks[i]
		msg := queue.EmailMessage{TaskID: task.ID}

		if err := s.publisher.Publish(ctx, queue.EmailQueueName, msg); err != nil {
			s.logger.Error("failed to enqueue retry email task",
				zap.String("taskId", task.ID),
				zap.Error(err),
			)
			continue
		}

		if err := s.tasks.ClearNextRetryAt(ctx, task.ID); err != nil {
			s.logger.Error("failed to clear next retry timestamp after enqueue",
				zap.String("taskId", task.ID),
				zap.Error(err),
			)
			continue
		}
	}

	return nil
}
