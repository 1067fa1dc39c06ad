package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kursadbilgin/hiretrack/internal/domain"
	"github.com/kursadbilgin/hiretrack/internal/queue"
	"go.uber.org/zap"
)

func newTestEmailService(t *testing.T, tasks *fakeEmailTaskRepo, publisher *fakePublisher) *EmailService {
	t.Helper()

	svc, err := NewEmailService(tasks, publisher, 3, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEmailService() error = %v", err)
	}
	return svc
}

func TestEnqueuePersistsThenPublishes(t *testing.T) {
	t.Parallel()

	var created *domain.EmailTask
	clearedID := ""
	tasks := &fakeEmailTaskRepo{
		createFn: func(ctx context.Context, task *domain.EmailTask) error {
			copied := *task
			created = &copied
			return nil
		},
		clearNextRetryAtFn: func(ctx context.Context, id string) error {
			clearedID = id
			return nil
		},
	}
	publisher := &fakePublisher{}

	svc := newTestEmailService(t, tasks, publisher)

	task, err := svc.Enqueue(context.Background(), "to@example.com", "Application Submitted", "body")
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	if created == nil {
		t.Fatal("task row should be created before publish")
	}
	if created.Status != domain.EmailStatusPending {
		t.Fatalf("created status = %s, want %s", created.Status, domain.EmailStatusPending)
	}
	if created.NextRetryAt == nil {
		t.Fatal("created task should be due immediately for the scanner")
	}
	if created.MaxAttempts != 3 {
		t.Fatalf("maxAttempts = %d, want 3", created.MaxAttempts)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("published messages = %d, want 1", len(publisher.published))
	}
	if publisher.published[0].queueName != queue.EmailQueueName {
		t.Fatalf("queue = %q, want %q", publisher.published[0].queueName, queue.EmailQueueName)
	}
	if publisher.published[0].msg.TaskID != created.ID {
		t.Fatalf("message taskId = %q, want %q", publisher.published[0].msg.TaskID, created.ID)
	}

	if clearedID != created.ID {
		t.Fatalf("clearedID = %q, want %q", clearedID, created.ID)
	}
	if task.Status != domain.EmailStatusQueued {
		t.Fatalf("returned status = %s, want %s", task.Status, domain.EmailStatusQueued)
	}
	if task.NextRetryAt != nil {
		t.Fatal("queued task should have no pending retry timestamp")
	}
}

func TestEnqueueCreateFailureIsFatal(t *testing.T) {
	t.Parallel()

	tasks := &fakeEmailTaskRepo{
		createFn: func(ctx context.Context, task *domain.EmailTask) error {
			return errors.New("database down")
		},
	}
	publisher := &fakePublisher{}

	svc := newTestEmailService(t, tasks, publisher)

	_, err := svc.Enqueue(context.Background(), "to@example.com", "subject", "body")
	if err == nil {
		t.Fatal("expected error when task row cannot be created")
	}
	if len(publisher.published) != 0 {
		t.Fatal("nothing should be published when the row is not durable")
	}
}

func TestEnqueuePublishFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	cleared := false
	tasks := &fakeEmailTaskRepo{
		clearNextRetryAtFn: func(ctx context.Context, id string) error {
			cleared = true
			return nil
		},
	}
	publisher := &fakePublisher{
		publishFn: func(ctx context.Context, queueName string, msg queue.EmailMessage) error {
			return errors.New("broker unavailable")
		},
	}

	svc := newTestEmailService(t, tasks, publisher)

	task, err := svc.Enqueue(context.Background(), "to@example.com", "subject", "body")
	if err != nil {
		t.Fatalf("Enqueue() error = %v, want nil past durable acceptance", err)
	}
	if task == nil {
		t.Fatal("task should be returned despite publish failure")
	}
	if task.Status != domain.EmailStatusPending {
		t.Fatalf("status = %s, want %s (scanner will republish)", task.Status, domain.EmailStatusPending)
	}
	if task.NextRetryAt == nil {
		t.Fatal("task should stay due so the scanner picks it up")
	}
	if cleared {
		t.Fatal("next retry timestamp must not be cleared on publish failure")
	}
}

func TestEnqueueValidatesRecipient(t *testing.T) {
	t.Parallel()

	svc := newTestEmailService(t, &fakeEmailTaskRepo{}, &fakePublisher{})

	_, err := svc.Enqueue(context.Background(), "  ", "subject", "body")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Enqueue() error = %v, want %v", err, domain.ErrValidation)
	}
}

type publishedMessage struct {
	queueName string
	msg       queue.EmailMessage
}

type fakePublisher struct {
	publishFn func(ctx context.Context, queueName string, msg queue.EmailMessage) error
	published []publishedMessage
}

func (f *fakePublisher) Publish(ctx context.Context, queueName string, msg queue.EmailMessage) error {
	f.published = append(f.published, publishedMessage{queueName: queueName, msg: msg})
	if f.publishFn != nil {
		return f.publishFn(ctx, queueName, msg)
	}
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeEmailTaskRepo struct {
	createFn           func(ctx context.Context, task *domain.EmailTask) error
	getByIDFn          func(ctx context.Context, id string) (*domain.EmailTask, error)
	updateStatusFn     func(ctx context.Context, id string, status domain.EmailStatus) error
	updateWithRetryFn  func(ctx context.Context, id string, status domain.EmailStatus, nextRetryAt time.Time) error
	markFailedFn       func(ctx context.Context, id string) error
	lockForSendingFn   func(ctx context.Context, id string) (*domain.EmailTask, error)
	getDueForRetryFn   func(ctx context.Context, limit int) ([]domain.EmailTask, error)
	clearNextRetryAtFn func(ctx context.Context, id string) error
	deleteFn           func(ctx context.Context, id string) error
	listFailedFn       func(ctx context.Context, limit int) ([]domain.EmailTask, error)
}

func (f *fakeEmailTaskRepo) Create(ctx context.Context, task *domain.EmailTask) error {
	if f.createFn != nil {
		return f.createFn(ctx, task)
	}
	return nil
}

func (f *fakeEmailTaskRepo) GetByID(ctx context.Context, id string) (*domain.EmailTask, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEmailTaskRepo) UpdateStatus(ctx context.Context, id string, status domain.EmailStatus) error {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, id, status)
	}
	return nil
}

func (f *fakeEmailTaskRepo) UpdateStatusWithRetry(ctx context.Context, id string, status domain.EmailStatus, nextRetryAt time.Time) error {
	if f.updateWithRetryFn != nil {
		return f.updateWithRetryFn(ctx, id, status, nextRetryAt)
	}
	return nil
}

func (f *fakeEmailTaskRepo) MarkFailed(ctx context.Context, id string) error {
	if f.markFailedFn != nil {
		return f.markFailedFn(ctx, id)
	}
	return nil
}

func (f *fakeEmailTaskRepo) LockForSending(ctx context.Context, id string) (*domain.EmailTask, error) {
	if f.lockForSendingFn != nil {
		return f.lockForSendingFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEmailTaskRepo) GetDueForRetry(ctx context.Context, limit int) ([]domain.EmailTask, error) {
	if f.getDueForRetryFn != nil {
		return f.getDueForRetryFn(ctx, limit)
	}
	return nil, nil
}

func (f *fakeEmailTaskRepo) ClearNextRetryAt(ctx context.Context, id string) error {
	if f.clearNextRetryAtFn != nil {
		return f.clearNextRetryAtFn(ctx, id)
	}
	return nil
}

func (f *fakeEmailTaskRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeEmailTaskRepo) ListFailed(ctx context.Context, limit int) ([]domain.EmailTask, error) {
	if f.listFailedFn != nil {
		return f.listFailedFn(ctx, limit)
	}
	return nil, nil
}
