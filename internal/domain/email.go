package domain

import (
	"fmt"
	"strings"
	"time"
)

// EmailStatus represents the lifecycle state of an email task. Delivered
// tasks are deleted rather than kept in a terminal state; FAILED tasks stay
// queryable for inspection.
type EmailStatus string

const (
	// EmailStatusPending means the task row exists but has not been handed
	// to the broker yet (durably accepted, awaiting publish).
	EmailStatusPending EmailStatus = "PENDING"
	EmailStatusQueued  EmailStatus = "QUEUED"
	EmailStatusSending EmailStatus = "SENDING"
	EmailStatusFailed  EmailStatus = "FAILED"
)

func (s EmailStatus) String() string { return string(s) }

func (s EmailStatus) IsValid() bool {
	switch s {
	case EmailStatusPending, EmailStatusQueued, EmailStatusSending, EmailStatusFailed:
		return true
	}
	return false
}

// DefaultEmailMaxAttempts is the delivery retry budget per task.
const DefaultEmailMaxAttempts = 3

// EmailTask is a durable, retryable unit of asynchronous email delivery.
type EmailTask struct {
	ID           string
	Recipient    string
	Subject      string
	Body         string
	Status       EmailStatus
	AttemptCount int
	MaxAttempts  int
	NextRetryAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (t *EmailTask) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: email task is required", ErrValidation)
	}
	if strings.TrimSpace(t.Recipient) == "" {
		return fmt.Errorf("%w: recipient is required", ErrValidation)
	}
	if strings.TrimSpace(t.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrValidation)
	}
	if strings.TrimSpace(t.Body) == "" {
		return fmt.Errorf("%w: body is required", ErrValidation)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: invalid email status %q", ErrValidation, t.Status)
	}
	return nil
}

// EmailAttempt records a single delivery attempt for an email task. Attempts
// outlive their task, so the audit trail survives delivery.
type EmailAttempt struct {
	ID            string
	EmailTaskID   string
	AttemptNumber int
	StatusCode    *int
	ResponseBody  *string
	Error         *string
	CreatedAt     time.Time
}
