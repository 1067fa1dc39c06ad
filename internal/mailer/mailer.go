package mailer

import (
	"context"

	"github.com/kursadbilgin/hiretrack/internal/domain"
)

// Mailer is the outbound email delivery port. The wire protocol behind it is
// an external concern; callers only see success or a classified error.
type Mailer interface {
	Send(ctx context.Context, task domain.EmailTask) (*SendResponse, error)
}

// SendResponse stores gateway call metadata for audit and persistence.
type SendResponse struct {
	StatusCode int
	Body       string
	MessageID  string
}
