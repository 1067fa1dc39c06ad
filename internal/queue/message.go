package queue

import (
	"fmt"
	"strings"
)

// EmailMessage is the broker payload for email delivery. The task body lives
// in the database; the message only carries the reference.
type EmailMessage struct {
	TaskID        string `json:"taskId"`
	CorrelationID string `json:"correlationId,omitempty"`
}

func (m EmailMessage) Validate() error {
	if strings.TrimSpace(m.TaskID) == "" {
		return fmt.Errorf("taskId is required")
	}
	return nil
}
