package domain

import (
	"fmt"
	"strings"
	"time"
)

// JobStatus represents whether a posting accepts new applications.
type JobStatus string

const (
	JobStatusOpen   JobStatus = "Open"
	JobStatusClosed JobStatus = "Closed"
)

func (s JobStatus) String() string { return string(s) }

func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusOpen, JobStatusClosed:
		return true
	}
	return false
}

// Job is a posting candidates apply to. PostedBy references the recruiter who
// owns the posting and receives submission alerts.
type Job struct {
	ID          string
	Title       string
	Description string
	CompanyID   string
	PostedBy    string
	Status      JobStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (j *Job) Validate() error {
	if j == nil {
		return fmt.Errorf("%w: job is required", ErrValidation)
	}
	if strings.TrimSpace(j.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(j.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if strings.TrimSpace(j.PostedBy) == "" {
		return fmt.Errorf("%w: posting recruiter is required", ErrValidation)
	}
	if !j.Status.IsValid() {
		return fmt.Errorf("%w: invalid job status %q", ErrValidation, j.Status)
	}
	return nil
}
