package domain

import (
	"fmt"
	"strings"
	"time"
)

// Application is a candidate's submission against a job posting. At most one
// application exists per (candidate, job) pair; the stage field is mutated
// only by the stage transition engine.
type Application struct {
	ID          string
	CandidateID string
	JobID       string
	Stage       Stage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (a *Application) Validate() error {
	if a == nil {
		return fmt.Errorf("%w: application is required", ErrValidation)
	}
	if strings.TrimSpace(a.CandidateID) == "" {
		return fmt.Errorf("%w: candidate id is required", ErrValidation)
	}
	if strings.TrimSpace(a.JobID) == "" {
		return fmt.Errorf("%w: job id is required", ErrValidation)
	}
	if !a.Stage.IsValid() {
		return fmt.Errorf("%w: invalid stage %q", ErrValidation, a.Stage)
	}
	return nil
}

// ApplicationHistory is an immutable audit record of one stage transition.
// Exactly one record is written per successful transition, in the same
// transaction as the stage update.
type ApplicationHistory struct {
	ID            string
	ApplicationID string
	PreviousStage Stage
	NewStage      Stage
	ChangedBy     *string
	CreatedAt     time.Time
}
