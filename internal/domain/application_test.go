package domain

import (
	"errors"
	"testing"
)

func TestApplicationValidate(t *testing.T) {
	t.Parallel()

	app := &Application{
		CandidateID: "c1",
		JobID:       "j1",
		Stage:       StageApplied,
	}
	if err := app.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Application)
	}{
		{"missing candidate", func(a *Application) { a.CandidateID = " " }},
		{"missing job", func(a *Application) { a.JobID = "" }},
		{"unknown stage", func(a *Application) { a.Stage = "Limbo" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			broken := *app
			tt.mutate(&broken)
			if err := broken.Validate(); !errors.Is(err, ErrValidation) {
				t.Fatalf("Validate() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestEmailTaskValidate(t *testing.T) {
	t.Parallel()

	task := &EmailTask{
		Recipient: "candidate@example.com",
		Subject:   "Application Submitted",
		Body:      "Your application for Backend Engineer has been submitted.",
		Status:    EmailStatusPending,
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	task.Recipient = ""
	if err := task.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("Validate() error = %v, want ErrValidation", err)
	}
}

func TestParseRoleFromString(t *testing.T) {
	t.Parallel()

	role, err := ParseRoleFromString(" Recruiter ")
	if err != nil {
		t.Fatalf("ParseRoleFromString() error = %v", err)
	}
	if role != RoleRecruiter {
		t.Fatalf("role = %s, want recruiter", role)
	}

	if _, err := ParseRoleFromString("superuser"); !errors.Is(err, ErrValidation) {
		t.Fatalf("ParseRoleFromString(superuser) error = %v, want ErrValidation", err)
	}
}
