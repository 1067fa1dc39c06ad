package repository

import (
	"time"

	"github.com/kursadbilgin/hiretrack/internal/domain"
)

// UserModel is the persistence model for the users table.
type UserModel struct {
	ID        string      `gorm:"type:uuid;primaryKey"`
	Name      string      `gorm:"type:varchar(255);not null"`
	Email     string      `gorm:"type:varchar(255);not null;uniqueIndex"`
	Role      domain.Role `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserModel) TableName() string {
	return "users"
}

// JobModel is the persistence model for the jobs table.
type JobModel struct {
	ID          string           `gorm:"type:uuid;primaryKey"`
	Title       string           `gorm:"type:varchar(255);not null"`
	Description string           `gorm:"type:text;not null"`
	CompanyID   string           `gorm:"type:uuid"`
	PostedBy    string           `gorm:"type:uuid;not null"`
	Status      domain.JobStatus `gorm:"type:varchar(10);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (JobModel) TableName() string {
	return "jobs"
}

// ApplicationModel is the persistence model for the applications table. The
// unique index on (candidate_id, job_id) enforces one application per pair.
type ApplicationModel struct {
	ID          string       `gorm:"type:uuid;primaryKey"`
	CandidateID string       `gorm:"type:uuid;not null;uniqueIndex:idx_applications_candidate_job"`
	JobID       string       `gorm:"type:uuid;not null;uniqueIndex:idx_applications_candidate_job"`
	Stage       domain.Stage `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ApplicationModel) TableName() string {
	return "applications"
}

// ApplicationHistoryModel is the persistence model for application_history.
// Rows are append-only; nothing updates or deletes them.
type ApplicationHistoryModel struct {
	ID            string       `gorm:"type:uuid;primaryKey"`
	ApplicationID string       `gorm:"type:uuid;not null"`
	PreviousStage domain.Stage `gorm:"type:varchar(20);not null"`
	NewStage      domain.Stage `gorm:"type:varchar(20);not null"`
	ChangedBy     *string      `gorm:"type:uuid"`
	CreatedAt     time.Time
}

func (ApplicationHistoryModel) TableName() string {
	return "application_history"
}

// EmailTaskModel is the persistence model for email_tasks.
type EmailTaskModel struct {
	ID           string             `gorm:"type:uuid;primaryKey"`
	Recipient    string             `gorm:"type:varchar(255);not null"`
	Subject      string             `gorm:"type:varchar(255);not null"`
	Body         string             `gorm:"type:text;not null"`
	Status       domain.EmailStatus `gorm:"type:varchar(20);not null"`
	AttemptCount int                `gorm:"not null;default:0"`
	MaxAttempts  int                `gorm:"not null;default:3"`
	NextRetryAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (EmailTaskModel) TableName() string {
	return "email_tasks"
}

// EmailAttemptModel is the persistence model for email_attempts.
type EmailAttemptModel struct {
	ID            string  `gorm:"type:uuid;primaryKey"`
	EmailTaskID   string  `gorm:"type:uuid;not null"`
	AttemptNumber int     `gorm:"not null"`
	StatusCode    *int    `gorm:"type:int"`
	ResponseBody  *string `gorm:"type:text"`
	Error         *string `gorm:"type:text"`
	CreatedAt     time.Time
}

func (EmailAttemptModel) TableName() string {
	return "email_attempts"
}

func userModelFromDomain(u *domain.User) *UserModel {
	if u == nil {
		return nil
	}
	return &UserModel{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func userModelToDomain(m *UserModel) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func jobModelFromDomain(j *domain.Job) *JobModel {
	if j == nil {
		return nil
	}
	return &JobModel{
		ID:          j.ID,
		Title:       j.Title,
		Description: j.Description,
		CompanyID:   j.CompanyID,
		PostedBy:    j.PostedBy,
		Status:      j.Status,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

func jobModelToDomain(m *JobModel) *domain.Job {
	if m == nil {
		return nil
	}
	return &domain.Job{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		CompanyID:   m.CompanyID,
		PostedBy:    m.PostedBy,
		Status:      m.Status,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func applicationModelFromDomain(a *domain.Application) *ApplicationModel {
	if a == nil {
		return nil
	}
	return &ApplicationModel{
		ID:          a.ID,
		CandidateID: a.CandidateID,
		JobID:       a.JobID,
		Stage:       a.Stage,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func applicationModelToDomain(m *ApplicationModel) *domain.Application {
	if m == nil {
		return nil
	}
	return &domain.Application{
		ID:          m.ID,
		CandidateID: m.CandidateID,
		JobID:       m.JobID,
		Stage:       m.Stage,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func historyModelToDomain(m *ApplicationHistoryModel) *domain.ApplicationHistory {
	if m == nil {
		return nil
	}
	return &domain.ApplicationHistory{
		ID:            m.ID,
		ApplicationID: m.ApplicationID,
		PreviousStage: m.PreviousStage,
		NewStage:      m.NewStage,
		ChangedBy:     m.ChangedBy,
		CreatedAt:     m.CreatedAt,
	}
}

func emailTaskModelFromDomain(t *domain.EmailTask) *EmailTaskModel {
	if t == nil {
		return nil
	}
	return &EmailTaskModel{
		ID:           t.ID,
		Recipient:    t.Recipient,
		Subject:      t.Subject,
		Body:         t.Body,
		Status:       t.Status,
		AttemptCount: t.AttemptCount,
		MaxAttempts:  t.MaxAttempts,
		NextRetryAt:  t.NextRetryAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func emailTaskModelToDomain(m *EmailTaskModel) *domain.EmailTask {
	if m == nil {
		return nil
	}
	return &domain.EmailTask{
		ID:           m.ID,
		Recipient:    m.Recipient,
		Subject:      m.Subject,
		Body:         m.Body,
		Status:       m.Status,
		AttemptCount: m.AttemptCount,
		MaxAttempts:  m.MaxAttempts,
		NextRetryAt:  m.NextRetryAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func emailAttemptModelFromDomain(a *domain.EmailAttempt) *EmailAttemptModel {
	if a == nil {
		return nil
	}
	return &EmailAttemptModel{
		ID:            a.ID,
		EmailTaskID:   a.EmailTaskID,
		AttemptNumber: a.AttemptNumber,
		StatusCode:    a.StatusCode,
		ResponseBody:  a.ResponseBody,
		Error:         a.Error,
		CreatedAt:     a.CreatedAt,
	}
}

func emailAttemptModelToDomain(m *EmailAttemptModel) *domain.EmailAttempt {
	if m == nil {
		return nil
	}
	return &domain.EmailAttempt{
		ID:            m.ID,
		EmailTaskID:   m.EmailTaskID,
		AttemptNumber: m.AttemptNumber,
		StatusCode:    m.StatusCode,
		ResponseBody:  m.ResponseBody,
		Error:         m.Error,
		CreatedAt:     m.CreatedAt,
	}
}
