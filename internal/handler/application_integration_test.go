package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/hiretrack/internal/auth"
	"github.com/kursadbilgin/hiretrack/internal/domain"
	"github.com/kursadbilgin/hiretrack/internal/transport"
	"go.uber.org/zap"
)

type fakeApplicationService struct {
	submitFn      func(ctx context.Context, actor *domain.User, jobID string) (*domain.Application, error)
	changeStageFn func(ctx context.Context, actor *domain.User, applicationID string, newStage domain.Stage) (*domain.Application, error)
	getFn         func(ctx context.Context, actor *domain.User, id string) (*domain.Application, error)
	historyFn     func(ctx context.Context, actor *domain.User, id string) ([]domain.ApplicationHistory, error)
	listOwnFn     func(ctx context.Context, actor *domain.User, limit int) ([]domain.Application, error)
	listForJobFn  func(ctx context.Context, actor *domain.User, jobID string, stage *domain.Stage) ([]domain.Application, error)
}

func (f *fakeApplicationService) Submit(ctx context.Context, actor *domain.User, jobID string) (*domain.Application, error) {
	if f.submitFn != nil {
		return f.submitFn(ctx, actor, jobID)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeApplicationService) ChangeStage(ctx context.Context, actor *domain.User, applicationID string, newStage domain.Stage) (*domain.Application, error) {
	if f.changeStageFn != nil {
		return f.changeStageFn(ctx, actor, applicationID, newStage)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeApplicationService) Get(ctx context.Context, actor *domain.User, id string) (*domain.Application, error) {
	if f.getFn != nil {
		return f.getFn(ctx, actor, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeApplicationService) History(ctx context.Context, actor *domain.User, id string) ([]domain.ApplicationHistory, error) {
	if f.historyFn != nil {
		return f.historyFn(ctx, actor, id)
	}
	return nil, nil
}

func (f *fakeApplicationService) ListOwn(ctx context.Context, actor *domain.User, limit int) ([]domain.Application, error) {
	if f.listOwnFn != nil {
		return f.listOwnFn(ctx, actor, limit)
	}
	return nil, nil
}

func (f *fakeApplicationService) ListForJob(ctx context.Context, actor *domain.User, jobID string, stage *domain.Stage) ([]domain.Application, error) {
	if f.listForJobFn != nil {
		return f.listForJobFn(ctx, actor, jobID, stage)
	}
	return nil, nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error { return nil }

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) { return nil, nil }

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error { return nil }

func newTestApp(t *testing.T, svc ApplicationService) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(zap.NewNop()),
	})
	users := &fakeUserRepo{users: map[string]*domain.User{
		"cand-1": {ID: "cand-1", Name: "Jordan Lee", Email: "jordan@example.com", Role: domain.RoleCandidate},
		"rec-1":  {ID: "rec-1", Name: "Sam Recruiter", Email: "sam@acme.example.com", Role: domain.RoleRecruiter},
	}}
	app.Use(auth.Identity(users))

	if err := RegisterApplicationRoutes(app, svc); err != nil {
		t.Fatalf("RegisterApplicationRoutes() error = %v", err)
	}
	return app
}

func TestSubmitApplicationEndpoint(t *testing.T) {
	t.Parallel()

	svc := &fakeApplicationService{
		submitFn: func(ctx context.Context, actor *domain.User, jobID string) (*domain.Application, error) {
			if actor == nil || actor.ID != "cand-1" {
				t.Errorf("actor = %+v, want cand-1", actor)
			}
			return &domain.Application{ID: "app-1", CandidateID: actor.ID, JobID: jobID, Stage: domain.StageApplied}, nil
		},
	}
	app := newTestApp(t, svc)

	body, _ := json.Marshal(map[string]string{"jobId": "job-1"})
	req := httptest.NewRequest("POST", "/v1/applications", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.HeaderUserID, "cand-1")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var got applicationResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Stage != "Applied" {
		t.Fatalf("stage = %q, want Applied", got.Stage)
	}
}

func TestSubmitApplicationDuplicateConflict(t *testing.T) {
	t.Parallel()

	svc := &fakeApplicationService{
		submitFn: func(ctx context.Context, actor *domain.User, jobID string) (*domain.Application, error) {
			return nil, domain.ErrDuplicateApplication
		},
	}
	app := newTestApp(t, svc)

	body, _ := json.Marshal(map[string]string{"jobId": "job-1"})
	req := httptest.NewRequest("POST", "/v1/applications", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.HeaderUserID, "cand-1")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
}

func TestSubmitApplicationMissingIdentity(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeApplicationService{})

	body, _ := json.Marshal(map[string]string{"jobId": "job-1"})
	req := httptest.NewRequest("POST", "/v1/applications", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestChangeStageEndpoint(t *testing.T) {
	t.Parallel()

	svc := &fakeApplicationService{
		changeStageFn: func(ctx context.Context, actor *domain.User, applicationID string, newStage domain.Stage) (*domain.Application, error) {
			if newStage != domain.StageScreening {
				t.Errorf("newStage = %s, want Screening", newStage)
			}
			return &domain.Application{ID: applicationID, CandidateID: "cand-1", JobID: "job-1", Stage: newStage}, nil
		},
	}
	app := newTestApp(t, svc)

	body, _ := json.Marshal(map[string]string{"stage": "Screening"})
	req := httptest.NewRequest("PATCH", "/v1/applications/app-1/stage", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.HeaderUserID, "rec-1")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestChangeStageInvalidTransitionBadRequest(t *testing.T) {
	t.Parallel()

	svc := &fakeApplicationService{
		changeStageFn: func(ctx context.Context, actor *domain.User, applicationID string, newStage domain.Stage) (*domain.Application, error) {
			return nil, &domain.InvalidTransitionError{From: domain.StageHired, To: newStage}
		},
	}
	app := newTestApp(t, svc)

	body, _ := json.Marshal(map[string]string{"stage": "Applied"})
	req := httptest.NewRequest("PATCH", "/v1/applications/app-1/stage", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.HeaderUserID, "rec-1")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var errBody map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if msg := errBody["error"]; msg == "" {
		t.Fatal("error message should report the rejected transition")
	}
}

func TestChangeStageUnknownStage(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeApplicationService{})

	body, _ := json.Marshal(map[string]string{"stage": "Limbo"})
	req := httptest.NewRequest("PATCH", "/v1/applications/app-1/stage", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.HeaderUserID, "rec-1")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetApplicationNotFound(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &fakeApplicationService{})

	req := httptest.NewRequest("GET", "/v1/applications/missing", nil)
	req.Header.Set(auth.HeaderUserID, "cand-1")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestUnauthorizedMapsToForbidden(t *testing.T) {
	t.Parallel()

	svc := &fakeApplicationService{
		getFn: func(ctx context.Context, actor *domain.User, id string) (*domain.Application, error) {
			return nil, domain.ErrUnauthorized
		},
	}
	app := newTestApp(t, svc)

	req := httptest.NewRequest("GET", "/v1/applications/app-1", nil)
	req.Header.Set(auth.HeaderUserID, "cand-1")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}

func TestListJobApplicationsStageFilter(t *testing.T) {
	t.Parallel()

	var gotStage *domain.Stage
	svc := &fakeApplicationService{
		listForJobFn: func(ctx context.Context, actor *domain.User, jobID string, stage *domain.Stage) ([]domain.Application, error) {
			gotStage = stage
			return []domain.Application{{ID: "app-1", JobID: jobID, Stage: domain.StageInterview}}, nil
		},
	}
	app := newTestApp(t, svc)

	req := httptest.NewRequest("GET", "/v1/jobs/job-1/applications?stage=Interview", nil)
	req.Header.Set(auth.HeaderUserID, "rec-1")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if gotStage == nil || *gotStage != domain.StageInterview {
		t.Fatalf("stage filter = %v, want Interview", gotStage)
	}
}
