package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/hiretrack/internal/auth"
	"github.com/kursadbilgin/hiretrack/internal/domain"
)

const ownApplicationsLimit = 100

type ApplicationService interface {
	Submit(ctx context.Context, actor *domain.User, jobID string) (*domain.Application, error)
	ChangeStage(ctx context.Context, actor *domain.User, applicationID string, newStage domain.Stage) (*domain.Application, error)
	Get(ctx context.Context, actor *domain.User, id string) (*domain.Application, error)
	History(ctx context.Context, actor *domain.User, id string) ([]domain.ApplicationHistory, error)
	ListOwn(ctx context.Context, actor *domain.User, limit int) ([]domain.Application, error)
	ListForJob(ctx context.Context, actor *domain.User, jobID string, stage *domain.Stage) ([]domain.Application, error)
}

type ApplicationHandler struct {
	service ApplicationService
}

func NewApplicationHandler(service ApplicationService) (*ApplicationHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("application service is required")
	}
	return &ApplicationHandler{service: service}, nil
}

func RegisterApplicationRoutes(router fiber.Router, service ApplicationService) error {
	h, err := NewApplicationHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/applications", h.SubmitApplication)
	v1.Get("/applications", h.ListOwnApplications)
	v1.Get("/applications/:id", h.GetApplication)
	v1.Get("/applications/:id/history", h.GetApplicationHistory)
	v1.Patch("/applications/:id/stage", h.ChangeApplicationStage)
	v1.Get("/jobs/:jobId/applications", h.ListJobApplications)

	return nil
}

type submitApplicationRequest struct {
	JobID string `json:"jobId"`
}

type changeStageRequest struct {
	Stage string `json:"stage"`
}

type applicationResponse struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidateId"`
	JobID       string    `json:"jobId"`
	Stage       string    `json:"stage"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type historyEntryResponse struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"applicationId"`
	PreviousStage string    `json:"previousStage"`
	NewStage      string    `json:"newStage"`
	ChangedBy     *string   `json:"changedBy,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (h *ApplicationHandler) SubmitApplication(c *fiber.Ctx) error {
	var req submitApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	application, err := h.service.Submit(c.Context(), auth.Actor(c), req.JobID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toApplicationResponse(application))
}

func (h *ApplicationHandler) ChangeApplicationStage(c *fiber.Ctx) error {
	var req changeStageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	stage, err := domain.ParseStageFromString(req.Stage)
	if err != nil {
		return toHTTPError(err)
	}

	id := strings.TrimSpace(c.Params("id"))
	application, err := h.service.ChangeStage(c.Context(), auth.Actor(c), id, stage)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toApplicationResponse(application))
}

func (h *ApplicationHandler) GetApplication(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	application, err := h.service.Get(c.Context(), auth.Actor(c), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toApplicationResponse(application))
}

func (h *ApplicationHandler) GetApplicationHistory(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	history, err := h.service.History(c.Context(), auth.Actor(c), id)
	if err != nil {
		return toHTTPError(err)
	}

	entries := make([]historyEntryResponse, 0, len(history))
	for _, record := range history {
		entries = append(entries, historyEntryResponse{
			ID:            record.ID,
			ApplicationID: record.ApplicationID,
			PreviousStage: record.PreviousStage.String(),
			NewStage:      record.NewStage.String(),
			ChangedBy:     record.ChangedBy,
			CreatedAt:     record.CreatedAt,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": entries})
}

func (h *ApplicationHandler) ListOwnApplications(c *fiber.Ctx) error {
	applications, err := h.service.ListOwn(c.Context(), auth.Actor(c), ownApplicationsLimit)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": toApplicationResponses(applications)})
}

func (h *ApplicationHandler) ListJobApplications(c *fiber.Ctx) error {
	jobID := strings.TrimSpace(c.Params("jobId"))

	var stage *domain.Stage
	if rawStage := strings.TrimSpace(c.Query("stage")); rawStage != "" {
		parsed, err := domain.ParseStageFromString(rawStage)
		if err != nil {
			return toHTTPError(err)
		}
		stage = &parsed
	}

	applications, err := h.service.ListForJob(c.Context(), auth.Actor(c), jobID, stage)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": toApplicationResponses(applications)})
}

func toApplicationResponse(a *domain.Application) applicationResponse {
	if a == nil {
		return applicationResponse{}
	}

	return applicationResponse{
		ID:          a.ID,
		CandidateID: a.CandidateID,
		JobID:       a.JobID,
		Stage:       a.Stage.String(),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func toApplicationResponses(applications []domain.Application) []applicationResponse {
	responses := make([]applicationResponse, 0, len(applications))
	for i := range applications {
		responses = append(responses, toApplicationResponse(&applications[i]))
	}
	return responses
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateApplication):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	default:
		return err
	}
}
