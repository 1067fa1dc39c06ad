package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/hiretrack/internal/auth"
	"github.com/kursadbilgin/hiretrack/internal/domain"
)

type JobService interface {
	Create(ctx context.Context, actor *domain.User, job *domain.Job) (*domain.Job, error)
	Get(ctx context.Context, id string) (*domain.Job, error)
	List(ctx context.Context) ([]domain.Job, error)
}

type JobHandler struct {
	service JobService
}

func NewJobHandler(service JobService) (*JobHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("job service is required")
	}
	return &JobHandler{service: service}, nil
}

func RegisterJobRoutes(router fiber.Router, service JobService) error {
	h, err := NewJobHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/jobs", h.CreateJob)
	v1.Get("/jobs", h.ListJobs)
	v1.Get("/jobs/:id", h.GetJob)

	return nil
}

type createJobRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CompanyID   string `json:"companyId"`
	Status      string `json:"status"`
}

type jobResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CompanyID   string    `json:"companyId,omitempty"`
	PostedBy    string    `json:"postedBy"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (h *JobHandler) CreateJob(c *fiber.Ctx) error {
	var req createJobRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	job := &domain.Job{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		CompanyID:   strings.TrimSpace(req.CompanyID),
		Status:      domain.JobStatus(strings.TrimSpace(req.Status)),
	}

	created, err := h.service.Create(c.Context(), auth.Actor(c), job)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toJobResponse(created))
}

func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	job, err := h.service.Get(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toJobResponse(job))
}

func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	jobs, err := h.service.List(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]jobResponse, 0, len(jobs))
	for i := range jobs {
		responses = append(responses, toJobResponse(&jobs[i]))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": responses})
}

func toJobResponse(j *domain.Job) jobResponse {
	if j == nil {
		return jobResponse{}
	}

	return jobResponse{
		ID:          j.ID,
		Title:       j.Title,
		Description: j.Description,
		CompanyID:   j.CompanyID,
		PostedBy:    j.PostedBy,
		Status:      j.Status.String(),
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}
