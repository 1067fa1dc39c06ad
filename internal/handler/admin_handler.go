package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/hiretrack/internal/domain"
	"github.com/kursadbilgin/hiretrack/internal/service"
)

type AdminService interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUserRole(ctx context.Context, id string, role string) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	ListApplications(ctx context.Context) ([]domain.Application, error)
	DeleteApplication(ctx context.Context, id string) error
	DeleteJob(ctx context.Context, id string) error
	ListFailedEmailTasks(ctx context.Context, limit int) ([]service.FailedEmailTask, error)
}

type AdminHandler struct {
	service AdminService
}

func NewAdminHandler(service AdminService) (*AdminHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("admin service is required")
	}
	return &AdminHandler{service: service}, nil
}

// RegisterAdminRoutes wires the admin surface. The caller is expected to
// guard the router group with the admin role.
func RegisterAdminRoutes(router fiber.Router, service AdminService) error {
	h, err := NewAdminHandler(service)
	if err != nil {
		return err
	}

	router.Post("/users", h.CreateUser)
	router.Get("/users", h.ListUsers)
	router.Patch("/users/:id/role", h.UpdateUserRole)
	router.Delete("/users/:id", h.DeleteUser)
	router.Get("/applications", h.ListApplications)
	router.Delete("/applications/:id", h.DeleteApplication)
	router.Delete("/jobs/:id", h.DeleteJob)
	router.Get("/email-tasks/failed", h.ListFailedEmailTasks)

	return nil
}

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type failedEmailTaskResponse struct {
	ID           string                 `json:"id"`
	Recipient    string                 `json:"recipient"`
	Subject      string                 `json:"subject"`
	Status       string                 `json:"status"`
	AttemptCount int                    `json:"attemptCount"`
	MaxAttempts  int                    `json:"maxAttempts"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
	Attempts     []emailAttemptResponse `json:"attempts"`
}

type emailAttemptResponse struct {
	AttemptNumber int       `json:"attemptNumber"`
	StatusCode    *int      `json:"statusCode,omitempty"`
	Error         *string   `json:"error,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user := &domain.User{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Role:  domain.Role(strings.ToLower(strings.TrimSpace(req.Role))),
	}

	created, err := h.service.CreateUser(c.Context(), user)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toUserResponse(created))
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]userResponse, 0, len(users))
	for i := range users {
		responses = append(responses, toUserResponse(&users[i]))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": responses})
}

func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	var req updateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	id := strings.TrimSpace(c.Params("id"))
	updated, err := h.service.UpdateUserRole(c.Context(), id, req.Role)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toUserResponse(updated))
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if err := h.service.DeleteUser(c.Context(), id); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) ListApplications(c *fiber.Ctx) error {
	applications, err := h.service.ListApplications(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": toApplicationResponses(applications)})
}

func (h *AdminHandler) DeleteApplication(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if err := h.service.DeleteApplication(c.Context(), id); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) DeleteJob(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if err := h.service.DeleteJob(c.Context(), id); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) ListFailedEmailTasks(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	failed, err := h.service.ListFailedEmailTasks(c.Context(), limit)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]failedEmailTaskResponse, 0, len(failed))
	for _, item := range failed {
		attempts := make([]emailAttemptResponse, 0, len(item.Attempts))
		for _, attempt := range item.Attempts {
			attempts = append(attempts, emailAttemptResponse{
				AttemptNumber: attempt.AttemptNumber,
				StatusCode:    attempt.StatusCode,
				Error:         attempt.Error,
				CreatedAt:     attempt.CreatedAt,
			})
		}
		responses = append(responses, failedEmailTaskResponse{
			ID:           item.Task.ID,
			Recipient:    item.Task.Recipient,
			Subject:      item.Task.Subject,
			Status:       item.Task.Status.String(),
			AttemptCount: item.Task.AttemptCount,
			MaxAttempts:  item.Task.MaxAttempts,
			CreatedAt:    item.Task.CreatedAt,
			UpdatedAt:    item.Task.UpdatedAt,
			Attempts:     attempts,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": responses})
}

func toUserResponse(u *domain.User) userResponse {
	if u == nil {
		return userResponse{}
	}

	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
