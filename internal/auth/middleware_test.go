package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/hiretrack/internal/domain"
)

type fakeUserRepo struct {
	getByIDFn func(ctx context.Context, id string) (*domain.User, error)
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error { return nil }

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) { return nil, nil }

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error { return nil }

func newAuthTestApp(users *fakeUserRepo, roles ...domain.Role) *fiber.App {
	app := fiber.New()
	app.Use(Identity(users))
	if len(roles) > 0 {
		app.Use(RequireRole(roles...))
	}
	app.Get("/probe", func(c *fiber.Ctx) error {
		actor := Actor(c)
		if actor == nil {
			return fiber.NewError(fiber.StatusInternalServerError, "actor missing")
		}
		return c.JSON(fiber.Map{"id": actor.ID, "role": actor.Role.String()})
	})
	return app
}

func TestIdentityResolvesUser(t *testing.T) {
	t.Parallel()

	users := &fakeUserRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Name: "Jordan", Email: "jordan@example.com", Role: domain.RoleCandidate}, nil
		},
	}
	app := newAuthTestApp(users)

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set(HeaderUserID, "cand-1")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestIdentityMissingHeader(t *testing.T) {
	t.Parallel()

	app := newAuthTestApp(&fakeUserRepo{})

	resp, err := app.Test(httptest.NewRequest("GET", "/probe", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestIdentityUnknownUser(t *testing.T) {
	t.Parallel()

	app := newAuthTestApp(&fakeUserRepo{})

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set(HeaderUserID, "ghost")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		role       domain.Role
		allowed    []domain.Role
		wantStatus int
	}{
		{name: "matching role passes", role: domain.RoleAdmin, allowed: []domain.Role{domain.RoleAdmin}, wantStatus: fiber.StatusOK},
		{name: "one of several roles passes", role: domain.RoleRecruiter, allowed: []domain.Role{domain.RoleRecruiter, domain.RoleAdmin}, wantStatus: fiber.StatusOK},
		{name: "wrong role forbidden", role: domain.RoleCandidate, allowed: []domain.Role{domain.RoleAdmin}, wantStatus: fiber.StatusForbidden},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			users := &fakeUserRepo{
				getByIDFn: func(ctx context.Context, id string) (*domain.User, error) {
					return &domain.User{ID: id, Name: "User", Email: "user@example.com", Role: tc.role}, nil
				},
			}
			app := newAuthTestApp(users, tc.allowed...)

			req := httptest.NewRequest("GET", "/probe", nil)
			req.Header.Set(HeaderUserID, "user-1")

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
		})
	}
}
