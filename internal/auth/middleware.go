package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/hiretrack/internal/domain"
	"github.com/kursadbilgin/hiretrack/internal/repository"
)

// HeaderUserID carries the gateway-authenticated principal. The edge gateway
// verifies credentials and forwards only the user id; this service resolves
// it against the user store.
const HeaderUserID = "X-User-ID"

const actorLocalKey = "actor"

// Identity resolves the forwarded principal to a stored user and attaches it
// to the request. Requests without a resolvable principal are rejected.
func Identity(users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get(HeaderUserID))
		if userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user identity")
		}

		user, err := users.GetByID(c.Context(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "unknown user identity")
			}
			return err
		}

		c.Locals(actorLocalKey, user)
		return c.Next()
	}
}

// RequireRole guards a route group to the given roles. It assumes Identity
// ran earlier in the chain.
func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := Actor(c)
		if actor == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user identity")
		}

		for _, role := range roles {
			if actor.Role == role {
				return c.Next()
			}
		}

		return fiber.NewError(fiber.StatusForbidden, "insufficient role")
	}
}

// Actor returns the resolved user for the request, or nil.
func Actor(c *fiber.Ctx) *domain.User {
	if c == nil {
		return nil
	}
	actor, _ := c.Locals(actorLocalKey).(*domain.User)
	return actor
}
