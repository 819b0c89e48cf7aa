package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/asfalya/internal/auth"
	"github.com/example/asfalya/internal/models"
)

const userContextKey = "currentUser"

// AuthMiddleware validates bearer tokens and loads the authenticated user
// into the request context. Any failure along the chain is a plain 401:
// an unknown token subject must not be distinguishable from a bad token.
func AuthMiddleware(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		subject, err := svc.Tokens().Verify(parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		user, err := svc.Resolve(subject)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(userContextKey, user)
		return c.Next()
	}
}

// RequireAdmin gates a route on the administrative flag. It must run after
// AuthMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := GetCurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authentication")
		}
		if !user.IsAdmin {
			return fiber.NewError(fiber.StatusForbidden, "admin access required")
		}
		return c.Next()
	}
}

// GetCurrentUser extracts the authenticated user from context.
func GetCurrentUser(c *fiber.Ctx) (*models.User, bool) {
	value := c.Locals(userContextKey)
	if value == nil {
		return nil, false
	}

	if user, ok := value.(*models.User); ok {
		return user, true
	}

	return nil, false
}
