package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"docstore/internal/model"
	"docstore/internal/service"
)

// UserLocalKey is the key under which the authenticated user is stored in
// Fiber's context locals.
const UserLocalKey = "current_user"

// Authenticate validates the Bearer access token on every request and stores
// the resolved user in context locals. Requests without a valid token are
// rejected with 401.
func Authenticate(authSvc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		user, err := authSvc.CurrentUser(c.UserContext(), raw)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(UserLocalKey, user)
		return c.Next()
	}
}

// UserFromCtx returns the authenticated user stored by Authenticate, or nil
// when the request is unauthenticated.
func UserFromCtx(c *fiber.Ctx) *model.User {
	if u, ok := c.Locals(UserLocalKey).(*model.User); ok {
		return u
	}
	return nil
}
