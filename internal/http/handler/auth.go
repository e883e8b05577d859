package handler

import (
	"github.com/gofiber/fiber/v2"

	"docstore/internal/http/middleware"
	"docstore/internal/service"
)

// AuthHandler serves login and identity introspection.
type AuthHandler struct {
	auth service.AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login verifies credentials and returns a bearer token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return writeError(c, fiber.StatusBadRequest, "MISSING_CREDENTIALS", "username and password are required")
	}

	token, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(loginResponse{AccessToken: token, TokenType: "bearer"})
}

// Me returns the authenticated user's own record.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(middleware.UserFromCtx(c))
}
