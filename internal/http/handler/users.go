package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"docstore/internal/http/middleware"
	"docstore/internal/model"
	"docstore/internal/service"
)

// UserHandler serves identity administration endpoints.
type UserHandler struct {
	users service.UserService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type createUserRequest struct {
	Username   string     `json:"username"`
	Password   string     `json:"password"`
	Role       model.Role `json:"role"`
	Department string     `json:"department"`
}

// Create registers a new user. Managers and admins only.
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return writeError(c, fiber.StatusBadRequest, "MISSING_FIELDS", "username and password are required")
	}
	if !req.Role.Valid() {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ROLE", "role must be USER, MANAGER or ADMIN")
	}

	user, err := h.users.CreateUser(c.UserContext(), req.Username, req.Password, req.Role, req.Department, middleware.UserFromCtx(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// List returns the users visible to the caller.
func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.users.ListUsers(c.UserContext(), middleware.UserFromCtx(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(users)
}

// Get returns one user by id.
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}
	user, err := h.users.GetUser(c.UserContext(), id, middleware.UserFromCtx(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(user)
}

type updateRoleRequest struct {
	Role model.Role `json:"role"`
}

// UpdateRole changes a user's role. Admins only.
func (h *UserHandler) UpdateRole(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}
	var req updateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}
	if !req.Role.Valid() {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ROLE", "role must be USER, MANAGER or ADMIN")
	}

	user, err := h.users.UpdateRole(c.UserContext(), id, req.Role, middleware.UserFromCtx(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(user)
}

func parseID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}
