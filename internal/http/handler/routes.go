package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"docstore/internal/http/middleware"
	"docstore/internal/service"
)

// RegisterRoutes attaches all HTTP routes to the provided Fiber app. Handlers
// stay thin; every decision that matters lives in the service layer.
func RegisterRoutes(app *fiber.App, db *sql.DB, authSvc service.AuthService, userSvc service.UserService, fileSvc service.FileService) {
	// Health endpoint: checks DB connectivity only.
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	})

	// Simple liveness probe.
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	authHandler := NewAuthHandler(authSvc)
	userHandler := NewUserHandler(userSvc)
	fileHandler := NewFileHandler(fileSvc)

	app.Post("/auth/login", authHandler.Login)

	authed := app.Group("", middleware.Authenticate(authSvc))
	authed.Get("/auth/me", authHandler.Me)

	authed.Post("/users", userHandler.Create)
	authed.Get("/users", userHandler.List)
	authed.Get("/users/:id", userHandler.Get)
	authed.Put("/users/:id/role", userHandler.UpdateRole)

	authed.Post("/files", fileHandler.Upload)
	authed.Get("/files", fileHandler.List)
	authed.Get("/files/:id", fileHandler.Get)
	authed.Get("/files/:id/download", fileHandler.Download)
	authed.Delete("/files/:id", fileHandler.Delete)
}
