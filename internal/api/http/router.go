package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/xeppelin/user-service/internal/api/http/handlers"
	"github.com/xeppelin/user-service/internal/auth"
	"github.com/xeppelin/user-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Lookups are open; mutations require an
// ADMIN or STAFF token.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	users := app.Group("/api/v1/users")
	users.Get("/", cfg.Users.List)
	users.Get("/by-email", cfg.Users.GetByEmail)
	users.Get("/by-phone", cfg.Users.GetByPhoneNumber)
	users.Get("/:id", cfg.Users.GetByID)

	protected := users.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin, domain.RoleStaff))
	protected.Post("/", cfg.Users.Create)
	protected.Put("/:id", cfg.Users.Update)
	protected.Delete("/:id", cfg.Users.Delete)
}
