package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/frejen/ticketd/internal/api/http/handlers"
	"github.com/frejen/ticketd/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Users          *handlers.UsersHandler
	Departments    *handlers.DepartmentsHandler
	States         *handlers.StatesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/sign-up", cfg.Auth.SignUp)
	authGroup.Post("/sign-in", cfg.Auth.SignIn)
	authGroup.Post("/sign-out", cfg.AuthMiddleware.Handle, cfg.Auth.SignOut)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id", cfg.Tickets.Update)

	app.Get("/departments", cfg.AuthMiddleware.Handle, cfg.Departments.List)
	app.Get("/states", cfg.AuthMiddleware.Handle, cfg.States.List)
	app.Patch("/users/:id", cfg.AuthMiddleware.Handle, cfg.Users.Update)
}
