package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-portal/internal/api/http/handlers"
	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/gate"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Admin          *handlers.AdminHandler
	Pages          *handlers.PagesHandler
	AuthMiddleware *auth.Middleware
	Gate           *gate.Gate
}

// RegisterRoutes wires HTTP routes. Page routes sit behind the access gate;
// API routes sit behind bearer auth and role checks.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	registerPages(app, cfg)
	registerAPI(app, cfg)
}

func registerPages(app *fiber.App, cfg RouteConfig) {
	pages := app.Group("", cfg.Gate.Handle)
	pages.Get("/", cfg.Pages.Login)
	pages.Get(gate.PathLogin, cfg.Pages.Login)
	pages.Get(gate.PathEmployeeLogin, cfg.Pages.EmployeeLogin)
	pages.Get(gate.PathUnauthorized, cfg.Pages.Unauthorized)
	pages.Get("/admin-dashboard", cfg.Pages.AdminDashboard)
	pages.Get("/support-dashboard", cfg.Pages.SupportDashboard)
	pages.Get("/customer-dashboard", cfg.Pages.CustomerDashboard)
}

func registerAPI(app *fiber.App, cfg RouteConfig) {
	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/employee-login", cfg.Auth.EmployeeLogin)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)
	tickets.Patch("/:id/status", auth.RequireStaff(), cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id/priority", auth.RequireStaff(), cfg.Tickets.UpdatePriority)
	tickets.Patch("/:id/assignee", auth.RequireStaff(), cfg.Tickets.AssignTicket)
	tickets.Post("/:id/summarize", auth.RequireStaff(), cfg.Tickets.Summarize)
	tickets.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.DeleteTicket)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Post("/users/convert-to-staff", cfg.Admin.ConvertToStaff)
	admin.Post("/users/revoke-staff", cfg.Admin.RevokeStaff)
}
