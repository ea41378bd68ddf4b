package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// PagesHandler serves the portal page shells. Access decisions happen in the
// gate middleware before any of these run; handlers here only describe which
// page the client should render.
type PagesHandler struct {
	appName string
}

// NewPagesHandler constructs handler.
func NewPagesHandler(appName string) *PagesHandler {
	return &PagesHandler{appName: appName}
}

// Login GET /login.
func (h *PagesHandler) Login(c *fiber.Ctx) error {
	return h.page(c, "login")
}

// EmployeeLogin GET /employee-login.
func (h *PagesHandler) EmployeeLogin(c *fiber.Ctx) error {
	return h.page(c, "employee-login")
}

// Unauthorized GET /unauthorized.
func (h *PagesHandler) Unauthorized(c *fiber.Ctx) error {
	return h.page(c, "unauthorized")
}

// AdminDashboard GET /admin-dashboard.
func (h *PagesHandler) AdminDashboard(c *fiber.Ctx) error {
	return h.page(c, "admin-dashboard")
}

// SupportDashboard GET /support-dashboard.
func (h *PagesHandler) SupportDashboard(c *fiber.Ctx) error {
	return h.page(c, "support-dashboard")
}

// CustomerDashboard GET /customer-dashboard.
func (h *PagesHandler) CustomerDashboard(c *fiber.Ctx) error {
	return h.page(c, "customer-dashboard")
}

func (h *PagesHandler) page(c *fiber.Ctx, name string) error {
	return c.JSON(fiber.Map{
		"app":  h.appName,
		"page": name,
	})
}
