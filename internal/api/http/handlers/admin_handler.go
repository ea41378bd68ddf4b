package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-portal/internal/api/dto"
	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/service"
	apperrors "github.com/spec-kit/support-portal/pkg/util"
)

// AdminHandler exposes the admin user directory and role management.
type AdminHandler struct {
	directory *service.DirectoryService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(directoryService *service.DirectoryService) *AdminHandler {
	return &AdminHandler{directory: directoryService}
}

// ListUsers GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	limit, offset := parsePage(c)
	profiles, err := h.directory.ListUsers(c.Context(), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, profileResponse(&profiles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ConvertToStaff POST /admin/users/convert-to-staff.
func (h *AdminHandler) ConvertToStaff(c *fiber.Ctx) error {
	return h.setRole(c, h.directory.ConvertToStaff)
}

// RevokeStaff POST /admin/users/revoke-staff.
func (h *AdminHandler) RevokeStaff(c *fiber.Ctx) error {
	return h.setRole(c, h.directory.RevokeStaff)
}

func (h *AdminHandler) setRole(c *fiber.Ctx, apply roleChangeFunc) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Profile == nil {
		return apperrors.NewAuthenticationError("authentication required")
	}
	var req dto.SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	profile, err := apply(c.Context(), principal.Profile, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

type roleChangeFunc = func(ctx context.Context, actor *domain.Profile, email string) (*domain.Profile, error)
