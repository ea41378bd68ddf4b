package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/repository"
	apperrors "github.com/spec-kit/support-portal/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller on API routes.
type Principal struct {
	Profile *domain.Profile
}

// Middleware validates bearer tokens and loads the caller's profile.
type Middleware struct {
	sessions *SessionManager
	profiles repository.ProfileRepository
}

// NewMiddleware constructs middleware.
func NewMiddleware(sessions *SessionManager, profiles repository.ProfileRepository) *Middleware {
	return &Middleware{sessions: sessions, profiles: profiles}
}

// Handle enforces authentication for protected API routes. The token is
// taken from the Authorization header, falling back to the session cookie
// so browser portals can reach the same endpoints.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		token = c.Cookies(SessionCookie)
	}
	if token == "" {
		return apperrors.NewAuthenticationError("missing credentials")
	}

	claims, err := m.sessions.Parse(token)
	if err != nil {
		return apperrors.NewAuthenticationError("invalid token")
	}

	profile, err := m.profiles.GetByID(c.Context(), claims.ProfileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewAuthenticationError("profile not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{Profile: profile})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// RequireRole ensures the caller holds one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Profile == nil {
			return apperrors.NewAuthenticationError("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Profile.Role]; !exists {
			return apperrors.NewAuthorizationError("insufficient role")
		}
		return c.Next()
	}
}

// RequireStaff ensures the caller is support or admin.
func RequireStaff() fiber.Handler {
	return RequireRole(domain.RoleSupport, domain.RoleAdmin)
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
