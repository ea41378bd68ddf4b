package gate

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/domain"
)

// RoleResolver returns the current role for a profile.
type RoleResolver interface {
	ResolveRole(ctx context.Context, profileID string) (domain.Role, error)
}

// Gate decides allow/redirect for every page request before it renders.
// It never mutates session state and never surfaces a backend failure as an
// error response: identity or role resolution problems fail closed into a
// redirect.
type Gate struct {
	policy   *Policy
	sessions *auth.SessionManager
	roles    RoleResolver
	logger   *zap.Logger
}

// New constructs the gate.
func New(policy *Policy, sessions *auth.SessionManager, roles RoleResolver, logger *zap.Logger) *Gate {
	return &Gate{policy: policy, sessions: sessions, roles: roles, logger: logger}
}

// Handle is the page middleware implementing the access decision table.
func (g *Gate) Handle(c *fiber.Ctx) error {
	path := c.Path()
	class, rule := g.policy.Classify(path)

	claims := g.identify(c)
	if claims == nil {
		// Anonymous callers may see public pages and sign-in pages; a
		// protected path bounces to the portal's sign-in route.
		if class == RouteClassProtected {
			return c.Redirect(rule.LoginPath(), fiber.StatusFound)
		}
		if path == "/" {
			return c.Redirect(PathLogin, fiber.StatusFound)
		}
		return c.Next()
	}

	switch class {
	case RouteClassProtected:
		role, err := g.roles.ResolveRole(c.Context(), claims.ProfileID)
		if err != nil {
			g.logger.Warn("gate role lookup failed",
				zap.String("profile_id", claims.ProfileID),
				zap.String("path", path),
				zap.Error(err))
			return c.Redirect(PathUnauthorized, fiber.StatusFound)
		}
		if !rule.Allows(role) {
			return c.Redirect(PathUnauthorized, fiber.StatusFound)
		}
		return c.Next()
	case RouteClassAuth:
		// A signed-in caller landing on a sign-in page goes straight to
		// their dashboard; this prevents re-login loops.
		role, err := g.roles.ResolveRole(c.Context(), claims.ProfileID)
		if err != nil {
			g.logger.Warn("gate role lookup failed",
				zap.String("profile_id", claims.ProfileID),
				zap.String("path", path),
				zap.Error(err))
			return c.Redirect(PathUnauthorized, fiber.StatusFound)
		}
		return c.Redirect(g.policy.RoleHome(role), fiber.StatusFound)
	default:
		return c.Next()
	}
}

// identify resolves the session cookie; absence or an invalid token means
// anonymous.
func (g *Gate) identify(c *fiber.Ctx) *auth.Claims {
	token := c.Cookies(auth.SessionCookie)
	if token == "" {
		return nil
	}
	claims, err := g.sessions.Parse(token)
	if err != nil {
		return nil
	}
	return claims
}
