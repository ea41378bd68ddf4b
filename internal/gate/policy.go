package gate

import (
	"strings"

	"github.com/spec-kit/support-portal/internal/domain"
)

// RouteClass buckets a request path for the access decision.
type RouteClass int

const (
	// RouteClassPublic requires no session.
	RouteClassPublic RouteClass = iota
	// RouteClassAuth is a sign-in page; authenticated callers are bounced home.
	RouteClassAuth
	// RouteClassProtected requires one of the rule's allowed roles.
	RouteClassProtected
)

// PathLogin is the customer sign-in route.
const PathLogin = "/login"

// PathEmployeeLogin is the staff sign-in route.
const PathEmployeeLogin = "/employee-login"

// PathUnauthorized is the neutral rejection page.
const PathUnauthorized = "/unauthorized"

type protectedRule struct {
	prefix  string
	allowed map[domain.Role]struct{}
	login   string
}

// Policy is the static route->role table. It is immutable after
// construction and safe for concurrent readers.
type Policy struct {
	protected []protectedRule
	auth      []string
	homes     map[domain.Role]string
}

// DefaultPolicy returns the portal route policy. Every protected prefix has
// a non-empty allowed set; unmatched prefixes are public.
func DefaultPolicy() *Policy {
	return &Policy{
		protected: []protectedRule{
			{
				prefix:  "/admin-dashboard",
				allowed: roleSet(domain.RoleAdmin),
				login:   PathEmployeeLogin,
			},
			{
				prefix:  "/support-dashboard",
				allowed: roleSet(domain.RoleAdmin, domain.RoleSupport),
				login:   PathEmployeeLogin,
			},
			{
				prefix:  "/customer-dashboard",
				allowed: roleSet(domain.RoleCustomer),
				login:   PathLogin,
			},
		},
		auth: []string{PathLogin, PathEmployeeLogin},
		homes: map[domain.Role]string{
			domain.RoleAdmin:    "/admin-dashboard",
			domain.RoleSupport:  "/support-dashboard",
			domain.RoleCustomer: "/customer-dashboard",
		},
	}
}

// Classify buckets a path. For protected paths it also returns the matching
// rule; the root path classifies as an auth route so signed-in callers land
// on their dashboard and everyone else on the sign-in page.
func (p *Policy) Classify(path string) (RouteClass, *protectedRule) {
	if path == "/" {
		return RouteClassAuth, nil
	}
	for i := range p.protected {
		if matchesPrefix(path, p.protected[i].prefix) {
			return RouteClassProtected, &p.protected[i]
		}
	}
	for _, prefix := range p.auth {
		if matchesPrefix(path, prefix) {
			return RouteClassAuth, nil
		}
	}
	return RouteClassPublic, nil
}

// RoleHome maps a role to its dashboard root.
func (p *Policy) RoleHome(role domain.Role) string {
	if home, ok := p.homes[role]; ok {
		return home
	}
	return PathUnauthorized
}

// Allows reports whether the rule's role set permits the role.
func (r *protectedRule) Allows(role domain.Role) bool {
	_, ok := r.allowed[role]
	return ok
}

// LoginPath is the sign-in route for the rule's portal.
func (r *protectedRule) LoginPath() string {
	return r.login
}

func matchesPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

func roleSet(roles ...domain.Role) map[domain.Role]struct{} {
	set := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}
