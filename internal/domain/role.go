package domain

import "fmt"

// Role classifies a profile's access level. Every profile carries exactly
// one role at a time; route authorization is decided on role alone.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSupport  Role = "support"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a stored role string against the closed set.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleCustomer, RoleSupport, RoleAdmin:
		return Role(value), nil
	}
	return "", fmt.Errorf("unknown role %q", value)
}

// IsStaff reports whether the role is allowed to work tickets.
func (r Role) IsStaff() bool {
	return r == RoleSupport || r == RoleAdmin
}
