package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-portal/internal/domain"
)

func TestClassify(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		path string
		want RouteClass
	}{
		{"/", RouteClassAuth},
		{"/login", RouteClassAuth},
		{"/login/", RouteClassAuth},
		{"/employee-login", RouteClassAuth},
		{"/admin-dashboard", RouteClassProtected},
		{"/admin-dashboard/users", RouteClassProtected},
		{"/support-dashboard", RouteClassProtected},
		{"/customer-dashboard/tickets/42", RouteClassProtected},
		{"/unauthorized", RouteClassPublic},
		{"/health/live", RouteClassPublic},
		{"/admin-dashboardish", RouteClassPublic},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			class, rule := policy.Classify(tc.path)
			assert.Equal(t, tc.want, class)
			if tc.want == RouteClassProtected {
				assert.NotNil(t, rule)
			}
		})
	}
}

func TestProtectedRules(t *testing.T) {
	policy := DefaultPolicy()

	_, admin := policy.Classify("/admin-dashboard")
	require.NotNil(t, admin)
	assert.True(t, admin.Allows(domain.RoleAdmin))
	assert.False(t, admin.Allows(domain.RoleSupport))
	assert.False(t, admin.Allows(domain.RoleCustomer))
	assert.Equal(t, PathEmployeeLogin, admin.LoginPath())

	_, support := policy.Classify("/support-dashboard")
	require.NotNil(t, support)
	assert.True(t, support.Allows(domain.RoleAdmin))
	assert.True(t, support.Allows(domain.RoleSupport))
	assert.False(t, support.Allows(domain.RoleCustomer))

	_, customer := policy.Classify("/customer-dashboard")
	require.NotNil(t, customer)
	assert.True(t, customer.Allows(domain.RoleCustomer))
	assert.False(t, customer.Allows(domain.RoleSupport))
	assert.Equal(t, PathLogin, customer.LoginPath())
}

func TestRoleHome(t *testing.T) {
	policy := DefaultPolicy()
	assert.Equal(t, "/admin-dashboard", policy.RoleHome(domain.RoleAdmin))
	assert.Equal(t, "/support-dashboard", policy.RoleHome(domain.RoleSupport))
	assert.Equal(t, "/customer-dashboard", policy.RoleHome(domain.RoleCustomer))
	assert.Equal(t, PathUnauthorized, policy.RoleHome(domain.Role("unknown")))
}
