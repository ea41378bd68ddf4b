package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-portal/internal/config"
	"github.com/spec-kit/support-portal/internal/domain"
)

func newAuthService() (*AuthService, *fakeProfileRepo) {
	profiles := newFakeProfileRepo()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
		},
	}
	return NewAuthService(cfg, profiles), profiles
}

func TestRegisterCreatesCustomer(t *testing.T) {
	svc, _ := newAuthService()

	profile, token, _, err := svc.Register(context.Background(), "Dana", "Dana@Example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, profile.Role)
	assert.Equal(t, "dana@example.com", profile.Email)
	assert.NotEmpty(t, token)

	claims, err := svc.SessionManager().Parse(token)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, claims.ProfileID)
	assert.Equal(t, domain.RoleCustomer, claims.Role)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()

	_, _, _, err := svc.Register(context.Background(), "Dana", "dana@example.com", "hunter22")
	require.NoError(t, err)

	_, _, _, err = svc.Register(context.Background(), "Other", "dana@example.com", "password")
	assert.Equal(t, "CONFLICT", domainCode(t, err))
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthService()
	_, _, _, err := svc.Register(context.Background(), "Dana", "dana@example.com", "hunter22")
	require.NoError(t, err)

	profile, token, _, err := svc.Login(context.Background(), "dana@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", profile.Email)
	assert.NotEmpty(t, token)

	_, _, _, err = svc.Login(context.Background(), "dana@example.com", "wrong")
	assert.Equal(t, "AUTHENTICATION", domainCode(t, err))

	_, _, _, err = svc.Login(context.Background(), "nobody@example.com", "hunter22")
	assert.Equal(t, "AUTHENTICATION", domainCode(t, err))
}

func TestEmployeeLoginRejectsCustomers(t *testing.T) {
	svc, profiles := newAuthService()
	_, _, _, err := svc.Register(context.Background(), "Dana", "dana@example.com", "hunter22")
	require.NoError(t, err)

	// Customers are turned away exactly like a bad password.
	_, _, _, err = svc.EmployeeLogin(context.Background(), "dana@example.com", "hunter22")
	assert.Equal(t, "AUTHENTICATION", domainCode(t, err))

	_, err = profiles.SetRoleByEmail(context.Background(), "dana@example.com", domain.RoleSupport)
	require.NoError(t, err)

	profile, _, _, err := svc.EmployeeLogin(context.Background(), "dana@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSupport, profile.Role)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthService()
	profile, _, _, err := svc.Register(context.Background(), "Dana", "dana@example.com", "oldpass")
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), profile.ID, "wrong", "newpass")
	assert.Equal(t, "AUTHENTICATION", domainCode(t, err))

	require.NoError(t, svc.ChangePassword(context.Background(), profile.ID, "oldpass", "newpass"))

	_, _, _, err = svc.Login(context.Background(), "dana@example.com", "newpass")
	assert.NoError(t, err)
}
