package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-portal/internal/domain"
)

func TestIssueAndParse(t *testing.T) {
	sessions := NewSessionManager("secret", 60)

	token, exp, err := sessions.Issue("profile-1", domain.RoleSupport)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := sessions.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "profile-1", claims.ProfileID)
	assert.Equal(t, domain.RoleSupport, claims.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := NewSessionManager("secret-a", 60).Issue("profile-1", domain.RoleCustomer)
	require.NoError(t, err)

	_, err = NewSessionManager("secret-b", 60).Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	sessions := NewSessionManager("secret", 60)
	_, err := sessions.Parse("not.a.token")
	assert.Error(t, err)
}

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("hunter22", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, ComparePassword(hash, "hunter22"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}
