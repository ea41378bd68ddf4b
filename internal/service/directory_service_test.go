package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/domain"
)

type recordingInvalidator struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingInvalidator) InvalidateRole(_ context.Context, profileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, profileID)
	return nil
}

func TestConvertToStaff(t *testing.T) {
	profiles := newFakeProfileRepo()
	invalidator := &recordingInvalidator{}
	svc := NewDirectoryService(profiles, invalidator, zap.NewNop())

	admin := profiles.add("Admin", "admin@example.com", domain.RoleAdmin)
	target := profiles.add("Cara", "cara@example.com", domain.RoleCustomer)

	updated, err := svc.ConvertToStaff(context.Background(), admin, "cara@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSupport, updated.Role)

	// The gate's cached role is dropped so the change applies immediately.
	assert.Equal(t, []string{target.ID}, invalidator.ids)
}

func TestRevokeStaff(t *testing.T) {
	profiles := newFakeProfileRepo()
	svc := NewDirectoryService(profiles, &recordingInvalidator{}, zap.NewNop())

	admin := profiles.add("Admin", "admin@example.com", domain.RoleAdmin)
	profiles.add("Sam", "sam@example.com", domain.RoleSupport)

	updated, err := svc.RevokeStaff(context.Background(), admin, "sam@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, updated.Role)
}

func TestSetRoleGuards(t *testing.T) {
	profiles := newFakeProfileRepo()
	svc := NewDirectoryService(profiles, &recordingInvalidator{}, zap.NewNop())

	admin := profiles.add("Admin", "admin@example.com", domain.RoleAdmin)
	support := profiles.add("Sam", "sam@example.com", domain.RoleSupport)
	profiles.add("Cara", "cara@example.com", domain.RoleCustomer)

	_, err := svc.ConvertToStaff(context.Background(), support, "cara@example.com")
	assert.Equal(t, "AUTHORIZATION", domainCode(t, err))

	_, err = svc.ConvertToStaff(context.Background(), nil, "cara@example.com")
	assert.Equal(t, "AUTHORIZATION", domainCode(t, err))

	_, err = svc.ConvertToStaff(context.Background(), admin, "admin@example.com")
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	_, err = svc.ConvertToStaff(context.Background(), admin, "")
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	_, err = svc.ConvertToStaff(context.Background(), admin, "ghost@example.com")
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}
