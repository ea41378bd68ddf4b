package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/repository"
	apperrors "github.com/spec-kit/support-portal/pkg/util"
)

// RoleCacheInvalidator drops a cached role after an admin changes it, so
// the access gate sees the new role immediately.
type RoleCacheInvalidator interface {
	InvalidateRole(ctx context.Context, profileID string) error
}

// DirectoryService implements the admin user directory: listing accounts
// and converting customers to support staff (and back).
type DirectoryService struct {
	profiles  repository.ProfileRepository
	roleCache RoleCacheInvalidator
	logger    *zap.Logger
}

// NewDirectoryService constructs the service.
func NewDirectoryService(profiles repository.ProfileRepository, roleCache RoleCacheInvalidator, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{profiles: profiles, roleCache: roleCache, logger: logger}
}

// ListUsers returns a page of profiles.
func (s *DirectoryService) ListUsers(ctx context.Context, limit, offset int) ([]domain.Profile, error) {
	profiles, err := s.profiles.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return profiles, nil
}

// ConvertToStaff promotes the account with the given email to support.
func (s *DirectoryService) ConvertToStaff(ctx context.Context, actor *domain.Profile, email string) (*domain.Profile, error) {
	return s.setRole(ctx, actor, email, domain.RoleSupport)
}

// RevokeStaff demotes a support account back to customer.
func (s *DirectoryService) RevokeStaff(ctx context.Context, actor *domain.Profile, email string) (*domain.Profile, error) {
	return s.setRole(ctx, actor, email, domain.RoleCustomer)
}

func (s *DirectoryService) setRole(ctx context.Context, actor *domain.Profile, email string, role domain.Role) (*domain.Profile, error) {
	if actor == nil || actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewAuthorizationError("admin access required")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.NewValidationError("email required", nil)
	}
	if strings.EqualFold(email, actor.Email) {
		return nil, apperrors.NewValidationError("cannot modify your own role", nil)
	}

	profile, err := s.profiles.SetRoleByEmail(ctx, email, role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return nil, apperrors.MapError(err)
	}

	if s.roleCache != nil {
		if err := s.roleCache.InvalidateRole(ctx, profile.ID); err != nil {
			s.logger.Warn("role cache invalidation failed",
				zap.String("profile_id", profile.ID),
				zap.Error(err))
		}
	}

	s.logger.Info("role changed",
		zap.String("profile_id", profile.ID),
		zap.String("role", string(role)),
		zap.String("actor_id", actor.ID))
	return profile, nil
}
