package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/config"
	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/repository"
	apperrors "github.com/spec-kit/support-portal/pkg/util"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	profiles   repository.ProfileRepository
	sessions   *auth.SessionManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, profiles repository.ProfileRepository) *AuthService {
	return &AuthService{
		profiles:   profiles,
		sessions:   auth.NewSessionManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new customer account and signs it in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.Profile, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.profiles.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	profile := &domain.Profile{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	token, exp, err := s.sessions.Issue(profile.ID, profile.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return profile, token, exp, nil
}

// Login authenticates any account by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Profile, string, time.Time, error) {
	return s.login(ctx, email, password, false)
}

// EmployeeLogin authenticates support/admin accounts only; customers are
// rejected the same way as a bad password, leaking nothing.
func (s *AuthService) EmployeeLogin(ctx context.Context, email, password string) (*domain.Profile, string, time.Time, error) {
	return s.login(ctx, email, password, true)
}

func (s *AuthService) login(ctx context.Context, email, password string, staffOnly bool) (*domain.Profile, string, time.Time, error) {
	profile, err := s.profiles.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewAuthenticationError("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(profile.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewAuthenticationError("invalid credentials")
	}
	if staffOnly && !profile.Role.IsStaff() {
		return nil, "", time.Time{}, apperrors.NewAuthenticationError("invalid credentials")
	}

	token, exp, err := s.sessions.Issue(profile.ID, profile.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return profile, token, exp, nil
}

// ChangePassword verifies the current password before updating to new hash.
func (s *AuthService) ChangePassword(ctx context.Context, profileID, currentPassword, newPassword string) error {
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := auth.ComparePassword(profile.PasswordHash, currentPassword); err != nil {
		return apperrors.NewAuthenticationError("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	profile.PasswordHash = hash
	if err := s.profiles.Update(ctx, profile); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// SessionManager exposes the underlying session manager for middleware and
// gate wiring.
func (s *AuthService) SessionManager() *auth.SessionManager {
	return s.sessions
}
