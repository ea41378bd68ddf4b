package gate

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/repository"
)

const roleCachePrefix = "gate:role:"

// CachedRoleResolver looks up a profile's role with a Redis cache in front
// of Postgres. Role mutations must call InvalidateRole so the gate sees the
// change within the same request flow, not a TTL later.
type CachedRoleResolver struct {
	profiles repository.ProfileRepository
	cache    *redis.Client
	ttl      time.Duration
}

// NewCachedRoleResolver constructs the resolver. A nil cache client degrades
// to direct lookups.
func NewCachedRoleResolver(profiles repository.ProfileRepository, cache *redis.Client, ttl time.Duration) *CachedRoleResolver {
	return &CachedRoleResolver{profiles: profiles, cache: cache, ttl: ttl}
}

// ResolveRole implements RoleResolver.
func (r *CachedRoleResolver) ResolveRole(ctx context.Context, profileID string) (domain.Role, error) {
	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, roleCachePrefix+profileID).Result(); err == nil {
			if role, parseErr := domain.ParseRole(cached); parseErr == nil {
				return role, nil
			}
		}
	}

	role, err := r.profiles.GetRole(ctx, profileID)
	if err != nil {
		return "", err
	}

	if r.cache != nil {
		_ = r.cache.Set(ctx, roleCachePrefix+profileID, string(role), r.ttl).Err()
	}
	return role, nil
}

// InvalidateRole drops the cached role after an admin changes it.
func (r *CachedRoleResolver) InvalidateRole(ctx context.Context, profileID string) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Del(ctx, roleCachePrefix+profileID).Err()
}
