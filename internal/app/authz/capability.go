package authz

import (
	"context"

	"github.com/dcruz/schoolgate/internal/app/models"
	"github.com/dcruz/schoolgate/internal/app/repositories"
)

// CapabilitySet is a user's flattened effective permission set: the union of
// permission slugs across every role assigned to the user. It is built once
// per request instead of re-deriving from role/permission joins on each check.
type CapabilitySet struct {
	slugs      map[string]struct{}
	superAdmin bool
}

// NewCapabilitySet builds a capability set from permission slugs.
func NewCapabilitySet(slugs []string, superAdmin bool) CapabilitySet {
	set := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		set[slug] = struct{}{}
	}
	return CapabilitySet{slugs: set, superAdmin: superAdmin}
}

// Can reports whether the set grants the named permission.
func (c CapabilitySet) Can(slug string) bool {
	_, ok := c.slugs[slug]
	return ok
}

// IsSuperAdmin reports whether the user holds the protected super-admin role.
func (c CapabilitySet) IsSuperAdmin() bool {
	return c.superAdmin
}

// Slugs returns the granted permission slugs.
func (c CapabilitySet) Slugs() []string {
	out := make([]string, 0, len(c.slugs))
	for slug := range c.slugs {
		out = append(out, slug)
	}
	return out
}

// AuthorizationService resolves a user's capability set.
type AuthorizationService struct {
	userRepo *repositories.UserRepository
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(userRepo *repositories.UserRepository) *AuthorizationService {
	return &AuthorizationService{
		userRepo: userRepo,
	}
}

// CapabilitiesFor loads the user's flattened permission set in one query plus
// the super-admin role check.
func (s *AuthorizationService) CapabilitiesFor(ctx context.Context, userID int64) (CapabilitySet, error) {
	slugs, err := s.userRepo.GetPermissionSlugs(ctx, userID)
	if err != nil {
		return CapabilitySet{}, err
	}

	superAdmin, err := s.userRepo.HasRoleSlug(ctx, userID, models.SuperAdminSlug)
	if err != nil {
		return CapabilitySet{}, err
	}

	return NewCapabilitySet(slugs, superAdmin), nil
}
