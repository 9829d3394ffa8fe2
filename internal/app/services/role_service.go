package services

import (
	"context"
	"strings"

	"github.com/dcruz/schoolgate/internal/app/models"
	"github.com/dcruz/schoolgate/internal/app/models/dto"
	"github.com/dcruz/schoolgate/internal/app/repositories"
	"github.com/dcruz/schoolgate/internal/pkg/apperrors"
)

// RoleService handles role and permission management. The super-admin role is
// protected: only an acting user who holds it may create, rename, re-permission
// or delete it.
type RoleService struct {
	roleRepo *repositories.RoleRepository
	userRepo *repositories.UserRepository
}

// NewRoleService creates a new role service
func NewRoleService(roleRepo *repositories.RoleRepository, userRepo *repositories.UserRepository) *RoleService {
	return &RoleService{
		roleRepo: roleRepo,
		userRepo: userRepo,
	}
}

func (s *RoleService) actorIsSuperAdmin(ctx context.Context, actorID int64) (bool, error) {
	return s.userRepo.HasRoleSlug(ctx, actorID, models.SuperAdminSlug)
}

// CreateRole creates a role with an optional initial permission set.
func (s *RoleService) CreateRole(ctx context.Context, actorID int64, req *dto.CreateRoleRequest) (*models.Role, error) {
	slug := strings.ToLower(strings.TrimSpace(req.Slug))

	if slug == models.SuperAdminSlug {
		isSuper, err := s.actorIsSuperAdmin(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !isSuper {
			return nil, apperrors.ErrSuperAdminProtected
		}
	}

	role := &models.Role{
		Name: strings.TrimSpace(req.Name),
		Slug: slug,
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}

	if len(req.PermissionIDs) > 0 {
		if err := s.roleRepo.ReplacePermissions(ctx, role.ID, req.PermissionIDs); err != nil {
			return nil, err
		}
	}

	return s.GetRole(ctx, role.ID)
}

// GetRole retrieves a role with its permissions.
func (s *RoleService) GetRole(ctx context.Context, id int64) (*models.Role, error) {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if role.Permissions, err = s.roleRepo.GetPermissions(ctx, id); err != nil {
		return nil, err
	}

	return role, nil
}

// ListRoles retrieves all roles with their permissions.
func (s *RoleService) ListRoles(ctx context.Context) ([]*models.Role, error) {
	roles, err := s.roleRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, role := range roles {
		if role.Permissions, err = s.roleRepo.GetPermissions(ctx, role.ID); err != nil {
			return nil, err
		}
	}

	return roles, nil
}

// ListPermissions retrieves every grantable permission.
func (s *RoleService) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	return s.roleRepo.GetAllPermissions(ctx)
}

// UpdateRole renames a role and/or replaces its permission set.
func (s *RoleService) UpdateRole(ctx context.Context, actorID, id int64, req *dto.UpdateRoleRequest) (*models.Role, error) {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if role.IsSuperAdmin() {
		isSuper, err := s.actorIsSuperAdmin(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !isSuper {
			return nil, apperrors.ErrSuperAdminProtected
		}
	}

	if name := strings.TrimSpace(req.Name); name != "" && name != role.Name {
		if err := s.roleRepo.UpdateName(ctx, id, name); err != nil {
			return nil, err
		}
	}

	if req.PermissionIDs != nil {
		if err := s.roleRepo.ReplacePermissions(ctx, id, *req.PermissionIDs); err != nil {
			return nil, err
		}
	}

	return s.GetRole(ctx, id)
}

// DeleteRole removes a role that is not protected and not assigned to anyone.
func (s *RoleService) DeleteRole(ctx context.Context, actorID, id int64) error {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if role.IsSuperAdmin() {
		isSuper, err := s.actorIsSuperAdmin(ctx, actorID)
		if err != nil {
			return err
		}
		if !isSuper {
			return apperrors.ErrSuperAdminProtected
		}
	}

	count, err := s.roleRepo.UserCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.ErrRoleAssignedToUsers
	}

	return s.roleRepo.Delete(ctx, id)
}
