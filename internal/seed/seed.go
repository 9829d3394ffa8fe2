package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/dcruz/schoolgate/internal/app/models"
	"github.com/dcruz/schoolgate/internal/app/repositories"
	"github.com/dcruz/schoolgate/internal/config"
	"github.com/dcruz/schoolgate/internal/db"
	"github.com/dcruz/schoolgate/internal/pkg/apperrors"
	"github.com/dcruz/schoolgate/internal/pkg/auth"
)

// Permission display names by slug, used when seeding.
var permissionNames = map[string]string{
	models.PermViewApplications:   "View Applications",
	models.PermManageApplications: "Manage Applications",
	models.PermViewStudents:       "View Students",
	models.PermManageStudents:     "Manage Students",
	models.PermViewUsers:          "View Users",
	models.PermManageUsers:        "Manage Users",
	models.PermViewRoles:          "View Roles",
	models.PermManageRoles:        "Manage Roles",
}

// Registrar role default grants.
var registrarSlugs = []string{
	models.PermViewApplications,
	models.PermManageApplications,
	models.PermViewStudents,
	models.PermManageStudents,
}

// CreateDefaultData seeds permissions, the super-admin and registrar roles,
// and the initial admin account. Safe to run on every startup.
func CreateDefaultData(ctx context.Context, pool db.Pool, cfg *config.Config, lgr zerolog.Logger) error {
	roleRepo := repositories.NewRoleRepository(pool)
	userRepo := repositories.NewUserRepository(pool)

	lgr.Info().Msg("Checking/Creating default data (permissions, roles, admin user)...")
	var finalErr error

	// --- Permissions --- //
	permissionIDs := make(map[string]int64, len(models.AllPermissionSlugs))
	for _, slug := range models.AllPermissionSlugs {
		id, err := roleRepo.EnsurePermission(ctx, permissionNames[slug], slug)
		if err != nil {
			lgr.Error().Err(err).Str("slug", slug).Msg("Error seeding permission")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		permissionIDs[slug] = id
	}

	// --- Super-admin role with every permission --- //
	superAdminID, err := ensureRole(ctx, roleRepo, "Super Admin", models.SuperAdminSlug)
	if err != nil {
		lgr.Error().Err(err).Msg("Error seeding super-admin role")
		finalErr = errors.Join(finalErr, err)
	} else {
		var allIDs []int64
		for _, slug := range models.AllPermissionSlugs {
			if id, ok := permissionIDs[slug]; ok {
				allIDs = append(allIDs, id)
			}
		}
		if err := roleRepo.ReplacePermissions(ctx, superAdminID, allIDs); err != nil {
			lgr.Error().Err(err).Msg("Error granting permissions to super-admin role")
			finalErr = errors.Join(finalErr, err)
		}
	}

	// --- Registrar role --- //
	registrarID, err := ensureRole(ctx, roleRepo, "Registrar", "registrar")
	if err != nil {
		lgr.Error().Err(err).Msg("Error seeding registrar role")
		finalErr = errors.Join(finalErr, err)
	} else {
		var ids []int64
		for _, slug := range registrarSlugs {
			if id, ok := permissionIDs[slug]; ok {
				ids = append(ids, id)
			}
		}
		if err := roleRepo.ReplacePermissions(ctx, registrarID, ids); err != nil {
			lgr.Error().Err(err).Msg("Error granting permissions to registrar role")
			finalErr = errors.Join(finalErr, err)
		}
	}

	// --- Default admin user --- //
	if superAdminID > 0 {
		if err := ensureAdminUser(ctx, userRepo, cfg, superAdminID, lgr); err != nil {
			finalErr = errors.Join(finalErr, err)
		}
	}

	return finalErr
}

func ensureRole(ctx context.Context, roleRepo *repositories.RoleRepository, name, slug string) (int64, error) {
	role, err := roleRepo.GetBySlug(ctx, slug)
	if err == nil {
		return role.ID, nil
	}
	if !errors.Is(err, apperrors.ErrRoleNotFound) {
		return 0, err
	}

	role = &models.Role{Name: name, Slug: slug}
	if err := roleRepo.Create(ctx, role); err != nil {
		return 0, err
	}
	return role.ID, nil
}

func ensureAdminUser(ctx context.Context, userRepo *repositories.UserRepository, cfg *config.Config, superAdminRoleID int64, lgr zerolog.Logger) error {
	email := cfg.Seed.AdminEmail

	if _, err := userRepo.GetByEmail(ctx, email); err == nil {
		return nil // already present
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		lgr.Error().Err(err).Msg("Error checking for admin user")
		return err
	}

	password := cfg.Seed.AdminPassword
	if password == "" {
		lgr.Warn().Str("email", email).Msg("No seed admin password configured, admin user not created")
		return nil
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	admin := &models.User{
		Email:     email,
		Password:  hashed,
		FirstName: "System",
		LastName:  "Administrator",
		RoleID:    &superAdminRoleID,
		IsActive:  true,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		lgr.Error().Err(err).Msg("Error creating admin user")
		return err
	}

	if err := userRepo.ReplaceRoles(ctx, admin.ID, []int64{superAdminRoleID}); err != nil {
		lgr.Error().Err(err).Msg("Error assigning super-admin role to admin user")
		return err
	}

	lgr.Info().Str("email", email).Msg("Default admin user created")
	return nil
}
