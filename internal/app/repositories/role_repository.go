package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dcruz/schoolgate/internal/app/models"
	"github.com/dcruz/schoolgate/internal/db"
	"github.com/dcruz/schoolgate/internal/pkg/apperrors"
	"github.com/dcruz/schoolgate/internal/pkg/dberrors"
)

// RoleRepository handles database operations for roles and permissions
type RoleRepository struct {
	db db.Pool
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(pool db.Pool) *RoleRepository {
	return &RoleRepository{
		db: pool,
	}
}

// Create inserts a new role.
func (r *RoleRepository) Create(ctx context.Context, role *models.Role) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO roles (name, slug) VALUES ($1, $2) RETURNING id`,
		role.Name, role.Slug).Scan(&role.ID)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrRoleAlreadyExists
		}
		return fmt.Errorf("error creating role: %w", err)
	}

	return nil
}

// GetByID retrieves a role by ID.
func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*models.Role, error) {
	var role models.Role
	err := r.db.QueryRow(ctx, `SELECT id, name, slug FROM roles WHERE id = $1`, id).
		Scan(&role.ID, &role.Name, &role.Slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRoleNotFound
		}
		return nil, fmt.Errorf("error retrieving role: %w", err)
	}

	return &role, nil
}

// GetBySlug retrieves a role by slug.
func (r *RoleRepository) GetBySlug(ctx context.Context, slug string) (*models.Role, error) {
	var role models.Role
	err := r.db.QueryRow(ctx, `SELECT id, name, slug FROM roles WHERE slug = $1`, slug).
		Scan(&role.ID, &role.Name, &role.Slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRoleNotFound
		}
		return nil, fmt.Errorf("error retrieving role by slug: %w", err)
	}

	return &role, nil
}

// GetAll retrieves all roles.
func (r *RoleRepository) GetAll(ctx context.Context) ([]*models.Role, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, slug FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Slug); err != nil {
			return nil, err
		}
		roles = append(roles, &role)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return roles, nil
}

// UpdateName renames a role.
func (r *RoleRepository) UpdateName(ctx context.Context, id int64, name string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE roles SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrRoleAlreadyExists
		}
		return fmt.Errorf("error updating role: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrRoleNotFound
	}

	return nil
}

// Delete removes a role and its permission links.
func (r *RoleRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting role: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrRoleNotFound
	}

	return nil
}

// UserCount returns how many users carry the role, through either the
// primary reference or the assignment table.
func (r *RoleRepository) UserCount(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(DISTINCT user_id) FROM (
			SELECT user_id FROM user_roles WHERE role_id = $1
			UNION
			SELECT id AS user_id FROM users WHERE role_id = $1
		) assigned`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting role users: %w", err)
	}

	return count, nil
}

// ReplacePermissions replaces a role's full permission set.
func (r *RoleRepository) ReplacePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		return fmt.Errorf("error clearing role permissions: %w", err)
	}

	for _, permissionID := range permissionIDs {
		if _, err := r.db.Exec(ctx,
			`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			roleID, permissionID); err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrPermissionNotFound
			}
			return fmt.Errorf("error granting permission: %w", err)
		}
	}

	return nil
}

// GetPermissions retrieves the permissions granted to a role.
func (r *RoleRepository) GetPermissions(ctx context.Context, roleID int64) ([]models.Permission, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.name, p.slug
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.id`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []models.Permission
	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug); err != nil {
			return nil, err
		}
		permissions = append(permissions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return permissions, nil
}

// GetAllPermissions retrieves every grantable permission.
func (r *RoleRepository) GetAllPermissions(ctx context.Context) ([]models.Permission, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, slug FROM permissions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []models.Permission
	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug); err != nil {
			return nil, err
		}
		permissions = append(permissions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return permissions, nil
}

// EnsurePermission inserts a permission if its slug is not present yet and
// returns its ID either way. Used by the seeder.
func (r *RoleRepository) EnsurePermission(ctx context.Context, name, slug string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO permissions (name, slug) VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET name = permissions.name
		RETURNING id`, name, slug).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error ensuring permission: %w", err)
	}

	return id, nil
}
