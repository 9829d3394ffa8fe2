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

// UserRepository handles database operations for staff accounts
type UserRepository struct {
	db db.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(pool db.Pool) *UserRepository {
	return &UserRepository{
		db: pool,
	}
}

const userColumns = `
	id, email, password, first_name, last_name, role_id, is_active,
	last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Password,
		&u.FirstName,
		&u.LastName,
		&u.RoleID,
		&u.IsActive,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user. A unique violation on email maps to
// apperrors.ErrEmailAlreadyExists.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (email, password, first_name, last_name, role_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query, u.Email, u.Password, u.FirstName, u.LastName, u.RoleID, u.IsActive).Scan(&u.ID)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error creating user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT`+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT`+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user by email: %w", err)
	}

	return user, nil
}

// GetAll retrieves all users ordered by creation time.
func (r *UserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.Query(ctx, `SELECT`+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// Update rewrites a user's account fields.
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	query := `
		UPDATE users
		SET email = $1, password = $2, first_name = $3, last_name = $4,
			role_id = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7
	`

	cmdTag, err := r.db.Exec(ctx, query, u.Email, u.Password, u.FirstName, u.LastName, u.RoleID, u.IsActive, u.ID)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error updating user: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

// Delete removes a user and, via cascade, their role assignments.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

// UpdateLastLogin stamps the user's last login time.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error updating last login: %w", err)
	}
	return nil
}

// ReplaceRoles replaces the user's full assigned role set.
func (r *UserRepository) ReplaceRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("error clearing user roles: %w", err)
	}

	for _, roleID := range roleIDs {
		if _, err := r.db.Exec(ctx,
			`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, roleID); err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrRoleNotFound
			}
			return fmt.Errorf("error assigning role: %w", err)
		}
	}

	return nil
}

// GetRoles retrieves the user's full role set: the many-to-many assignments
// plus the optional primary role reference.
func (r *UserRepository) GetRoles(ctx context.Context, userID int64) ([]models.Role, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT ro.id, ro.name, ro.slug
		FROM roles ro
		WHERE ro.id IN (
			SELECT role_id FROM user_roles WHERE user_id = $1
			UNION
			SELECT role_id FROM users WHERE id = $1 AND role_id IS NOT NULL
		)
		ORDER BY ro.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var ro models.Role
		if err := rows.Scan(&ro.ID, &ro.Name, &ro.Slug); err != nil {
			return nil, err
		}
		roles = append(roles, ro)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return roles, nil
}

// GetPermissionSlugs flattens the user's effective permission set in a single
// query: the union of permissions across every assigned role, including the
// primary role reference.
func (r *UserRepository) GetPermissionSlugs(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT p.slug
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id IN (
			SELECT role_id FROM user_roles WHERE user_id = $1
			UNION
			SELECT role_id FROM users WHERE id = $1 AND role_id IS NOT NULL
		)`, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading permission set: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		slugs = append(slugs, slug)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return slugs, nil
}

// HasRoleSlug reports whether the user holds a role with the given slug.
func (r *UserRepository) HasRoleSlug(ctx context.Context, userID int64, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM roles ro
			WHERE ro.slug = $2
			  AND ro.id IN (
				SELECT role_id FROM user_roles WHERE user_id = $1
				UNION
				SELECT role_id FROM users WHERE id = $1 AND role_id IS NOT NULL
			  )
		)`, userID, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking role slug: %w", err)
	}

	return exists, nil
}
