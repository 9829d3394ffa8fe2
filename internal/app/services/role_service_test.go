package services

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcruz/schoolgate/internal/app/models"
	"github.com/dcruz/schoolgate/internal/app/models/dto"
	"github.com/dcruz/schoolgate/internal/app/repositories"
	"github.com/dcruz/schoolgate/internal/pkg/apperrors"
)

func newRoleServiceForTest(mock pgxmock.PgxPoolIface) *RoleService {
	return NewRoleService(
		repositories.NewRoleRepository(mock),
		repositories.NewUserRepository(mock),
	)
}

func superAdminRoleRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "name", "slug"}).
		AddRow(int64(1), "Super Admin", models.SuperAdminSlug)
}

func TestRoleService_UpdateRole_SuperAdminProtected(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := newRoleServiceForTest(mock)

	mock.ExpectQuery(`SELECT id, name, slug FROM roles`).
		WithArgs(int64(1)).
		WillReturnRows(superAdminRoleRows())
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(99), models.SuperAdminSlug).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	name := "Renamed"
	_, err = svc.UpdateRole(context.Background(), 99, 1, &dto.UpdateRoleRequest{Name: name})
	assert.True(t, errors.Is(err, apperrors.ErrSuperAdminProtected))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleService_UpdateRole_SuperAdminActorAllowed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := newRoleServiceForTest(mock)

	mock.ExpectQuery(`SELECT id, name, slug FROM roles`).
		WithArgs(int64(1)).
		WillReturnRows(superAdminRoleRows())
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(7), models.SuperAdminSlug).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(`UPDATE roles SET name`).
		WithArgs("Root", int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	// Reload for the response
	mock.ExpectQuery(`SELECT id, name, slug FROM roles`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "slug"}).
			AddRow(int64(1), "Root", models.SuperAdminSlug))
	mock.ExpectQuery(`FROM permissions p`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "slug"}))

	role, err := svc.UpdateRole(context.Background(), 7, 1, &dto.UpdateRoleRequest{Name: "Root"})
	require.NoError(t, err)
	assert.Equal(t, "Root", role.Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleService_DeleteRole_SuperAdminProtected(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := newRoleServiceForTest(mock)

	mock.ExpectQuery(`SELECT id, name, slug FROM roles`).
		WithArgs(int64(1)).
		WillReturnRows(superAdminRoleRows())
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(99), models.SuperAdminSlug).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	err = svc.DeleteRole(context.Background(), 99, 1)
	assert.True(t, errors.Is(err, apperrors.ErrSuperAdminProtected))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleService_DeleteRole_AssignedToUsers(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := newRoleServiceForTest(mock)

	mock.ExpectQuery(`SELECT id, name, slug FROM roles`).
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "slug"}).
			AddRow(int64(2), "Registrar", "registrar"))
	mock.ExpectQuery(`SELECT COUNT\(DISTINCT user_id\)`).
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	err = svc.DeleteRole(context.Background(), 99, 2)
	assert.True(t, errors.Is(err, apperrors.ErrRoleAssignedToUsers))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleService_CreateRole_SuperAdminSlugProtected(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := newRoleServiceForTest(mock)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(99), models.SuperAdminSlug).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	_, err = svc.CreateRole(context.Background(), 99, &dto.CreateRoleRequest{
		Name: "Fake Root",
		Slug: " Super-Admin ",
	})
	assert.True(t, errors.Is(err, apperrors.ErrSuperAdminProtected))

	assert.NoError(t, mock.ExpectationsWereMet())
}
