package authz

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcruz/schoolgate/internal/app/models"
	"github.com/dcruz/schoolgate/internal/app/repositories"
)

func TestCapabilitySet_Can(t *testing.T) {
	caps := NewCapabilitySet([]string{models.PermViewApplications, models.PermManageApplications}, false)

	assert.True(t, caps.Can(models.PermViewApplications))
	assert.True(t, caps.Can(models.PermManageApplications))
	assert.False(t, caps.Can(models.PermManageRoles))
	assert.False(t, caps.IsSuperAdmin())
}

func TestCapabilitySet_SuperAdminNeedsExplicitGrants(t *testing.T) {
	// Holding the protected role does not implicitly grant permissions;
	// the seeded super-admin role carries every permission instead.
	caps := NewCapabilitySet(nil, true)

	assert.True(t, caps.IsSuperAdmin())
	assert.False(t, caps.Can(models.PermManageRoles))
}

func TestCapabilitySet_Slugs(t *testing.T) {
	caps := NewCapabilitySet([]string{"a", "b", "a"}, false)
	assert.ElementsMatch(t, []string{"a", "b"}, caps.Slugs())
}

func TestAuthorizationService_CapabilitiesFor(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewAuthorizationService(repositories.NewUserRepository(mock))

	mock.ExpectQuery(`SELECT DISTINCT p.slug`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"slug"}).
			AddRow(models.PermViewStudents).
			AddRow(models.PermManageStudents))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(7), models.SuperAdminSlug).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	caps, err := svc.CapabilitiesFor(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, caps.Can(models.PermViewStudents))
	assert.True(t, caps.Can(models.PermManageStudents))
	assert.False(t, caps.Can(models.PermViewUsers))
	assert.False(t, caps.IsSuperAdmin())

	assert.NoError(t, mock.ExpectationsWereMet())
}
