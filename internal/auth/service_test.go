package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/auth"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/config"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/db/models"
)

// seedServiceUser provisions the built-in roles and creates a user holding
// the Gamma role.
func seedServiceUser(t *testing.T) (*auth.Service, *models.User) {
	t.Helper()

	store, db := setupStore(t, &config.Config{})
	require.NoError(t, store.SyncRoleDefinitions())

	var gamma models.Role
	require.NoError(t, db.Where("name = ?", auth.RoleGamma).First(&gamma).Error)

	user := models.User{
		Active:     true,
		Username:   "viewer",
		Email:      "viewer@example.com",
		RoleID:     gamma.ID,
		AuthSource: models.AuthSourceLocal,
	}
	require.NoError(t, db.Create(&user).Error)

	return auth.NewService(db), &user
}

func TestHasPermission(t *testing.T) {
	service, user := seedServiceUser(t)

	has, err := service.HasPermission(user.ID, auth.PermDashboardView)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = service.HasPermission(user.ID, auth.PermAdminUsers)
	require.NoError(t, err)
	assert.False(t, has, "Gamma must not reach the admin surface")
}

func TestHasPermissionUnknownUser(t *testing.T) {
	service, _ := seedServiceUser(t)

	has, err := service.HasPermission(99999, auth.PermDashboardView)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestGetUserPermissions(t *testing.T) {
	service, user := seedServiceUser(t)

	perms, err := service.GetUserPermissions(user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		auth.PermChartRead,
		auth.PermDashboardView,
		auth.PermDatasetRead,
	}, perms)
}

func TestGetUserPermissionsUnknownUser(t *testing.T) {
	service, _ := seedServiceUser(t)

	perms, err := service.GetUserPermissions(99999)
	require.NoError(t, err)
	assert.Empty(t, perms)
}
