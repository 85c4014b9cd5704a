package auth_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/auth"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/config"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/db/models"
)

// setupStore creates a Store on an in-memory SQLite database.
func setupStore(t *testing.T, cfg *config.Config) (*auth.Store, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.User{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return auth.NewStore(db, cfg), db
}

// grantCount returns the number of permissions granted to the named role.
func grantCount(t *testing.T, db *gorm.DB, roleName string) int {
	t.Helper()

	var role models.Role
	require.NoError(t, db.Where("name = ?", roleName).First(&role).Error)

	var count int64
	require.NoError(t, db.Model(&models.RolePermission{}).Where("role_id = ?", role.ID).Count(&count).Error)

	return int(count)
}

// grantedNames returns the permission names granted to the named role.
func grantedNames(t *testing.T, db *gorm.DB, roleName string) []string {
	t.Helper()

	var role models.Role
	require.NoError(t, db.Where("name = ?", roleName).First(&role).Error)

	var names []string
	err := db.Model(&models.Permission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", role.ID).
		Order("permissions.name").
		Pluck("permissions.name", &names).Error
	require.NoError(t, err)

	return names
}

func TestSyncRoleDefinitionsCreatesBuiltins(t *testing.T) {
	store, db := setupStore(t, &config.Config{})

	require.NoError(t, store.SyncRoleDefinitions())

	var permCount int64
	require.NoError(t, db.Model(&models.Permission{}).Count(&permCount).Error)
	assert.Equal(t, int64(len(auth.RegisteredPermissions())), permCount)

	var admin models.Role
	require.NoError(t, db.Where("name = ?", auth.RoleAdmin).First(&admin).Error)
	assert.True(t, admin.IsSystem)
	assert.Equal(t, len(auth.RegisteredPermissions()), grantCount(t, db, auth.RoleAdmin))

	var gamma models.Role
	require.NoError(t, db.Where("name = ?", auth.RoleGamma).First(&gamma).Error)
	assert.True(t, gamma.IsSystem)
	assert.Equal(t, []string{
		auth.PermChartRead,
		auth.PermDashboardView,
		auth.PermDatasetRead,
	}, grantedNames(t, db, auth.RoleGamma))
}

func TestSyncRoleDefinitionsIsIdempotent(t *testing.T) {
	store, db := setupStore(t, &config.Config{})

	require.NoError(t, store.SyncRoleDefinitions())
	require.NoError(t, store.SyncRoleDefinitions())

	var roleCount int64
	require.NoError(t, db.Model(&models.Role{}).Count(&roleCount).Error)
	assert.Equal(t, int64(2), roleCount)

	var permCount int64
	require.NoError(t, db.Model(&models.Permission{}).Count(&permCount).Error)
	assert.Equal(t, int64(len(auth.RegisteredPermissions())), permCount)

	assert.Equal(t, len(auth.RegisteredPermissions()), grantCount(t, db, auth.RoleAdmin))
}

func TestSetCustomRole(t *testing.T) {
	store, db := setupStore(t, &config.Config{})

	require.NoError(t, store.CreateMissingPerms())

	allowed := map[string]struct{}{auth.PermAllDatasourceAccess: {}}
	require.NoError(t, store.SetCustomRole("Test_role", auth.IsCustomPVM, allowed))

	var role models.Role
	require.NoError(t, db.Where("name = ?", "Test_role").First(&role).Error)
	assert.False(t, role.IsSystem)

	assert.Equal(t, []string{auth.PermAllDatasourceAccess}, grantedNames(t, db, "Test_role"))
}

func TestSetCustomRoleDropsStaleGrants(t *testing.T) {
	store, db := setupStore(t, &config.Config{})

	require.NoError(t, store.CreateMissingPerms())

	first := map[string]struct{}{
		auth.PermAllDatasourceAccess: {},
		auth.PermDashboardView:       {},
	}
	require.NoError(t, store.SetCustomRole("Test_role", auth.IsCustomPVM, first))
	require.Len(t, grantedNames(t, db, "Test_role"), 2)

	// the configuration changed, the stored grants must follow
	second := map[string]struct{}{auth.PermDashboardView: {}}
	require.NoError(t, store.SetCustomRole("Test_role", auth.IsCustomPVM, second))

	assert.Equal(t, []string{auth.PermDashboardView}, grantedNames(t, db, "Test_role"))

	var roleCount int64
	require.NoError(t, db.Model(&models.Role{}).Where("name = ?", "Test_role").Count(&roleCount).Error)
	assert.Equal(t, int64(1), roleCount, "re-provisioning must not duplicate the role")
}

func TestSetCustomRoleUnknownPermission(t *testing.T) {
	store, db := setupStore(t, &config.Config{})

	require.NoError(t, store.CreateMissingPerms())

	// nothing stored matches, the role exists but grants nothing
	allowed := map[string]struct{}{"does_not_exist": {}}
	require.NoError(t, store.SetCustomRole("Empty_role", auth.IsCustomPVM, allowed))

	assert.Zero(t, grantCount(t, db, "Empty_role"))
}

func TestCleanPerms(t *testing.T) {
	store, db := setupStore(t, &config.Config{})

	require.NoError(t, store.SyncRoleDefinitions())

	orphan := models.Permission{Name: "stale.permission", Resource: "stale", Action: "permission"}
	require.NoError(t, db.Create(&orphan).Error)

	require.NoError(t, store.CleanPerms())

	var count int64
	require.NoError(t, db.Model(&models.Permission{}).Where("name = ?", "stale.permission").Count(&count).Error)
	assert.Zero(t, count, "unreferenced permission should be removed")

	// granted permissions survive the cleanup
	var permCount int64
	require.NoError(t, db.Model(&models.Permission{}).Count(&permCount).Error)
	assert.Equal(t, int64(len(auth.RegisteredPermissions())), permCount)
}

func oauthTestInfo() *auth.UserInfo {
	return &auth.UserInfo{
		Name:      "test auth",
		Email:     "testauth@ona.io",
		ID:        "58863",
		Username:  "testauth",
		FirstName: "test",
		LastName:  "auth",
	}
}

func TestAuthUserOAuthRegistersNewUser(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.UserRegistration = true

	store, db := setupStore(t, cfg)
	require.NoError(t, store.SyncRoleDefinitions())

	user, err := store.AuthUserOAuth(oauthTestInfo(), "onadata")
	require.NoError(t, err)

	assert.True(t, user.Active)
	assert.Equal(t, "testauth", user.Username)
	assert.Equal(t, "testauth@ona.io", user.Email)
	assert.Equal(t, "test", user.FirstName)
	assert.Equal(t, "auth", user.LastName)
	assert.Equal(t, models.AuthSourceOAuth, user.AuthSource)
	assert.Equal(t, "onadata", user.OAuthProvider)
	assert.Equal(t, "58863", user.ExternalID)
	assert.NotNil(t, user.LastLoginAt, "registration counts as a login")

	// unset registration role falls back to Gamma
	var gamma models.Role
	require.NoError(t, db.Where("name = ?", auth.RoleGamma).First(&gamma).Error)
	assert.Equal(t, gamma.ID, user.RoleID)
}

func TestAuthUserOAuthCustomRegistrationRole(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.UserRegistration = true
	cfg.Auth.UserRegistrationRole = auth.RoleAdmin

	store, db := setupStore(t, cfg)
	require.NoError(t, store.SyncRoleDefinitions())

	user, err := store.AuthUserOAuth(oauthTestInfo(), "onadata")
	require.NoError(t, err)

	var admin models.Role
	require.NoError(t, db.Where("name = ?", auth.RoleAdmin).First(&admin).Error)
	assert.Equal(t, admin.ID, user.RoleID)
}

func TestAuthUserOAuthRegistrationDisabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.UserRegistration = false

	store, _ := setupStore(t, cfg)
	require.NoError(t, store.SyncRoleDefinitions())

	_, err := store.AuthUserOAuth(oauthTestInfo(), "onadata")
	require.ErrorIs(t, err, auth.ErrRegistrationDisabled)
}

func TestAuthUserOAuthRegistrationRoleMissing(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.UserRegistration = true
	cfg.Auth.UserRegistrationRole = "Nonexistent"

	store, _ := setupStore(t, cfg)
	require.NoError(t, store.SyncRoleDefinitions())

	_, err := store.AuthUserOAuth(oauthTestInfo(), "onadata")
	require.ErrorIs(t, err, auth.ErrRegistrationRoleMissing)
}

func TestAuthUserOAuthRefreshesExistingUser(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.UserRegistration = true

	store, db := setupStore(t, cfg)
	require.NoError(t, store.SyncRoleDefinitions())

	created, err := store.AuthUserOAuth(oauthTestInfo(), "onadata")
	require.NoError(t, err)

	// the provider reports fresh profile fields on the next login
	updated := oauthTestInfo()
	updated.Email = "renamed@ona.io"
	updated.FirstName = "renamed"

	user, err := store.AuthUserOAuth(updated, "onadata")
	require.NoError(t, err)

	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "renamed@ona.io", user.Email)
	assert.Equal(t, "renamed", user.FirstName)
	assert.NotNil(t, user.LastLoginAt)

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.Equal(t, int64(1), userCount)
}

func TestAuthUserOAuthDisabledAccount(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.UserRegistration = true

	store, db := setupStore(t, cfg)
	require.NoError(t, store.SyncRoleDefinitions())

	user, err := store.AuthUserOAuth(oauthTestInfo(), "onadata")
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("active", false).Error)

	_, err = store.AuthUserOAuth(oauthTestInfo(), "onadata")
	require.ErrorIs(t, err, auth.ErrUserAccountDisabled)
}
