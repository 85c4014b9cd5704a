package auth

// Permission constants define the available permissions in the system.
// These are used for role-based access control (RBAC) to restrict access
// to specific resources and actions.
const (
	// PermDashboardView allows viewing the main dashboard.
	PermDashboardView = "dashboard.view"

	// PermChartRead allows viewing charts and their underlying queries.
	PermChartRead = "chart.read"
	// PermChartEdit allows creating and editing charts.
	PermChartEdit = "chart.edit"
	// PermDatasetRead allows viewing datasets and their schemas.
	PermDatasetRead = "dataset.read"
	// PermDatasetEdit allows creating and editing datasets.
	PermDatasetEdit = "dataset.edit"
	// PermSQLLabQuery allows running ad-hoc queries in SQL Lab.
	PermSQLLabQuery = "sqllab.query"

	// PermAllDatasourceAccess is the coarse grant covering every datasource.
	// Kept as a single flat name so it can be referenced from custom role
	// configuration the same way the finer-grained permissions are.
	PermAllDatasourceAccess = "all_datasource_access"

	// PermAdminSettings allows managing application-wide settings.
	PermAdminSettings = "admin.settings"
	// PermAdminUsers allows managing user accounts.
	PermAdminUsers = "admin.users"
	// PermAdminRoles allows managing roles and their permissions.
	PermAdminRoles = "admin.roles"
)

// Built-in role names. These always exist after a role sync.
const (
	// RoleAdmin is the full-access administrative role.
	RoleAdmin = "Admin"
	// RoleGamma is the default read-only role assigned to registered users.
	RoleGamma = "Gamma"
)

// RegisteredPermissions returns every permission the application registers.
// The startup role sync creates a record for each of these.
func RegisteredPermissions() []string {
	return []string{
		PermDashboardView,
		PermChartRead,
		PermChartEdit,
		PermDatasetRead,
		PermDatasetEdit,
		PermSQLLabQuery,
		PermAllDatasourceAccess,
		PermAdminSettings,
		PermAdminUsers,
		PermAdminRoles,
	}
}

// builtinRoles defines the built-in roles and their grants, in the order the
// role sync processes them. A nil permission list means every registered
// permission.
var builtinRoles = []struct {
	Name        string
	Description string
	Perms       []string
}{
	{RoleAdmin, "Full administrative access", nil},
	{RoleGamma, "Read-only access to dashboards, charts and datasets", []string{
		PermDashboardView,
		PermChartRead,
		PermDatasetRead,
	}},
}
