package models

// RolePermission is the junction row tying one permission to one role. The
// startup role sync rewrites these rows for custom roles, so the stored set
// always matches the configured one. Deleting a role cascades into its rows
// here.
type RolePermission struct {
	// RoleID is half of the composite key.
	RoleID uint `gorm:"primaryKey;column:role_id"`
	// PermissionID is the other half.
	PermissionID uint `gorm:"primaryKey;column:permission_id"`
	// Role resolves the role side of the mapping.
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	// Permission resolves the permission side.
	Permission Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE"`
}

// TableName pins the table name independent of gorm's naming strategy.
func (RolePermission) TableName() string {
	return "role_permissions"
}
