package models

import "time"

// Role is a named set of permissions. The seeded Admin and Gamma roles are
// system roles, custom roles come from the configuration and are synced at
// startup.
type Role struct {
	// ID is the primary key.
	ID uint `gorm:"primaryKey"`
	// Name is the role name, unique across the table.
	Name string `gorm:"unique;size:100;not null"`
	// Description says what the role is for.
	Description string `gorm:"size:255"`
	// IsSystem protects the seeded roles from deletion. Roles synced from
	// configuration are not system roles.
	IsSystem bool `gorm:"default:false"`
	// CreatedAt is maintained by gorm.
	CreatedAt time.Time
	// UpdatedAt is maintained by gorm.
	UpdatedAt time.Time
}

// TableName pins the table name independent of gorm's naming strategy.
func (Role) TableName() string {
	return "roles"
}
