package models

import "time"

// Permission is one grantable right, attached to roles rather than users.
// Besides the seeded base permissions, rows are created on demand for
// permission names a configured custom role references.
type Permission struct {
	// ID is the primary key.
	ID uint `gorm:"primaryKey"`
	// Name is the permission identifier checked at request time, for example
	// "dashboard.view" or "all_datasource_access". Unique across the table.
	Name string `gorm:"unique;size:100;not null"`
	// Resource is the surface the permission covers, "dashboard" or "admin".
	Resource string `gorm:"size:100;not null"`
	// Action is what the permission allows on the resource.
	Action string `gorm:"size:50;not null"`
	// Description says what the permission grants.
	Description string `gorm:"size:255"`
	// CreatedAt is maintained by gorm.
	CreatedAt time.Time
	// UpdatedAt is maintained by gorm.
	UpdatedAt time.Time
}

// TableName pins the table name independent of gorm's naming strategy.
func (Permission) TableName() string {
	return "permissions"
}
