package auth

import (
	"fmt"

	"gorm.io/gorm"
)

// Both queries walk the same path: a permission row, its role assignment,
// the users carrying that role.
const (
	joinRolePermissions = "JOIN role_permissions ON role_permissions.permission_id = permissions.id"
	joinUsersByRole     = "JOIN users ON users.role_id = role_permissions.role_id"
)

// Service answers permission questions from the role tables. Grants are
// attached to roles, never to users directly, so every check joins through
// the user's role.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// HasPermission reports whether the user's role carries the named
// permission.
func (s *Service) HasPermission(userID uint64, permission string) (bool, error) {
	var count int64

	err := s.db.Table("permissions").
		Joins(joinRolePermissions).
		Joins(joinUsersByRole).
		Where("users.id = ? AND permissions.name = ?", userID, permission).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check role permission: %w", err)
	}

	return count > 0, nil
}

// GetUserPermissions lists the distinct permission names granted through
// the user's role.
func (s *Service) GetUserPermissions(userID uint64) ([]string, error) {
	var permissions []string

	err := s.db.Table("permissions").
		Select("DISTINCT permissions.name").
		Joins(joinRolePermissions).
		Joins(joinUsersByRole).
		Where("users.id = ?", userID).
		Pluck("permissions.name", &permissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user permissions: %w", err)
	}

	return permissions, nil
}
