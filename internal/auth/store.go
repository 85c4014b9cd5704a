package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/config"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/db/models"
)

// Store is the database-backed role and user store. It implements the
// Manager's Syncer and RoleProvisioner contracts and resolves OAuth
// identities to local user accounts.
type Store struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewStore creates a Store on top of db.
func NewStore(db *gorm.DB, cfg *config.Config) *Store {
	return &Store{db: db, cfg: cfg}
}

// SyncRoleDefinitions creates or updates the built-in roles and their
// permission assignments. Built-in roles are marked as system roles; their
// grants are rewritten to match the registered definition on every sync.
func (s *Store) SyncRoleDefinitions() error {
	if err := s.CreateMissingPerms(); err != nil {
		return err
	}

	for _, def := range builtinRoles {
		perms := def.Perms
		if perms == nil {
			perms = RegisteredPermissions()
		}

		allowed := make(map[string]struct{}, len(perms))
		for _, p := range perms {
			allowed[p] = struct{}{}
		}

		if err := s.setRole(def.Name, def.Description, true, IsCustomPVM, allowed); err != nil {
			return fmt.Errorf("failed to sync built-in role %s: %w", def.Name, err)
		}
	}

	return nil
}

// CreateMissingPerms creates permission records for registered permissions
// that do not exist in the store yet. Existing records are left untouched.
func (s *Store) CreateMissingPerms() error {
	for _, name := range RegisteredPermissions() {
		resource, action := splitPermissionName(name)

		perm := models.Permission{
			Name:     name,
			Resource: resource,
			Action:   action,
		}

		err := s.db.Where("name = ?", name).FirstOrCreate(&perm).Error
		if err != nil {
			return fmt.Errorf("failed to create permission %s: %w", name, err)
		}
	}

	return nil
}

// CleanPerms removes permission records no longer referenced by any role.
func (s *Store) CleanPerms() error {
	result := s.db.
		Where("id NOT IN (?)", s.db.Table("role_permissions").Select("permission_id")).
		Delete(&models.Permission{})
	if result.Error != nil {
		return fmt.Errorf("failed to clean unreferenced permissions: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		log.Info().Int64("count", result.RowsAffected).Msg("removed unreferenced permissions")
	}

	return nil
}

// SetCustomRole creates or updates the named role from configuration. Every
// stored permission is run through match against the allowed set, so the
// role ends up carrying exactly the configured grants; stale grants are
// dropped. Permission names without a stored record are skipped here, they
// simply grant nothing until the record exists.
func (s *Store) SetCustomRole(name string, match PermissionMatcher, allowed map[string]struct{}) error {
	return s.setRole(name, "Provisioned from configuration", false, match, allowed)
}

// setRole rewrites the role's permission assignments inside one transaction.
func (s *Store) setRole(
	name, description string,
	system bool,
	match PermissionMatcher,
	allowed map[string]struct{},
) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		role := models.Role{
			Name:        name,
			Description: description,
			IsSystem:    system,
		}

		if err := tx.Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("failed to create role %s: %w", name, err)
		}

		var perms []models.Permission
		if err := tx.Find(&perms).Error; err != nil {
			return fmt.Errorf("failed to load permissions: %w", err)
		}

		// drop current grants, then re-grant the matched set
		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to clear grants of role %s: %w", name, err)
		}

		for _, perm := range perms {
			if !match(perm.Name, allowed) {
				continue
			}

			rp := models.RolePermission{
				RoleID:       role.ID,
				PermissionID: perm.ID,
			}

			if err := tx.Create(&rp).Error; err != nil {
				return fmt.Errorf("failed to grant %s to role %s: %w", perm.Name, name, err)
			}
		}

		return nil
	})
}

// AuthUserOAuth resolves a canonical user record to a local user account,
// creating the account when user registration is enabled. Existing accounts
// get their profile fields refreshed from the provider.
func (s *Store) AuthUserOAuth(info *UserInfo, provider string) (*models.User, error) {
	var user models.User

	err := s.db.Where("username = ?", info.Username).First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.registerOAuthUser(info, provider)
	case err != nil:
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	// refresh profile fields from the provider
	now := time.Now()
	user.Email = info.Email
	user.FirstName = info.FirstName
	user.LastName = info.LastName
	user.LastLoginAt = &now
	user.UpdatedAt = now

	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return &user, nil
}

// registerOAuthUser creates a local account for a first-time OAuth identity.
func (s *Store) registerOAuthUser(info *UserInfo, provider string) (*models.User, error) {
	if !s.cfg.Auth.UserRegistration {
		return nil, ErrRegistrationDisabled
	}

	roleName := s.cfg.Auth.UserRegistrationRole
	if roleName == "" {
		roleName = RoleGamma
	}

	var role models.Role

	err := s.db.Where("name = ?", roleName).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRegistrationRoleMissing, roleName)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to look up registration role: %w", err)
	}

	now := time.Now()
	user := models.User{
		Active:        true,
		Username:      info.Username,
		Email:         info.Email,
		FirstName:     info.FirstName,
		LastName:      info.LastName,
		RoleID:        role.ID,
		AuthSource:    models.AuthSourceOAuth,
		OAuthProvider: provider,
		ExternalID:    info.ID,
		LastLoginAt:   &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Str("username", user.Username).Str("provider", provider).Msg("registered new oauth user")

	return &user, nil
}

// splitPermissionName derives the resource and action columns from a
// permission name. Names without a dot are coarse grants; they keep the full
// name as resource with a generic action.
func splitPermissionName(name string) (resource, action string) {
	if i := strings.Index(name, "."); i > 0 && i < len(name)-1 {
		return name[:i], name[i+1:]
	}

	return name, "access"
}
