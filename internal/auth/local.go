package auth

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/db/models"
)

// LocalProvider authenticates users against the local database. Accounts
// provisioned through an OAuth provider carry no usable password and are
// not visible to it.
type LocalProvider struct {
	db *gorm.DB
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{db: db}
}

// Authenticate verifies the username and password against the stored local
// account. Disabled accounts are rejected before the password is checked.
// A successful login updates the account's last login time.
func (p *LocalProvider) Authenticate(username, password string) (*models.User, error) {
	var user models.User

	err := p.db.Where("username = ? AND auth_source = ?", username, models.AuthSourceLocal).
		First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrUserNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	// best effort, a failed timestamp update must not fail the login
	now := time.Now()
	user.LastLoginAt = &now
	_ = p.db.Model(&user).Update("last_login_at", now).Error

	return &user, nil
}
