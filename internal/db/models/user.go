package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// AuthSource says where an account authenticates: against the local
// password column or at an OAuth provider.
type AuthSource string

const (
	// AuthSourceLocal marks accounts with a password stored in the database.
	AuthSourceLocal AuthSource = "local"
	// AuthSourceOAuth marks accounts created through an OAuth provider login.
	AuthSourceOAuth AuthSource = "oauth"
)

// User is one account. Accounts log in locally or through a configured
// OAuth provider and carry exactly one role, which decides their
// permissions.
type User struct {
	// ID is the primary key.
	ID uint64 `gorm:"primaryKey"`
	// Active gates login, inactive accounts are rejected everywhere.
	Active bool
	// Username identifies the account at login, unique across the table.
	Username string `gorm:"unique;size:100;not null"`
	// Email is the address OAuth allow-lists are matched against.
	Email string `gorm:"size:255;not null"`
	// Password holds the Argon2id hash, empty for OAuth accounts.
	Password string `gorm:"size:255"`
	// FirstName is the given name.
	FirstName string `gorm:"size:100"`
	// LastName is the family name.
	LastName string `gorm:"size:100"`
	// RoleID references the account's role.
	RoleID uint `gorm:"column:role_id;not null"`
	// Role is the referenced role, the foreign key keeps roles with members
	// from being deleted.
	Role Role `gorm:"foreignKey:RoleID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE"`
	// AuthSource says whether this account authenticates locally or via OAuth.
	AuthSource AuthSource `gorm:"type:varchar(20);not null;default:'local'"`
	// OAuthProvider names the provider the identity came from, OAuth accounts only.
	OAuthProvider string `gorm:"size:100"`
	// ExternalID is the identifier the OAuth provider reports for this account.
	ExternalID string `gorm:"size:255"`
	// LastLoginAt is the time of the most recent login, nil before the first.
	LastLoginAt *time.Time
	// CreatedAt is maintained by gorm.
	CreatedAt time.Time
	// UpdatedAt is maintained by gorm.
	UpdatedAt time.Time
	// DeletedAt is the soft delete marker.
	DeletedAt *time.Time
}

// HashPassword hashes a plaintext password with the default Argon2id
// parameters. Hashing only fails on unusable parameters, which stops the
// process.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword compares a plaintext password against the stored Argon2id
// hash in constant time. A malformed stored hash counts as a mismatch.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
