package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/auth"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/config"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/db/models"
)

// seed creates the initial admin account when the user table is empty.
// It runs after the role sync, the Admin role must already exist.
func seed(_ *config.Config, db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Count(&count)

	if count != 0 {
		return
	}

	var admin models.Role
	if err := db.Where("name = ?", auth.RoleAdmin).First(&admin).Error; err != nil {
		log.Error().Err(err).Msg("admin role missing, skipping admin user seed")
		return
	}

	user := models.User{
		Active:     true,
		Username:   "admin",
		Email:      "admin@localhost",
		Password:   models.HashPassword("changeme"),
		RoleID:     admin.ID,
		AuthSource: models.AuthSourceLocal,
	}

	if err := db.Create(&user).Error; err != nil {
		log.Error().Err(err).Msg("failed to seed admin user")
		return
	}

	log.Warn().Msg("seeded default admin user, change the password after first login")
}
