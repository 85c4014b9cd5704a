// Package handler holds what the page handler packages share: the Service
// interface their package-level Handler values implement, the layout name
// and route path constants.
package handler

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/config"
)

// Service is implemented by every page handler package. Init registers the
// handler's routes on the app.
type Service interface {
	Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error
}
