// Package configuration provides the read-only runtime configuration view
// in the admin area: the stored runtime settings plus the effective config
// the process started with.
package configuration

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/auth"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/config"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/db/controller/setting"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/db/models"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/handler"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/handler/dashboard"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/navigation"
)

const (
	// Path is the base path for the configuration view.
	Path = handler.RootPath + "admin/configuration"

	// TemplateName is the template for the configuration page.
	TemplateName = "admin/configuration"

	// DefaultPageSize for pagination.
	DefaultPageSize = 25

	// MaxValuePreview caps how many bytes of a setting value the list shows.
	MaxValuePreview = 120

	// RedactedValue replaces secrets in the rendered config dump.
	RedactedValue = "[redacted]"
)

// SettingRow is one stored runtime setting prepared for the template.
type SettingRow struct {
	ID        uint64
	Name      string
	Value     string
	Truncated bool
}

// Service renders the runtime configuration page.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db

	app.Get(Path,
		auth.RequirePermission(authService, auth.PermAdminSettings),
		s.Get,
	)
	app.Post(Path+"/:id/delete",
		auth.RequirePermission(authService, auth.PermAdminSettings),
		s.Delete,
	)
}

// pageNav builds the navigation context of the configuration page.
func pageNav() *navigation.Context {
	return navigation.NewContext("Configuration", "admin").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Configuration", Path, true)
}

// Get renders the stored runtime settings and the effective configuration.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := pageNav()

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > 100 {
		pageSize = DefaultPageSize
	}

	search := c.Query("search", "")

	settings, totalCount, page, err := setting.Search(s.db, search, page, pageSize)
	if err != nil {
		log.Error().Err(err).Msg("settings lookup failed")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateName, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load settings",
			"Search":     search,
		}, handler.BaseLayout)
	}

	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}

	rows := make([]SettingRow, 0, len(settings))
	for _, setting := range settings {
		rows = append(rows, settingRow(setting))
	}

	dump, err := config.DumpConfig(redact(*s.cfg))
	if err != nil {
		log.Error().Err(err).Msg("failed to dump configuration")

		dump = "" // settings are still worth rendering
	}

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Settings":   rows,
		"ConfigDump": dump,
		"Search":     search,
		"Page":       page,
		"PageSize":   pageSize,
		"TotalItems": totalCount,
		"TotalPages": totalPages,
		"HasPrev":    page > 1,
		"HasNext":    page < totalPages,
		"PrevPage":   page - 1,
		"NextPage":   page + 1,
	}, handler.BaseLayout)
}

// Delete removes a stored runtime setting. The next startup recreates
// anything the daemon maintains itself, like the role sync status.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return c.Redirect(Path)
	}

	if err := setting.Delete(s.db, id); err != nil {
		if errors.Is(err, setting.ErrSettingNotFound) {
			return c.Redirect(Path)
		}

		log.Error().Err(err).Uint64("setting_id", id).Msg("failed to delete setting")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateName, fiber.Map{
			"Navigation": pageNav(),
			"Error":      "Failed to delete setting",
		}, handler.BaseLayout)
	}

	return c.Redirect(Path)
}

// settingRow converts a stored setting into its list representation,
// truncating oversized values so one large blob cannot blow up the page.
func settingRow(item models.Setting) SettingRow {
	row := SettingRow{
		ID:    item.ID,
		Name:  item.Name,
		Value: string(item.Value),
	}

	if len(row.Value) > MaxValuePreview {
		row.Value = row.Value[:MaxValuePreview]
		row.Truncated = true
	}

	return row
}

// redact returns a copy of the configuration with credential material
// replaced, safe to render. Slices are copied before their entries are
// touched so the running config is never modified.
func redact(cfg config.Config) config.Config {
	if cfg.DB.Password != "" {
		cfg.DB.Password = RedactedValue
	}

	if cfg.Log.DataDog.APIKey != "" {
		cfg.Log.DataDog.APIKey = RedactedValue
	}

	if cfg.Log.LogZio.Token != "" {
		cfg.Log.LogZio.Token = RedactedValue
	}

	providers := make([]config.OAuthProvider, len(cfg.Auth.Providers))
	copy(providers, cfg.Auth.Providers)

	for i := range providers {
		if providers[i].ClientSecret != "" {
			providers[i].ClientSecret = RedactedValue
		}
	}

	cfg.Auth.Providers = providers

	return cfg
}
