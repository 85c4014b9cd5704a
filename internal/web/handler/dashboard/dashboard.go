// Package dashboard provides the landing page handler shown after login.
package dashboard

import (
	"errors"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/auth"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/config"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/db/controller/rolesync"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/db/controller/setting"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/handler"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/navigation"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/session"
)

const (
	// Path is the path to the dashboard page.
	Path = handler.RootPath + "dashboard"

	// TemplateName is the name of the dashboard template.
	TemplateName = "dashboard/dashboard"
)

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService

	// register routes with permission checks
	app.Get(Path,
		auth.RequirePermission(authService, auth.PermDashboardView),
		s.Get,
	)
}

// Get handles the dashboard page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewContext("Dashboard", "dashboard").
		AddBreadcrumb("Home", Path, false).
		AddBreadcrumb("Dashboard", Path, true)

	// Get current user from session
	sessionData := new(session.Data)
	if sessionID := c.Cookies(session.CookieName); sessionID != "" {
		if err := sessionData.Read(sessionID); err != nil {
			log.Error().Err(err).Msg("failed to read session")
		}
	}

	permissions, err := s.authService.GetUserPermissions(sessionData.User.ID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", sessionData.User.ID).Msg("failed to load user permissions")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load permissions")
	}

	sort.Strings(permissions)

	// Role sync status is absent until the first startup sync has run
	var (
		syncStatus rolesync.Status
		synced     = true
	)

	if err := syncStatus.Load(s.db); err != nil {
		if !errors.Is(err, setting.ErrSettingNotFound) {
			log.Error().Err(err).Msg("failed to load role sync status")
		}

		synced = false
	}

	return c.Render(TemplateName, fiber.Map{
		"Navigation":  nav,
		"User":        sessionData.User,
		"Provider":    sessionData.OAuth.Provider,
		"Permissions": permissions,
		"RoleSync":    syncStatus,
		"RoleSynced":  synced,
	}, handler.BaseLayout)
}
