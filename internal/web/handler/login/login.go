package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/auth"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/config"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/handler"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = "/login"
)

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg   *config.Config
	db    *gorm.DB
	local *auth.LocalProvider
}

// Handler is the login handler.
var Handler = Service{}

// providerLink is a login button for a configured OAuth provider.
type providerLink struct {
	Name string
	URL  string
}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app or db is nil")
	}

	s.db = db
	s.cfg = cfg
	s.local = auth.NewLocalProvider(db)

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
	})

	return nil
}

// providerLinks lists the configured OAuth providers in configuration order.
func (s *Service) providerLinks() []providerLink {
	links := make([]providerLink, 0, len(s.cfg.Auth.Providers))

	for _, p := range s.cfg.Auth.Providers {
		links = append(links, providerLink{
			Name: p.Name,
			URL:  Path + "/oauth/" + p.Name,
		})
	}

	return links
}

// renderForm renders the login page, optionally with an error message.
func (s *Service) renderForm(c *fiber.Ctx, errorMsg string) error {
	bind := fiber.Map{
		"local_db_enabled": true,
		"providers":        s.providerLinks(),
	}

	if errorMsg != "" {
		bind["error"] = errorMsg
	}

	return c.Render("login", bind)
}

// Get handles the login page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	return s.renderForm(c, "")
}

// Post handles the local login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	var in struct {
		Username string `form:"username"`
		Password string `form:"password"`
	}

	if err := c.BodyParser(&in); err != nil {
		return s.renderForm(c, ErrInvalidFormData.Error())
	}

	user, err := s.local.Authenticate(in.Username, in.Password)

	switch {
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidPassword):
		return s.renderForm(c, ErrInvalidCredentials.Error())
	case errors.Is(err, auth.ErrUserAccountDisabled):
		return s.renderForm(c, ErrAccountDisabled.Error())
	case err != nil:
		log.Error().Err(err).Msg("local authentication failed")
		return s.renderForm(c, ErrInternalServerError.Error())
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")
		return s.renderForm(c, ErrInternalServerError.Error())
	}

	userSession := &session.Data{
		User: *user,
	}

	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return s.renderForm(c, ErrInternalServerError.Error())
	}

	c.Cookie(session.NewCookie(sessionID, s.cfg.Webserver.Session.ExpiryTime, s.cfg.DevMode))

	return c.Redirect("/dashboard")
}
