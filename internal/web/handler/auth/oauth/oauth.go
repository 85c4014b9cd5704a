package oauth

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/auth"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/config"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/db/models"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/uniuri"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/handler"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/handler/dashboard"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/handler/login"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/session"
)

const (
	// LoginPath initiates a login against the named provider.
	LoginPath = login.Path + "/oauth/:provider"

	// CallbackPath is the route providers redirect back to after
	// authorization.
	CallbackPath = auth.CallbackPath + "/:provider"

	// HeaderAPIToken carries a pre-issued provider access token. Requests
	// with this header skip the authorization-code exchange.
	HeaderAPIToken = "Custom-Api-Token"

	// stateTTL is how long a started login may wait for the callback.
	stateTTL = 5 * time.Minute

	stateLen = 32
)

// Service is the OAuth login handler service.
type Service struct {
	handler.Service
	cfg     *config.Config
	db      *gorm.DB
	manager *auth.Manager
	store   *auth.Store
	states  *stateStore
}

// Handler is the OAuth login handler.
var Handler = Service{}

// Init initializes the OAuth login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, manager *auth.Manager) {
	if app == nil || cfg == nil || db == nil || manager == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.manager = manager
	s.store = auth.NewStore(db, cfg)
	s.states = newStateStore()

	// register routes
	app.Get(LoginPath, s.Login)
	app.Get(CallbackPath, s.Callback)

	go s.states.cleanup(time.Minute)
}

// Login starts the login flow by redirecting the browser to the provider's
// authorization endpoint. An optional next query parameter is carried
// through the provider round trip.
func (s *Service) Login(c *fiber.Ctx) error {
	provider := c.Params("provider")

	state := uniuri.NewLen(stateLen)

	authURL, err := s.manager.AuthCodeURL(provider, state)
	if err != nil {
		log.Warn().Str("provider", provider).Msg("login request for unknown oauth provider")
		return c.Redirect(login.Path)
	}

	s.states.Put(state, c.Query("next"), stateTTL)

	return c.Redirect(authURL)
}

// Callback handles the provider redirect back to the application.
//
// A missing code, an unknown state or a failed exchange does not fail the
// request; the browser is redirected without a login. Provider API failures
// after a token was obtained are returned.
func (s *Service) Callback(c *fiber.Ctx) error {
	provider := c.Params("provider")

	token, next := s.obtainToken(c, provider)
	if token == nil {
		// declined or failed authorization
		return c.Redirect(s.redirectTarget(provider, next))
	}

	info, err := s.manager.OAuthUserInfo(context.Background(), provider, token)
	if err != nil {
		log.Error().Err(err).Str("provider", provider).Msg("failed to fetch oauth user info")
		return err
	}

	if info == nil {
		log.Warn().Str("provider", provider).Msg("no user info resolved, not logging in")
		return c.Redirect(s.redirectTarget(provider, next))
	}

	if !s.manager.OAuthAllowed(provider, info.Email) {
		log.Warn().
			Str("provider", provider).
			Str("email", info.Email).
			Msg("email rejected by provider allow-list")

		return c.Redirect(s.redirectTarget(provider, next))
	}

	user, err := s.store.AuthUserOAuth(info, provider)

	switch {
	case errors.Is(err, auth.ErrRegistrationDisabled),
		errors.Is(err, auth.ErrRegistrationRoleMissing),
		errors.Is(err, auth.ErrUserAccountDisabled):
		log.Warn().Err(err).Str("username", info.Username).Msg("oauth login rejected")
		return c.Redirect(s.redirectTarget(provider, next))
	case err != nil:
		log.Error().Err(err).Str("username", info.Username).Msg("oauth login failed")
		return err
	}

	if err := s.login(c, user, provider, token); err != nil {
		log.Error().Err(err).Msg("failed to establish session")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	log.Info().Str("username", user.Username).Str("provider", provider).Msg("user logged in via oauth")

	return c.Redirect(s.redirectTarget(provider, next))
}

// obtainToken extracts the access token for the callback. A Custom-Api-Token
// header is used directly; otherwise the authorization code is exchanged at
// the provider. The second return value is the next target carried through
// the login. A nil token means the authorization produced none.
func (s *Service) obtainToken(c *fiber.Ctx, provider string) (*oauth2.Token, string) {
	next := c.Query("next")

	if header := c.Get(HeaderAPIToken); header != "" {
		return &oauth2.Token{AccessToken: header, TokenType: "Bearer"}, next
	}

	stateNext, ok := s.states.Take(c.Query("state"))
	if !ok {
		log.Warn().Str("provider", provider).Msg("callback with unknown or expired state")
		return nil, next
	}

	if next == "" {
		next = stateNext
	}

	code := c.Query("code")
	if code == "" {
		// the user declined authorization at the provider
		return nil, next
	}

	token, err := s.manager.Exchange(context.Background(), provider, code)
	if err != nil {
		log.Warn().Err(err).Str("provider", provider).Msg("token exchange failed")
		return nil, next
	}

	return token, next
}

// login writes the session record and sets the session cookie.
func (s *Service) login(c *fiber.Ctx, user *models.User, provider string, token *oauth2.Token) error {
	sessionID, err := session.GenerateSessionID()
	if err != nil {
		return err
	}

	userSession := &session.Data{
		User: *user,
		OAuth: session.OAuthToken{
			Provider: provider,
			Token:    token,
		},
	}

	if err := userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		return err
	}

	c.Cookie(session.NewCookie(sessionID, s.cfg.Webserver.Session.ExpiryTime, s.cfg.DevMode))

	return nil
}

// redirectTarget resolves the post-login target: a safe next URL first, the
// provider's configured redirect override second, the dashboard as default.
func (s *Service) redirectTarget(provider, next string) string {
	if next != "" && s.isSafeURL(next) {
		return next
	}

	if target := s.manager.GetOAuthRedirectURL(provider); target != "" {
		return target
	}

	return dashboard.Path
}

// isSafeURL accepts rooted paths on this application and absolute URLs on
// the application's own scheme and host. Everything else, including
// scheme-relative URLs, is rejected.
func (s *Service) isSafeURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	if u.Scheme == "" && u.Host == "" {
		return strings.HasPrefix(u.Path, "/")
	}

	app, err := url.Parse(s.cfg.Webserver.URL)
	if err != nil {
		return false
	}

	return u.Scheme == app.Scheme && u.Host == app.Host
}
