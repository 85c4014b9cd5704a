package web

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/template/html/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/auth"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/config"
	fiberlogger "github.com/GoInsights-Admin/GoInsights-Admin/internal/logger/adapter/fiber"
	adminconfiguration "github.com/GoInsights-Admin/GoInsights-Admin/internal/web/handler/admin/configuration"
	adminuser "github.com/GoInsights-Admin/GoInsights-Admin/internal/web/handler/admin/user"
	oauthhandler "github.com/GoInsights-Admin/GoInsights-Admin/internal/web/handler/auth/oauth"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/handler/dashboard"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/handler/login"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/handler/logout"
	authmiddleware "github.com/GoInsights-Admin/GoInsights-Admin/internal/web/middleware/auth"
)

// checkAlivePath is the liveness probe endpoint. It is registered before
// the session gate and excluded from the access log when configured.
const checkAlivePath = "/checkalive"

// Service is the web frontend: the fiber app plus everything its handlers
// share.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
}

// Start runs the http server on addr. It blocks until the server stops and
// reports any listen failure, with the expected shutdown result filtered
// out.
func (s *Service) Start(addr string) error {
	if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("fiber listen: %w", err)
	}

	return nil
}

// WaitShutdown blocks until SIGINT or SIGTERM, then stops the http server.
// Unless fast shutdown is set it first fails the liveness probe and waits
// the configured drain time, giving the load balancer a chance to take the
// instance out of rotation while requests in flight still complete.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	if !s.fastShutDown {
		log.Info().Msgf(
			"draining: failing the liveness probe for %d seconds before stopping",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}

	log.Info().Msg("http server stopped")
}

// checkAlive answers load balancer probes: 200 while serving, 503 once a
// shutdown started and the instance is draining.
func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
	}

	return c.SendString("OK")
}

// New creates the web service: template engine, middleware chain and all
// page handlers with their routes.
func New(cfg *config.Config, db *gorm.DB, manager *auth.Manager) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	if manager == nil {
		panic("manager cannot be nil")
	}

	httpFS := http.FS(templatesFS{templateFiles})
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// dev mode reads templates from the working tree so edits show up on
	// reload
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("debug mode enabled: using local filesystem for templates")
	}

	templateEngine.AddFunc("iterate", func(count int) []int {
		result := make([]int, count)
		for i := range result {
			result[i] = i
		}

		return result
	})
	templateEngine.AddFunc("add", func(a, b int) int {
		return a + b
	})
	templateEngine.AddFunc("sub", func(a, b int) int {
		return a - b
	})

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        "GoInsights-Admin",
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			Views:          templateEngine,
		},
	)

	service := &Service{
		cfg: cfg,
		App: app,
		db:  db,
	}
	service.alive.Store(true)

	// access logging, probe requests excluded when configured
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: checkAlivePath,
	}))

	// the probe stays reachable without a session
	app.Get(checkAlivePath, service.checkAlive)

	// serve embedded static files
	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(staticFiles),
				PathPrefix: "static",
				Browse:     cfg.Webserver.BrowseStatic,
			},
		),
	)

	// session gate
	app.Use(authmiddleware.Middleware)

	authService := auth.NewService(db)
	service.authService = authService

	// templates render menus from the permissions in fiber.Locals
	app.Use(auth.AddPermissionsToLocals(authService))

	// handlers register their own routes with permission checks
	if err := login.Handler.Init(app, cfg, db); err != nil {
		log.Fatal().Err(err).Msg("failed to init login handler")
	}

	oauthhandler.Handler.Init(app, cfg, db, manager)
	logout.Handler.Init(app, cfg)
	dashboard.Handler.Init(app, cfg, db, authService)
	adminuser.Handler.Init(app, cfg, db, authService)
	adminconfiguration.Handler.Init(app, cfg, db, authService)

	// the dashboard is the landing page
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard")
	})

	return service
}
