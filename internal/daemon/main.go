package daemon

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/storage"
	sessionmemory "github.com/gofiber/storage/memory/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/auth"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/config"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/db/controller/rolesync"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/db/dsn"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/db/models"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/logger/adapter/stdlogger"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start runs the web service on the configured port. SIGINT or SIGTERM
// drains the instance and stops the server before Start returns.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.User{},
		&models.Setting{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	store := auth.NewStore(db, cfg)

	manager, err := auth.NewManager(cfg, store, store)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid auth configuration")
		return nil
	}

	// roles and permissions first, the admin seed references them
	if err = manager.SyncRoleDefinitions(); err != nil {
		log.Fatal().Err(err).Msg("role sync failed")
		return nil
	}

	recordRoleSync(cfg, db)

	seed(cfg, db)

	session.Init(newSessionStorage(cfg))

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db, manager),
	}
}

// openDatabase opens the gorm connection for the configured engine.
// MySQL is the default engine when none is configured.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormLogger(cfg),
	}

	switch cfg.DB.GormEngine {
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.DB.File), gormCfg)
	case "postgres":
		return gorm.Open(gormpostgres.Open(dsn.Postgres(cfg)), gormCfg)
	default:
		return gorm.Open(gormmysql.Open(dsn.MySQL(cfg)), gormCfg)
	}
}

// gormLogger routes gorm's log output through zerolog.
func gormLogger(cfg *config.Config) gormlogger.Interface {
	level := gormlogger.Warn
	if cfg.DevMode {
		level = gormlogger.Info
	}

	return gormlogger.New(stdlogger.New(), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond, //nolint:mnd
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// newSessionStorage builds the fiber session storage for the configured
// engine. The sqlite engine keeps sessions in memory, they do not survive a
// restart.
func newSessionStorage(cfg *config.Config) storage.Storage {
	switch cfg.DB.GormEngine {
	case "sqlite":
		return sessionmemory.New()
	case "postgres":
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Postgres(cfg),
			Table:         "sessions",
		})
	default:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.MySQL(cfg),
			Table:         "sessions",
		})
	}
}

// recordRoleSync stores when the startup role sync ran and how many custom
// roles it provisioned.
func recordRoleSync(cfg *config.Config, db *gorm.DB) {
	customRoles := 0
	if cfg.Auth.AddCustomRoles {
		customRoles = len(cfg.Auth.CustomRoles)
	}

	status := rolesync.Status{
		SyncedAt:    time.Now(),
		CustomRoles: customRoles,
	}

	if err := status.Save(db); err != nil {
		log.Error().Err(err).Msg("failed to record role sync status")
	}
}
