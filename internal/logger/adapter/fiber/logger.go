// Package fiber provides the access logging middleware of the web app,
// writing one structured entry per request through zerolog.
package fiber

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/logger"
)

// redactedQueryParams lists query parameter names whose values never reach
// the access log. The OAuth callback carries single-use credentials in its
// query string.
var redactedQueryParams = map[string]struct{}{ //nolint:gochecknoglobals
	"code":  {},
	"state": {},
}

// Config configures the access logging middleware.
type Config struct {
	// Next defines a function to skip this middleware when returned true.
	//
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Config of the logger.
	Config logger.Log

	// CacheControlError max-age caching on chain errors.
	CacheControlError string

	// CheckAliveURI is the probe endpoint excluded from the access log
	// when Config.DisableCheckAlive is set.
	CheckAliveURI string
}

// ConfigDefault is the default config for fiber.
var ConfigDefault = Config{
	Next:              nil,
	CacheControlError: "max-age=0",
}

func configDefault(config ...Config) Config {
	if len(config) < 1 {
		return ConfigDefault
	}

	cfg := config[0]

	if cfg.Next == nil {
		cfg.Next = ConfigDefault.Next
	}

	return cfg
}

// New creates the access logging middleware. Entries go to the rolling
// access file, the console, or both, depending on the log configuration.
func New(config ...Config) fiber.Handler {
	var (
		writers    []io.Writer
		cfg        = configDefault(config...)
		once       sync.Once
		errHandler fiber.ErrorHandler
	)

	if cfg.Config.File.Enabled {
		writers = append(writers, newRollingAccessFile(&cfg.Config))
	}

	// console output needs both the console writer and the access log
	// opt-in, the access log is noisy
	if cfg.Config.Console.Enabled && cfg.Config.EnableAccessLogToConsole {
		if cfg.Config.Console.UseConsoleWriter {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:          os.Stdout,
				NoColor:      false,
				TimeFormat:   zerolog.TimeFieldFormat,
				PartsExclude: []string{"level"},
			})
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	accessLogger := zerolog.New(
		zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger().
		Level(zerolog.NoLevel)

	return func(ctx *fiber.Ctx) (err error) {
		if cfg.Next != nil && cfg.Next(ctx) {
			return ctx.Next()
		}

		// the app's error handler is not reachable before the first request
		once.Do(func() {
			errHandler = ctx.App().ErrorHandler
		})

		start := time.Now()

		chainErr := ctx.Next()
		if chainErr != nil {
			if errH := errHandler(ctx, chainErr); errH != nil {
				_ = ctx.SendStatus(fiber.StatusInternalServerError) //nolint:errcheck // ok here
				// error responses carry an explicit Cache-Control
				ctx.Response().Header.Set(fiber.HeaderCacheControl, cfg.CacheControlError)
			}
		}

		elapsed := time.Since(start).Seconds()
		ctx.Locals("elapsed", elapsed)
		ctx.Response().Header.Set("X-Performance", fmt.Sprintf("%f", elapsed))

		URI := ctx.Request().RequestURI()
		if cfg.Config.DisableCheckAlive && bytes.Equal(URI, []byte(cfg.CheckAliveURI)) {
			return nil
		}

		entry := accessLogger.Log().Str("IP", ctx.IP()).
			Int("status", ctx.Response().StatusCode()).
			Float64("X-Performance", elapsed).
			Str("URI", requestURI(ctx)).
			Str("method", ctx.Method()).
			Bytes("host", ctx.Request().Host()).
			Str(fiber.HeaderXForwardedFor, ctx.Get(fiber.HeaderXForwardedFor)).
			Str(fiber.HeaderUserAgent, ctx.Get(fiber.HeaderUserAgent)).
			Str(fiber.HeaderOrigin, ctx.Get(fiber.HeaderOrigin)).
			Str(fiber.HeaderReferer, ctx.Get(fiber.HeaderReferer))

		if chainErr != nil {
			entry.Err(chainErr)
		}

		entry.Send()

		return nil
	}
}

// requestURI rebuilds the logged URI from the request path and query string.
// fiber normalizes paths through fasthttp, ctx.Path() keeps the original.
// The query string is logged as received, except that credential-bearing
// parameter values are blanked.
func requestURI(ctx *fiber.Ctx) string {
	p := ctx.Path()

	qs := ctx.Request().URI().QueryString()
	if len(qs) == 0 {
		return p
	}

	var b strings.Builder

	b.WriteString(p)
	b.WriteByte('?')

	for i, pair := range bytes.Split(qs, []byte{'&'}) {
		if i > 0 {
			b.WriteByte('&')
		}

		key := pair
		if eq := bytes.IndexByte(pair, '='); eq >= 0 {
			key = pair[:eq]
		}

		if _, hide := redactedQueryParams[string(key)]; hide {
			b.Write(key)
			b.WriteString("=[redacted]")

			continue
		}

		b.Write(pair)
	}

	return b.String()
}

// newRollingAccessFile builds the rolling writer for the access log,
// creating the log directory when needed.
func newRollingAccessFile(cfg *logger.Log) io.Writer {
	if cfg.File.Path != "" {
		if err := os.MkdirAll(cfg.File.Path, 0o750); err != nil {
			log.Error().Err(err).Str("path", cfg.File.Path).Msg("can't create log directory")

			return nil
		}
	}

	f := cfg.File

	return logger.RollingFile(f.Path, f.AccessLog, f.AccessMaxSize, f.AccessMaxBackups, f.AccessMaxAge)
}
