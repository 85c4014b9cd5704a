package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/auth"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/handler/login"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/session"
)

// publicPrefixes lead to pages that work without a session: static assets,
// leaving the application, and the provider callback that returns before a
// session exists.
var publicPrefixes = []string{ //nolint:gochecknoglobals
	"/static",
	"/logout",
	auth.CallbackPath,
}

// Middleware gates every page route behind a session. Anonymous requests
// end up on the login page, logged in requests visiting the login page end
// up on the dashboard.
func Middleware(c *fiber.Ctx) error {
	path := strings.ToLower(c.OriginalURL())

	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return c.Next()
		}
	}

	onLoginPage := strings.HasPrefix(path, login.Path)

	sessData := new(session.Data)

	if sessionID := c.Cookies(session.CookieName); sessionID != "" {
		// a failed read leaves the zero value, handled below
		_ = sessData.Read(sessionID)
	}

	// no usable session: everything except the login page redirects there
	if sessData.User.ID == 0 {
		if onLoginPage {
			return c.Next()
		}

		return c.Redirect(login.Path)
	}

	// templates read the logged in account from locals
	c.Locals("CurrentUser", sessData.User)

	if onLoginPage {
		return c.Redirect("/dashboard")
	}

	return c.Next()
}
