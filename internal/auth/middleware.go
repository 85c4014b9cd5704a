package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/session"
)

// sessionUserID resolves the logged-in user from the request's session
// cookie. It returns false when there is no cookie, the session is unknown
// or its data carries no user.
func sessionUserID(c *fiber.Ctx) (uint64, bool) {
	sessionID := c.Cookies(session.CookieName)
	if sessionID == "" {
		return 0, false
	}

	sessionData := new(session.Data)
	if err := sessionData.Read(sessionID); err != nil {
		return 0, false
	}

	if sessionData.User.ID == 0 {
		return 0, false
	}

	return sessionData.User.ID, true
}

// RequirePermission returns middleware that rejects requests whose session
// user does not hold the permission: 401 without a valid session, 403
// without the grant.
func RequirePermission(authService *Service, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := sessionUserID(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		hasPermission, err := authService.HasPermission(userID, permission)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", userID).Str("permission", permission).
				Msg("Failed to check permission")

			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}

		if !hasPermission {
			log.Warn().Uint64("user_id", userID).Str("permission", permission).
				Msg("User lacks required permission")

			return c.Status(fiber.StatusForbidden).SendString("Forbidden: You don't have permission to access this resource")
		}

		return c.Next()
	}
}

// AddPermissionsToLocals loads the session user's permissions into
// fiber.Locals so templates can render conditionally: "permissions" holds
// the permission names, "hasPermission" a lookup func. Requests without a
// valid session pass through with neither set.
func AddPermissionsToLocals(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := sessionUserID(c)
		if !ok {
			return c.Next()
		}

		permissions, err := authService.GetUserPermissions(userID)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", userID).
				Msg("Failed to get user permissions")

			return c.Next()
		}

		c.Locals("permissions", permissions)
		c.Locals("hasPermission", func(perm string) bool {
			if has, errHas := authService.HasPermission(userID, perm); errHas == nil {
				return has
			}

			return false
		})

		return c.Next()
	}
}
