// Package auth holds the session gate, the middleware in front of every
// page route.
//
// Requests without a usable session cookie are sent to the login page.
// Logged in requests get their account put into fiber.Locals under
// "CurrentUser" for the templates, and are bounced from the login page to
// the dashboard. Static assets, logout and the OAuth callback stay
// reachable without a session.
//
// Wired in web.New as
//
//	app.Use(authmiddleware.Middleware)
package auth
