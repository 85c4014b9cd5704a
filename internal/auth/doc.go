// Package auth implements logins and permission checks.
//
// There are two ways in:
//
//   - LocalProvider checks a username and password against the user table,
//     hashes are Argon2id.
//   - Manager drives the OAuth2 authorization code flow for the providers
//     listed in the configuration. Each provider has a profile strategy
//     that knows its REST endpoints and maps the provider's answers onto
//     the canonical UserInfo record. Dispatch is by exact provider name,
//     unknown providers resolve to no identity.
//
// Authorization is role based: an account carries one role, the role
// carries permissions, Service.HasPermission walks that chain. Besides the
// seeded Admin and Gamma roles, the startup sync provisions custom roles
// from the configuration. A synced role ends up with exactly the
// configured permission set: grants are matched through a classifier so
// built-in permissions never leak in, and stale grants are dropped.
//
// Routes are protected with the RequirePermission middleware, and
// AddPermissionsToLocals exposes the permission set to the templates:
//
//	authService := auth.NewService(db)
//
//	app.Get("/admin/users",
//	    auth.RequirePermission(authService, auth.PermAdminUsers),
//	    handler,
//	)
//
// The OAuth side in short:
//
//	store := auth.NewStore(db, cfg)
//	manager, err := auth.NewManager(cfg, store, store)
//	url, err := manager.AuthCodeURL("onadata", state)
//	// provider redirects back
//	token, err := manager.Exchange(ctx, "onadata", code)
//	info, err := manager.OAuthUserInfo(ctx, "onadata", token)
package auth
