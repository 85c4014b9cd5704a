package config

import (
	"time"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Auth      Auth
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic bool    // enable static file browsing (for development purposes only)
	Domain       string  // domain name for the webserver
	Port         int     // listening port for the webserver
	ShutDownTime int     // wait time for shutdown
	URL          string  // base url for the webserver
	Session      Session // session settings
}

// Auth holds authentication and role provisioning settings.
type Auth struct {
	// Providers is the ordered list of configured OAuth identity providers.
	// Order matters: redirect-URL lookup returns the first entry matching
	// a provider name.
	Providers []OAuthProvider `toml:"providers"`

	// AddCustomRoles enables provisioning of the roles listed in CustomRoles
	// during the startup role sync.
	AddCustomRoles bool `toml:"add_custom_roles"`

	// CustomRoles lists roles to create or update at startup, in the order
	// they should be processed. Each entry carries the exact permission set
	// the role ends up with.
	CustomRoles []CustomRole `toml:"custom_roles"`

	// UserRegistration allows creating a local user record on first OAuth
	// login. When false, unknown OAuth identities are rejected.
	UserRegistration bool `toml:"user_registration"`

	// UserRegistrationRole is the role assigned to users created via OAuth
	// login.
	UserRegistrationRole string `toml:"user_registration_role"`
}

// OAuthProvider is one configured identity provider entry.
//
// Name dispatches to the provider's profile strategy and must match it
// exactly (case-sensitive). The URL fields point at the provider's OAuth
// endpoints and REST API base.
type OAuthProvider struct {
	Name              string   `toml:"name" validate:"required"`
	ClientID          string   `toml:"client_id"`
	ClientSecret      string   `toml:"client_secret"`
	AuthURL           string   `toml:"auth_url" validate:"omitempty,url"`
	TokenURL          string   `toml:"token_url" validate:"omitempty,url"`
	APIBaseURL        string   `toml:"api_base_url" validate:"omitempty,url"`
	Scopes            []string `toml:"scopes"`
	CustomRedirectURL string   `toml:"custom_redirect_url" validate:"omitempty,url"`

	// EmailAllowlist holds regular expressions matched against the login
	// email. An empty list allows every authenticated identity.
	EmailAllowlist []string `toml:"email_allowlist"`
}

// CustomRole maps a role name to the exact set of permission names it grants.
type CustomRole struct {
	Name        string   `toml:"name"`
	Permissions []string `toml:"permissions"`
}

// PermissionSet returns the role's permissions as a set.
func (r CustomRole) PermissionSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.Permissions))
	for _, p := range r.Permissions {
		set[p] = struct{}{}
	}

	return set
}
