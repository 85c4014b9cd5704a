package auth

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/config"
)

// CallbackPath is the route prefix providers redirect back to after
// authorization. The provider name is appended as a path segment.
const CallbackPath = "/oauth-authorized"

// Syncer is the base role and permission synchronizer the Manager builds on.
// It owns the framework-default roles and permissions; the Manager adds the
// configured custom roles on top.
type Syncer interface {
	// SyncRoleDefinitions creates or updates the built-in roles and their
	// permission assignments.
	SyncRoleDefinitions() error
	// CreateMissingPerms creates permission records for registered
	// permissions that do not exist in the store yet.
	CreateMissingPerms() error
	// CleanPerms removes permission records no longer referenced by any role.
	CleanPerms() error
}

// PermissionMatcher classifies whether a stored permission belongs to a
// custom role's configured permission set.
type PermissionMatcher func(permission string, allowed map[string]struct{}) bool

// RoleProvisioner creates or updates custom roles so they carry exactly the
// configured permission set.
type RoleProvisioner interface {
	// SetCustomRole creates or updates the named role. Stored permissions are
	// filtered through match against the allowed set, so the role ends up
	// with exactly the configured grants and nothing else.
	SetCustomRole(name string, match PermissionMatcher, allowed map[string]struct{}) error
}

// IsCustomPVM reports whether the named permission is part of the allowed
// set. It is the classifier handed to SetCustomRole during the startup role
// sync, keeping built-in permissions out of custom roles unless listed.
func IsCustomPVM(permission string, allowed map[string]struct{}) bool {
	_, ok := allowed[permission]

	return ok
}

// Manager drives OAuth2 logins for the configured providers and provisions
// the configured custom roles. Base role handling is delegated to a Syncer
// and a RoleProvisioner rather than inherited.
type Manager struct {
	cfg   *config.Config
	base  Syncer
	roles RoleProvisioner

	oauthCfgs  map[string]*oauth2.Config
	allowlists map[string][]*regexp.Regexp
}

// NewManager creates a Manager for the providers in cfg, delegating base role
// handling to base and custom role provisioning to roles.
// Invalid allow-list patterns fail here so misconfiguration is caught at boot.
func NewManager(cfg *config.Config, base Syncer, roles RoleProvisioner) (*Manager, error) {
	if cfg == nil {
		panic("config cannot be nil")
	}

	m := &Manager{
		cfg:        cfg,
		base:       base,
		roles:      roles,
		oauthCfgs:  make(map[string]*oauth2.Config, len(cfg.Auth.Providers)),
		allowlists: make(map[string][]*regexp.Regexp),
	}

	for _, p := range cfg.Auth.Providers {
		m.oauthCfgs[p.Name] = &oauth2.Config{
			ClientID:     p.ClientID,
			ClientSecret: p.ClientSecret,
			RedirectURL:  cfg.Webserver.URL + CallbackPath + "/" + p.Name,
			Scopes:       p.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  p.AuthURL,
				TokenURL: p.TokenURL,
			},
		}

		for _, pattern := range p.EmailAllowlist {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid allow-list pattern %q for provider %s: %w", pattern, p.Name, err)
			}

			m.allowlists[p.Name] = append(m.allowlists[p.Name], re)
		}
	}

	return m, nil
}

// Providers returns the configured provider entries in configuration order.
func (m *Manager) Providers() []config.OAuthProvider {
	return m.cfg.Auth.Providers
}

// GetOAuthRedirectURL returns the custom redirect URL of the first configured
// provider entry matching the given name. It returns the empty string when no
// entry matches or the matched entry carries no custom redirect URL; a sparse
// provider entry never causes a failure here.
func (m *Manager) GetOAuthRedirectURL(provider string) string {
	for _, p := range m.cfg.Auth.Providers {
		if p.Name == provider {
			return p.CustomRedirectURL
		}
	}

	return ""
}

// AuthCodeURL returns the provider's authorization URL carrying state.
func (m *Manager) AuthCodeURL(provider, state string) (string, error) {
	oc, ok := m.oauthCfgs[provider]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownOAuthProvider, provider)
	}

	return oc.AuthCodeURL(state), nil
}

// Exchange trades an authorization code for a token at the provider.
func (m *Manager) Exchange(ctx context.Context, provider, code string) (*oauth2.Token, error) {
	oc, ok := m.oauthCfgs[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOAuthProvider, provider)
	}

	token, err := oc.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange with %s failed: %w", provider, err)
	}

	return token, nil
}

// Remote returns an API session against the provider's REST API
// authenticated with token, or false when the provider is not configured.
func (m *Manager) Remote(ctx context.Context, provider string, token *oauth2.Token) (*Session, bool) {
	oc, ok := m.oauthCfgs[provider]
	if !ok {
		return nil, false
	}

	var baseURL string

	for _, p := range m.cfg.Auth.Providers {
		if p.Name == provider {
			baseURL = p.APIBaseURL
			break
		}
	}

	return NewSession(ctx, oc, baseURL, token), true
}

// OAuthUserInfo resolves the canonical user record for provider using the
// given token. Unknown or unconfigured providers (and a nil token) resolve
// to no identity without an error; remote failures propagate unchanged.
func (m *Manager) OAuthUserInfo(ctx context.Context, provider string, token *oauth2.Token) (*UserInfo, error) {
	if token == nil {
		return nil, nil
	}

	profile, ok := LookupProfile(provider)
	if !ok {
		return nil, nil
	}

	api, ok := m.Remote(ctx, provider, token)
	if !ok {
		return nil, nil
	}

	return profile(ctx, api)
}

// OAuthAllowed checks the resolved email against the provider's allow-list
// patterns. Providers without an allow-list accept every identity.
func (m *Manager) OAuthAllowed(provider, email string) bool {
	patterns, ok := m.allowlists[provider]
	if !ok || len(patterns) == 0 {
		return true
	}

	for _, re := range patterns {
		if re.MatchString(email) {
			return true
		}
	}

	return false
}

// SyncRoleDefinitions runs the full startup role sync: the base sync first,
// then the configured custom roles in configuration order, then a single
// cleanup pass. Misconfigured custom roles fail the sync; there is no
// partial-skip behavior, a broken configuration should stop boot.
func (m *Manager) SyncRoleDefinitions() error {
	log.Debug().Msg("syncing role definitions")

	if err := m.base.SyncRoleDefinitions(); err != nil {
		return fmt.Errorf("base role sync failed: %w", err)
	}

	if m.cfg.Auth.AddCustomRoles {
		for _, role := range m.cfg.Auth.CustomRoles {
			log.Info().Str("role", role.Name).Msg("provisioning custom role")

			if err := m.roles.SetCustomRole(role.Name, IsCustomPVM, role.PermissionSet()); err != nil {
				return fmt.Errorf("failed to provision custom role %s: %w", role.Name, err)
			}
		}

		if err := m.base.CreateMissingPerms(); err != nil {
			return fmt.Errorf("failed to create missing permissions: %w", err)
		}
	}

	// cleanup runs exactly once per sync, never per role
	return m.base.CleanPerms()
}
