package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
)

// Profile resolves the canonical user record for one provider, using an
// authenticated API session against that provider. Implementations own the
// provider's endpoint sequence and field mapping; errors from the remote
// propagate unchanged to the caller.
type Profile func(ctx context.Context, api *Session) (*UserInfo, error)

var (
	profilesMu sync.RWMutex

	// profiles maps a provider name to its profile strategy. Dispatch is an
	// exact case-sensitive match on the name.
	profiles = map[string]Profile{
		"onadata":  onadataUserInfo,
		"openlmis": openlmisUserInfo,
	}
)

// RegisterProfile adds or replaces the profile strategy for a provider name.
// Providers registered here still need a matching config entry before the
// Manager will resolve identities for them.
func RegisterProfile(name string, p Profile) {
	profilesMu.Lock()
	defer profilesMu.Unlock()

	profiles[name] = p
}

// LookupProfile returns the profile strategy registered for a provider name.
func LookupProfile(name string) (Profile, bool) {
	profilesMu.RLock()
	defer profilesMu.RUnlock()

	p, ok := profiles[name]

	return p, ok
}

// onadataUserInfo resolves a user through the onadata API.
// Two requests: the authenticated user endpoint yields the username, the
// profile endpoint for that username yields the full record. The display
// name comes from the profile endpoint, not the user endpoint.
func onadataUserInfo(ctx context.Context, api *Session) (*UserInfo, error) {
	var user struct {
		Username string `json:"username"`
		Name     string `json:"name"`
	}

	if err := api.GetJSON(ctx, "api/v1/user.json", &user); err != nil {
		return nil, fmt.Errorf("onadata user lookup failed: %w", err)
	}

	var profile struct {
		ID        json.Number `json:"id"`
		FirstName string      `json:"first_name"`
		Name      string      `json:"name"`
		LastName  string      `json:"last_name"`
		Email     string      `json:"email"`
	}

	if err := api.GetJSON(ctx, "api/v1/profiles/"+url.PathEscape(user.Username)+".json", &profile); err != nil {
		return nil, fmt.Errorf("onadata profile lookup failed: %w", err)
	}

	return &UserInfo{
		Name:      profile.Name,
		Email:     profile.Email,
		ID:        profile.ID.String(),
		Username:  user.Username,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
	}, nil
}

// openlmisUserInfo resolves a user through the OpenLMIS API.
// Three requests: token introspection yields the reference data user id,
// then the users and userContactDetails endpoints for that id yield the
// record. OpenLMIS has no display-name field, the username doubles as name.
func openlmisUserInfo(ctx context.Context, api *Session) (*UserInfo, error) {
	// introspection wants the raw access token as a query parameter
	var check struct {
		ReferenceDataUserID string `json:"referenceDataUserId"`
	}

	if err := api.GetJSON(ctx, "oauth/check_token?token="+url.QueryEscape(api.Token.AccessToken), &check); err != nil {
		return nil, fmt.Errorf("openlmis token check failed: %w", err)
	}

	var user struct {
		Username  string `json:"username"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Active    bool   `json:"active"`
		ID        string `json:"id"`
	}

	if err := api.GetJSON(ctx, "users/"+url.PathEscape(check.ReferenceDataUserID), &user); err != nil {
		return nil, fmt.Errorf("openlmis user lookup failed: %w", err)
	}

	var contact struct {
		EmailDetails struct {
			Email string `json:"email"`
		} `json:"emailDetails"`
	}

	if err := api.GetJSON(ctx, "userContactDetails/"+url.PathEscape(check.ReferenceDataUserID), &contact); err != nil {
		return nil, fmt.Errorf("openlmis contact lookup failed: %w", err)
	}

	return &UserInfo{
		Name:      user.Username,
		Email:     contact.EmailDetails.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}
