package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// remoteTimeout bounds a single provider API call. Profile resolution is a
// best-effort single attempt, there are no retries.
const remoteTimeout = 10 * time.Second

// Session is an authenticated API session against one provider's REST API.
// Requests carry the OAuth2 access token as a bearer Authorization header.
type Session struct {
	// BaseURL is the provider's API base, always with a trailing slash.
	BaseURL string
	// Token is the OAuth2 token this session was built from. Profiles that
	// need the raw access token (e.g. token introspection endpoints) read
	// it from here.
	Token *oauth2.Token

	client *http.Client
}

// NewSession builds an API session for baseURL authenticated with token.
// The client injects the bearer header on every request and refreshes the
// token through cfg when it can.
func NewSession(ctx context.Context, cfg *oauth2.Config, baseURL string, token *oauth2.Token) *Session {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	client := cfg.Client(ctx, token)
	client.Timeout = remoteTimeout

	return &Session{
		BaseURL: baseURL,
		Token:   token,
		client:  client,
	}
}

// GetJSON issues a GET for path relative to BaseURL and decodes the JSON
// response body into out. Non-2xx responses are returned as errors carrying
// the status code; response shape mismatches surface as decode errors.
func (s *Session) GetJSON(ctx context.Context, path string, out interface{}) error {
	url := s.BaseURL + strings.TrimPrefix(path, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", url, err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("request to %s returned status %d: %w", url, resp.StatusCode, ErrRemoteStatus)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}

	return nil
}
