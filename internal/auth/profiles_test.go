package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/auth"
)

func TestLookupProfile(t *testing.T) {
	testCases := []struct {
		name     string
		provider string
		want     bool
	}{
		{"onadata registered", "onadata", true},
		{"openlmis registered", "openlmis", true},
		{"unknown provider", "github", false},
		{"empty provider", "", false},
		{"case sensitive match", "Onadata", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := auth.LookupProfile(tc.provider)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestRegisterProfile(t *testing.T) {
	auth.RegisterProfile("testprov", func(_ context.Context, _ *auth.Session) (*auth.UserInfo, error) {
		return &auth.UserInfo{Username: "someone"}, nil
	})

	p, ok := auth.LookupProfile("testprov")
	require.True(t, ok)

	info, err := p(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "someone", info.Username)
}

func TestOnadataUserInfo(t *testing.T) {
	const token = "cZpwCzYjpzuSqzekM"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+token {
			t.Errorf("Authorization = %q, want bearer token", got)
		}

		switch r.URL.Path {
		case "/api/v1/user.json":
			_, _ = w.Write([]byte(`{"username": "testauth", "name": "test"}`))
		case "/api/v1/profiles/testauth.json":
			_, _ = w.Write([]byte(`{
				"id": 58863,
				"is_org": false,
				"first_name": "test",
				"name": "test auth",
				"last_name": "auth",
				"email": "testauth@ona.io"
			}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	profile, ok := auth.LookupProfile("onadata")
	require.True(t, ok)

	api := auth.NewSession(context.Background(), &oauth2.Config{}, srv.URL, &oauth2.Token{AccessToken: token})

	info, err := profile(context.Background(), api)
	require.NoError(t, err)

	// display name comes from the profile endpoint, not the user endpoint
	assert.Equal(t, &auth.UserInfo{
		Name:      "test auth",
		Email:     "testauth@ona.io",
		ID:        "58863",
		Username:  "testauth",
		FirstName: "test",
		LastName:  "auth",
	}, info)
}

func TestOnadataUserInfoSparseProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/user.json":
			_, _ = w.Write([]byte(`{"username": "testauth", "name": "test"}`))
		case "/api/v1/profiles/testauth.json":
			// provider omits everything but the id
			_, _ = w.Write([]byte(`{"id": 58863}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	profile, _ := auth.LookupProfile("onadata")
	api := auth.NewSession(context.Background(), &oauth2.Config{}, srv.URL, &oauth2.Token{AccessToken: "t"})

	info, err := profile(context.Background(), api)
	require.NoError(t, err)

	// absent source fields map to empty, never dropped
	assert.Equal(t, &auth.UserInfo{
		Name:      "",
		Email:     "",
		ID:        "58863",
		Username:  "testauth",
		FirstName: "",
		LastName:  "",
	}, info)
}

func TestOnadataUserInfoRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	profile, _ := auth.LookupProfile("onadata")
	api := auth.NewSession(context.Background(), &oauth2.Config{}, srv.URL, &oauth2.Token{AccessToken: "t"})

	info, err := profile(context.Background(), api)
	require.Error(t, err)
	require.ErrorIs(t, err, auth.ErrRemoteStatus)
	assert.Nil(t, info)
}

func TestOpenlmisUserInfo(t *testing.T) {
	const (
		token  = "a337ec45-31a0-4f2b-9b2e-a105c4b669bb"
		userID = "a337ec45-31a0-4f2b-9b2e-a105c4b669bb"
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/check_token":
			if got := r.URL.Query().Get("token"); got != token {
				t.Errorf("check_token token = %q, want %q", got, token)
			}

			_, _ = w.Write([]byte(`{"referenceDataUserId": "` + userID + `"}`))
		case "/users/" + userID:
			_, _ = w.Write([]byte(`{
				"username": "testauth",
				"firstName": "test",
				"lastName": "auth",
				"active": true,
				"id": "` + userID + `"
			}`))
		case "/userContactDetails/" + userID:
			_, _ = w.Write([]byte(`{"emailDetails": {"email": "testauth@openlmis.org"}}`))
		default:
			t.Errorf("unexpected request path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	profile, ok := auth.LookupProfile("openlmis")
	require.True(t, ok)

	api := auth.NewSession(context.Background(), &oauth2.Config{}, srv.URL, &oauth2.Token{AccessToken: token})

	info, err := profile(context.Background(), api)
	require.NoError(t, err)

	// openlmis has no display-name field, the username doubles as name
	assert.Equal(t, &auth.UserInfo{
		Name:      "testauth",
		Email:     "testauth@openlmis.org",
		ID:        userID,
		Username:  "testauth",
		FirstName: "test",
		LastName:  "auth",
	}, info)
}
