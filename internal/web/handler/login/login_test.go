package login

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	sessionmemory "github.com/gofiber/storage/memory/v2"
	"gorm.io/gorm"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/auth"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/config"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/db/models"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/web/handler/dashboard"
	websess "github.com/GoInsights-Admin/GoInsights-Admin/internal/web/session"
)

// loginViews is a minimal Fiber Views engine for tests. It writes the bound
// error message when there is one and the provider button URLs otherwise, so
// tests can assert what the handler rendered.
type loginViews struct{}

func (loginViews) Load() error { return nil }

func (loginViews) Render(w io.Writer, name string, data interface{}, _ ...string) error {
	m, ok := data.(fiber.Map)
	if !ok {
		_, _ = io.WriteString(w, name)
		return nil
	}

	if v, exists := m["error"]; exists && v != nil {
		_, _ = io.WriteString(w, v.(string))
		return nil
	}

	if links, ok := m["providers"].([]providerLink); ok {
		for _, link := range links {
			_, _ = io.WriteString(w, link.URL+"\n")
		}
	}

	return nil
}

func newLoginDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.Role{}, &models.User{}); err != nil {
		t.Fatalf("failed to migrate models: %v", err)
	}

	return db
}

func loginConfig() *config.Config {
	return &config.Config{
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Minute},
		},
		Auth: config.Auth{
			Providers: []config.OAuthProvider{
				{Name: "onadata"},
				{Name: "openlmis"},
			},
		},
	}
}

func newLoginApp(t *testing.T, db *gorm.DB, cfg *config.Config) *fiber.App {
	t.Helper()

	websess.Init(sessionmemory.New())

	app := fiber.New(fiber.Config{Views: loginViews{}})

	var s Service
	if err := s.Init(app, cfg, db); err != nil {
		t.Fatalf("init: %v", err)
	}

	return app
}

// seedAccount stores an active local account with the given credentials.
func seedAccount(t *testing.T, db *gorm.DB, username, password string) models.User {
	t.Helper()

	role := models.Role{Name: auth.RoleGamma, IsSystem: true}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("seed role: %v", err)
	}

	user := models.User{
		Active:     true,
		Username:   username,
		Email:      username + "@example.com",
		Password:   models.HashPassword(password),
		RoleID:     role.ID,
		AuthSource: models.AuthSourceLocal,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}

	return user
}

func postForm(t *testing.T, app *fiber.App, form url.Values) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, Path+"/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	return string(body)
}

func TestGetShowsProviderButtons(t *testing.T) {
	app := newLoginApp(t, newLoginDB(t), loginConfig())

	req := httptest.NewRequest(http.MethodGet, Path+"/", nil)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body := readBody(t, resp)

	for _, want := range []string{Path + "/oauth/onadata", Path + "/oauth/openlmis"} {
		if !strings.Contains(body, want) {
			t.Errorf("body = %q, missing login link %q", body, want)
		}
	}
}

func TestPostLogsIn(t *testing.T) {
	db := newLoginDB(t)
	app := newLoginApp(t, db, loginConfig())
	seedAccount(t, db, "bob", "s3cr3t")

	resp := postForm(t, app, url.Values{
		"username": {"bob"},
		"password": {"s3cr3t"},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusFound)
	}

	if loc := resp.Header.Get("Location"); loc != dashboard.Path {
		t.Errorf("Location = %q, want %q", loc, dashboard.Path)
	}

	cookie := resp.Header.Get("Set-Cookie")
	if !strings.Contains(cookie, websess.CookieName+"=") {
		t.Fatalf("Set-Cookie = %q, want a session cookie", cookie)
	}

	if !strings.Contains(strings.ToLower(cookie), "secure") {
		t.Errorf("Set-Cookie = %q, want the Secure flag outside dev mode", cookie)
	}

	// the login recorded when it happened
	var stored models.User
	if err := db.Where("username = ?", "bob").First(&stored).Error; err != nil {
		t.Fatalf("reload account: %v", err)
	}

	if stored.LastLoginAt == nil {
		t.Error("LastLoginAt = nil, want a timestamp")
	}
}

func TestPostDevModeCookieNotSecure(t *testing.T) {
	db := newLoginDB(t)
	cfg := loginConfig()
	cfg.DevMode = true

	app := newLoginApp(t, db, cfg)
	seedAccount(t, db, "carol", "pass")

	resp := postForm(t, app, url.Values{
		"username": {"carol"},
		"password": {"pass"},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusFound)
	}

	if cookie := resp.Header.Get("Set-Cookie"); strings.Contains(strings.ToLower(cookie), "secure") {
		t.Errorf("Set-Cookie = %q, want no Secure flag in dev mode", cookie)
	}
}

func TestPostRejectsBadLogins(t *testing.T) {
	tests := []struct {
		name    string
		seed    func(t *testing.T, db *gorm.DB)
		form    url.Values
		wantErr error
	}{
		{
			name: "wrong password",
			seed: func(t *testing.T, db *gorm.DB) {
				seedAccount(t, db, "alice", "secret")
			},
			form:    url.Values{"username": {"alice"}, "password": {"wrong"}},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:    "unknown account",
			seed:    func(t *testing.T, db *gorm.DB) {},
			form:    url.Values{"username": {"nobody"}, "password": {"pass"}},
			wantErr: ErrInvalidCredentials,
		},
		{
			name: "disabled account",
			seed: func(t *testing.T, db *gorm.DB) {
				user := seedAccount(t, db, "dave", "pass")
				if err := db.Model(&user).Update("active", false).Error; err != nil {
					t.Fatalf("deactivate account: %v", err)
				}
			},
			form:    url.Values{"username": {"dave"}, "password": {"pass"}},
			wantErr: ErrAccountDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newLoginDB(t)
			app := newLoginApp(t, db, loginConfig())
			tt.seed(t, db)

			resp := postForm(t, app, tt.form)

			// failed logins re-render the form, they do not redirect
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
			}

			if cookie := resp.Header.Get("Set-Cookie"); strings.Contains(cookie, websess.CookieName+"=") {
				t.Errorf("Set-Cookie = %q, want no session cookie", cookie)
			}

			if body := readBody(t, resp); !strings.Contains(body, tt.wantErr.Error()) {
				t.Errorf("body = %q, want %q", body, tt.wantErr.Error())
			}
		})
	}
}

func TestPostRejectsUnparsableForm(t *testing.T) {
	app := newLoginApp(t, newLoginDB(t), loginConfig())

	// malformed JSON forces a BodyParser error
	req := httptest.NewRequest(http.MethodPost, Path+"/", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	if body := readBody(t, resp); !strings.Contains(body, ErrInvalidFormData.Error()) {
		t.Errorf("body = %q, want %q", body, ErrInvalidFormData.Error())
	}
}
