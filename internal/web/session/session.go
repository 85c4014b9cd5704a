// Package session keeps the logged-in state of a browser: a random session
// ID travels in a cookie, the session data lives in a pluggable storage
// backend keyed by that ID.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/db/models"
)

// CookieName is the browser cookie carrying the session ID.
const CookieName = "session"

// Store is the global session store instance.
var Store *session.Store

// NewCookie builds the session cookie set at login. With devMode the
// Secure flag is dropped so plain http setups keep working.
func NewCookie(sessionID string, ttl time.Duration, devMode bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		MaxAge:   int(ttl.Seconds()),
		Secure:   !devMode,
		HTTPOnly: true,
		SameSite: "Lax", // TODO: make this configurable
	}
}

// ExpiredCookie builds the cookie that makes a browser drop its session.
func ExpiredCookie() *fiber.Cookie {
	return &fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		MaxAge:   -1,
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	}
}

// OAuthToken holds the provider token of an OAuth login for the lifetime of
// the session, so provider API calls can be made on the user's behalf.
type OAuthToken struct {
	// Provider is the name of the provider the token came from.
	Provider string
	// Token is the token returned by the provider's token endpoint.
	Token *oauth2.Token
}

// Data is what a session ID resolves to.
type Data struct {
	User models.User
	// OAuth is set for sessions established through an OAuth provider.
	OAuth OAuthToken
}

// Write stores the session data under the given session ID with an
// expiration duration.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "marshal session data")
	}

	return errors.Wrap(Store.Storage.Set(sessionID, out, exp), "session storage set")
}

// Read loads the session data for the given session ID. An ID the storage
// does not know fails the unmarshal, callers treat any error as not logged
// in.
func (s *Data) Read(sessionID string) error {
	byteData, err := Store.Storage.Get(sessionID)
	if err != nil {
		return errors.Wrap(err, "session storage get")
	}

	return errors.Wrap(json.Unmarshal(byteData, s), "unmarshal session data")
}

// Destroy drops the session data for the given session ID. The session is
// dead afterwards no matter what cookies are still around.
func Destroy(sessionID string) error {
	return errors.Wrap(Store.Storage.Delete(sessionID), "session storage delete")
}

// Init creates the global store on top of the provided storage backend,
// chosen from the database configuration at startup.
func Init(storage storage.Storage) {
	if storage == nil {
		panic("storage is nil")
	}

	Store = session.New(session.Config{
		Storage: storage,
	})
}

// GenerateSessionID returns a new 256 bit random session ID in hex.
func GenerateSessionID() (string, error) {
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "reading random bytes")
	}

	return hex.EncodeToString(b), nil
}
