package auth

// UserInfo is the canonical user record every provider profile resolves to.
// All six fields are always present regardless of provider; fields a provider
// does not supply stay empty, they are never dropped.
//
// ID is always a string. Providers reporting numeric identifiers get them
// rendered in decimal (58863 becomes "58863") so identifiers compare stably
// across providers.
type UserInfo struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
