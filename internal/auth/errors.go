package auth

import "errors"

var (
	// ErrUserAccountDisabled is returned when attempting to authenticate a disabled user account.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrInvalidPassword is returned when the provided password is incorrect during authentication.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")

	// ErrUnknownOAuthProvider is returned when a token exchange or login start is
	// requested for a provider that has no configuration entry.
	ErrUnknownOAuthProvider = errors.New("unknown oauth provider")

	// ErrEmailNotAllowed is returned when a resolved identity's email does not
	// match any pattern of the provider's allow-list.
	ErrEmailNotAllowed = errors.New("email not in provider allow-list")

	// ErrRegistrationDisabled is returned when an unknown OAuth identity logs in
	// while user registration is turned off.
	ErrRegistrationDisabled = errors.New("user registration is disabled")

	// ErrRegistrationRoleMissing is returned when the configured registration role
	// does not exist in the database.
	ErrRegistrationRoleMissing = errors.New("user registration role not found")

	// ErrRemoteStatus is returned when a provider API call answers with a
	// non-2xx status code.
	ErrRemoteStatus = errors.New("provider api returned unexpected status")
)
