// Package login implements the login page: local password logins against
// the user table and the buttons leading into the configured OAuth
// providers.
package login

import "errors"

var (
	// ErrInvalidFormData covers a login form that can not be parsed or fails
	// validation.
	ErrInvalidFormData = errors.New("invalid form data")

	// ErrInvalidCredentials covers a wrong username or password. Which of the
	// two was wrong is not said on purpose.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrAccountDisabled covers an account that exists but was deactivated.
	ErrAccountDisabled = errors.New("user account is disabled")

	// ErrInternalServerError covers unexpected failures during login.
	ErrInternalServerError = errors.New("internal server error")
)
