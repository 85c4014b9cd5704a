package config

import (
	"errors"
)

var (
	// ErrEmptyURL rejects a configuration without the webserver base URL,
	// OAuth redirect URLs are derived from it.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero rejects a configuration without a
	// listening port.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrDuplicateOAuthProvider rejects provider entries sharing a name.
	ErrDuplicateOAuthProvider = errors.New("toml config auth.providers entries must have unique names")
)
