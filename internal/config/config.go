// Package config loads the application configuration from etc/*.toml,
// with an optional JSON override taken from the environment.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/go-playground/validator/v10"

	"github.com/BurntSushi/toml"
)

// envConfigJSON names the environment variable holding a JSON blob that
// overrides single fields of the loaded configuration. Containers set
// credentials this way without editing the toml file.
const envConfigJSON = "GO_INSIGHTS_ADMIN_CONFIG_JSON"

// ReadConfig loads main.toml from path (./etc/ when empty), applies the
// environment override when set, then validates and fills in defaults.
func ReadConfig(path string) (Config, error) {
	if path == "" {
		path = "./etc/"
	}

	var c Config

	if _, err := toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if override := os.Getenv(envConfigJSON); override != "" {
		if err := json.Unmarshal([]byte(override), &c); err != nil {
			return Config{}, errors.Wrap(err, "failed to decode config override from "+envConfigJSON)
		}
	}

	return c, validate(&c)
}

// DumpConfig renders the configuration as TOML, the way main.toml would
// spell it.
func DumpConfig(c Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON renders the configuration as indented JSON, the format
// the environment override is written in.
func DumpConfigJSON(c Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate checks the fields the webserver and the auth layer cannot run
// without and fills in defaults for the rest.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	// the base URL is what OAuth redirect URLs are derived from
	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5
	}

	if c.Webserver.Session.ExpiryTime == 0 {
		c.Webserver.Session.ExpiryTime = 12 * time.Hour
	}

	return validateProviders(c.Auth.Providers)
}

// validateProviders checks the provider entries that carry validate tags and
// rejects duplicate provider names. Optional keys stay optional so a sparse
// entry never breaks startup, it only disables the feature that needs the
// missing key.
func validateProviders(providers []OAuthProvider) error {
	structValidate := validator.New()
	seen := make(map[string]struct{}, len(providers))

	for _, p := range providers {
		if err := structValidate.Struct(p); err != nil {
			return errors.Wrapf(err, "invalid config for oauth provider %q", p.Name)
		}

		if _, ok := seen[p.Name]; ok {
			return errors.Wrapf(ErrDuplicateOAuthProvider, "invalid config for oauth provider %q", p.Name)
		}

		seen[p.Name] = struct{}{}
	}

	return nil
}
