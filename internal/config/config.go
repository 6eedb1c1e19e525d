// Package config holds the server configuration and its environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Auth modes.
const (
	AuthModeMock     = "mock"
	AuthModePassword = "password"
)

// OIDC holds single sign-on settings. SSO is enabled when Issuer is set.
type OIDC struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether SSO is configured.
func (o OIDC) Enabled() bool {
	return o.Issuer != ""
}

// Config holds configuration for the usergate server.
type Config struct {
	Addr          string        // Listen address (default ":8080")
	WebDir        string        // Directory holding index.html and assets/
	DatabaseURL   string        // PostgreSQL DSN; empty keeps everything in memory
	LogLevel      string        // debug, info, warn, error
	LogFormat     string        // text, json
	AuthMode      string        // mock or password
	LoginDelay    time.Duration // Latency simulated by the mock authenticator
	SessionTTL    time.Duration
	DefaultLocale string
	SecureCookies bool
	OIDC          OIDC
}

// Default returns sensible defaults.
func Default() Config {
	return Config{
		Addr:          ":8080",
		WebDir:        "web",
		LogLevel:      "info",
		LogFormat:     "text",
		AuthMode:      AuthModeMock,
		LoginDelay:    1500 * time.Millisecond,
		SessionTTL:    24 * time.Hour,
		DefaultLocale: "en",
	}
}

// FromEnv returns Default overridden by environment variables.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	env := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	env("ADDR", &c.Addr)
	env("WEB_DIR", &c.WebDir)
	env("DATABASE_URL", &c.DatabaseURL)
	env("LOG_LEVEL", &c.LogLevel)
	env("LOG_FORMAT", &c.LogFormat)
	env("AUTH_MODE", &c.AuthMode)
	env("DEFAULT_LOCALE", &c.DefaultLocale)
	env("OIDC_ISSUER", &c.OIDC.Issuer)
	env("OIDC_CLIENT_ID", &c.OIDC.ClientID)
	env("OIDC_CLIENT_SECRET", &c.OIDC.ClientSecret)
	env("OIDC_REDIRECT_URL", &c.OIDC.RedirectURL)

	var err error
	if v, ok := lookup("LOGIN_DELAY"); ok && v != "" {
		if c.LoginDelay, err = time.ParseDuration(v); err != nil {
			return c, fmt.Errorf("LOGIN_DELAY: %w", err)
		}
	}
	if v, ok := lookup("SESSION_TTL"); ok && v != "" {
		if c.SessionTTL, err = time.ParseDuration(v); err != nil {
			return c, fmt.Errorf("SESSION_TTL: %w", err)
		}
	}
	if v, ok := lookup("SECURE_COOKIES"); ok && v != "" {
		if c.SecureCookies, err = strconv.ParseBool(v); err != nil {
			return c, fmt.Errorf("SECURE_COOKIES: %w", err)
		}
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.AuthMode {
	case AuthModeMock, AuthModePassword:
	default:
		return fmt.Errorf("unknown auth mode %q (want %s or %s)", c.AuthMode, AuthModeMock, AuthModePassword)
	}
	if c.Addr == "" {
		return errors.New("listen address is required")
	}
	if c.LoginDelay < 0 {
		return errors.New("login delay must not be negative")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if c.DefaultLocale == "" {
		return errors.New("default locale is required")
	}
	if o := c.OIDC; o.Enabled() && (o.ClientID == "" || o.RedirectURL == "") {
		return errors.New("OIDC issuer set without client id or redirect url")
	}
	return nil
}
