package auth

import (
	"fmt"
	"net/url"
	"os"
)

// Config holds the OpenID Connect provider used to verify ID tokens.
// An empty Issuer leaves authentication disabled and every protected
// request is rejected.
type Config struct {
	Issuer     string `toml:"issuer"`
	ClientID   string `toml:"client_id"`
	CookieName string `toml:"cookie_name"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Issuer     string
	ClientID   string
	CookieName string
}

// Enabled reports whether an issuer is configured.
func (c *Config) Enabled() bool {
	return c.Issuer != ""
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if overlay.CookieName != "" {
		c.CookieName = overlay.CookieName
	}
}

func (c *Config) loadDefaults() {
	if c.CookieName == "" {
		c.CookieName = "portal_id_token"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Issuer != "" {
		if v := os.Getenv(env.Issuer); v != "" {
			c.Issuer = v
		}
	}
	if env.ClientID != "" {
		if v := os.Getenv(env.ClientID); v != "" {
			c.ClientID = v
		}
	}
	if env.CookieName != "" {
		if v := os.Getenv(env.CookieName); v != "" {
			c.CookieName = v
		}
	}
}

func (c *Config) validate() error {
	if !c.Enabled() {
		return nil
	}
	if u, err := url.Parse(c.Issuer); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid issuer: %q", c.Issuer)
	}
	if c.ClientID == "" {
		return fmt.Errorf("client_id required when issuer is set")
	}
	return nil
}
