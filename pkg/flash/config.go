package flash

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
)

// Config holds the flash cookie name and its signing keys.
// Keys are base64 encoded; empty keys are generated at startup, which
// invalidates pending messages across restarts and replicas.
type Config struct {
	CookieName string `toml:"cookie_name"`
	HashKey    string `toml:"hash_key"`
	BlockKey   string `toml:"block_key"`
	Secure     bool   `toml:"secure"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	CookieName string
	HashKey    string
	BlockKey   string
	Secure     string
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
	if overlay.CookieName != "" {
		c.CookieName = overlay.CookieName
	}
	if overlay.HashKey != "" {
		c.HashKey = overlay.HashKey
	}
	if overlay.BlockKey != "" {
		c.BlockKey = overlay.BlockKey
	}
	if overlay.Secure {
		c.Secure = true
	}
}

func (c *Config) loadDefaults() {
	if c.CookieName == "" {
		c.CookieName = "portal_flash"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.CookieName != "" {
		if v := os.Getenv(env.CookieName); v != "" {
			c.CookieName = v
		}
	}
	if env.HashKey != "" {
		if v := os.Getenv(env.HashKey); v != "" {
			c.HashKey = v
		}
	}
	if env.BlockKey != "" {
		if v := os.Getenv(env.BlockKey); v != "" {
			c.BlockKey = v
		}
	}
	if env.Secure != "" {
		if v := os.Getenv(env.Secure); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.Secure = b
			}
		}
	}
}

func (c *Config) validate() error {
	if c.HashKey != "" {
		k, err := base64.StdEncoding.DecodeString(c.HashKey)
		if err != nil {
			return fmt.Errorf("invalid hash_key: %w", err)
		}
		if len(k) < 32 {
			return fmt.Errorf("hash_key must decode to at least 32 bytes")
		}
	}
	if c.BlockKey != "" {
		k, err := base64.StdEncoding.DecodeString(c.BlockKey)
		if err != nil {
			return fmt.Errorf("invalid block_key: %w", err)
		}
		switch len(k) {
		case 16, 24, 32:
		default:
			return fmt.Errorf("block_key must decode to 16, 24 or 32 bytes")
		}
	}
	return nil
}
