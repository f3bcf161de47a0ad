package edictos

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the notice workflow rules.
type Config struct {
	Timezone          string   `toml:"timezone"`
	HashidSalt        string   `toml:"hashid_salt"`
	HashidMinLength   int      `toml:"hashid_min_length"`
	PublicDownloadURL string   `toml:"public_download_url"`
	ForwardDays       int      `toml:"forward_days"`
	AdminBackdateDays int      `toml:"admin_backdate_days"`
	EditDays          int      `toml:"edit_days"`
	DeleteDays        int      `toml:"delete_days"`
	AllowedExtensions []string `toml:"allowed_extensions"`
	ExportLimit       int      `toml:"export_limit"`

	location *time.Location
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Timezone          string
	HashidSalt        string
	HashidMinLength   string
	PublicDownloadURL string
	ForwardDays       string
	AdminBackdateDays string
	EditDays          string
	DeleteDays        string
	AllowedExtensions string
	ExportLimit       string
}

// Location returns the loaded timezone. Valid after Finalize.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
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
	if overlay.Timezone != "" {
		c.Timezone = overlay.Timezone
	}
	if overlay.HashidSalt != "" {
		c.HashidSalt = overlay.HashidSalt
	}
	if overlay.HashidMinLength != 0 {
		c.HashidMinLength = overlay.HashidMinLength
	}
	if overlay.PublicDownloadURL != "" {
		c.PublicDownloadURL = overlay.PublicDownloadURL
	}
	if overlay.ForwardDays != 0 {
		c.ForwardDays = overlay.ForwardDays
	}
	if overlay.AdminBackdateDays != 0 {
		c.AdminBackdateDays = overlay.AdminBackdateDays
	}
	if overlay.EditDays != 0 {
		c.EditDays = overlay.EditDays
	}
	if overlay.DeleteDays != 0 {
		c.DeleteDays = overlay.DeleteDays
	}
	if overlay.AllowedExtensions != nil {
		c.AllowedExtensions = overlay.AllowedExtensions
	}
	if overlay.ExportLimit != 0 {
		c.ExportLimit = overlay.ExportLimit
	}
}

func (c *Config) loadDefaults() {
	if c.Timezone == "" {
		c.Timezone = "America/Mexico_City"
	}
	if c.HashidMinLength == 0 {
		c.HashidMinLength = 8
	}
	if c.PublicDownloadURL == "" {
		c.PublicDownloadURL = "https://www.pjecz.gob.mx/consultas/edictos/descargar/?id="
	}
	if c.ForwardDays == 0 {
		c.ForwardDays = 30
	}
	if c.AdminBackdateDays == 0 {
		c.AdminBackdateDays = 3650
	}
	if c.EditDays == 0 {
		c.EditDays = 1
	}
	if c.DeleteDays == 0 {
		c.DeleteDays = 1
	}
	if len(c.AllowedExtensions) == 0 {
		c.AllowedExtensions = []string{"pdf"}
	}
	if c.ExportLimit == 0 {
		c.ExportLimit = 10000
	}
}

func (c *Config) loadEnv(env *Env) {
	setString := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString(env.Timezone, &c.Timezone)
	setString(env.HashidSalt, &c.HashidSalt)
	setInt(env.HashidMinLength, &c.HashidMinLength)
	setString(env.PublicDownloadURL, &c.PublicDownloadURL)
	setInt(env.ForwardDays, &c.ForwardDays)
	setInt(env.AdminBackdateDays, &c.AdminBackdateDays)
	setInt(env.EditDays, &c.EditDays)
	setInt(env.DeleteDays, &c.DeleteDays)
	setInt(env.ExportLimit, &c.ExportLimit)

	if env.AllowedExtensions != "" {
		if v := os.Getenv(env.AllowedExtensions); v != "" {
			var exts []string
			for e := range strings.SplitSeq(v, ",") {
				if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
					exts = append(exts, e)
				}
			}
			c.AllowedExtensions = exts
		}
	}
}

func (c *Config) validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}
	c.location = loc

	if _, err := url.Parse(c.PublicDownloadURL); err != nil {
		return fmt.Errorf("invalid public_download_url: %w", err)
	}
	if c.HashidMinLength < 0 {
		return fmt.Errorf("hashid_min_length cannot be negative")
	}
	for name, v := range map[string]int{
		"forward_days":        c.ForwardDays,
		"admin_backdate_days": c.AdminBackdateDays,
		"edit_days":           c.EditDays,
		"delete_days":         c.DeleteDays,
		"export_limit":        c.ExportLimit,
	} {
		if v < 1 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if len(c.AllowedExtensions) == 0 {
		return fmt.Errorf("allowed_extensions cannot be empty")
	}
	return nil
}
