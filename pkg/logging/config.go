package logging

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds log level, output format, and the optional rotating file sink.
type Config struct {
	Level  string     `toml:"level"`
	Format string     `toml:"format"`
	File   FileConfig `toml:"file"`
}

// FileConfig configures the rotating log file. An empty Path disables it.
type FileConfig struct {
	Path       string `toml:"path"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Level      string
	Format     string
	FilePath   string
	MaxSizeMB  string
	MaxBackups string
	MaxAgeDays string
	Compress   string
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
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
	if overlay.File.Path != "" {
		c.File.Path = overlay.File.Path
	}
	if overlay.File.MaxSizeMB != 0 {
		c.File.MaxSizeMB = overlay.File.MaxSizeMB
	}
	if overlay.File.MaxBackups != 0 {
		c.File.MaxBackups = overlay.File.MaxBackups
	}
	if overlay.File.MaxAgeDays != 0 {
		c.File.MaxAgeDays = overlay.File.MaxAgeDays
	}
	if overlay.File.Compress {
		c.File.Compress = true
	}
}

func (c *Config) loadDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
	if c.File.MaxSizeMB <= 0 {
		c.File.MaxSizeMB = 100
	}
	if c.File.MaxBackups <= 0 {
		c.File.MaxBackups = 7
	}
	if c.File.MaxAgeDays <= 0 {
		c.File.MaxAgeDays = 30
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Level != "" {
		if v := os.Getenv(env.Level); v != "" {
			c.Level = v
		}
	}
	if env.Format != "" {
		if v := os.Getenv(env.Format); v != "" {
			c.Format = v
		}
	}
	if env.FilePath != "" {
		if v := os.Getenv(env.FilePath); v != "" {
			c.File.Path = v
		}
	}
	if env.MaxSizeMB != "" {
		if v := os.Getenv(env.MaxSizeMB); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.File.MaxSizeMB = n
			}
		}
	}
	if env.MaxBackups != "" {
		if v := os.Getenv(env.MaxBackups); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.File.MaxBackups = n
			}
		}
	}
	if env.MaxAgeDays != "" {
		if v := os.Getenv(env.MaxAgeDays); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.File.MaxAgeDays = n
			}
		}
	}
	if env.Compress != "" {
		if v := os.Getenv(env.Compress); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.File.Compress = b
			}
		}
	}
}

func (c *Config) validate() error {
	c.Level = strings.ToLower(c.Level)
	c.Format = strings.ToLower(c.Format)

	if _, err := parseLevel(c.Level); err != nil {
		return err
	}
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("invalid format %q: want text or json", c.Format)
	}
	return nil
}
