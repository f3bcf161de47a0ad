package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost              = "PORTAL_SERVER_HOST"
	EnvServerPort              = "PORTAL_SERVER_PORT"
	EnvServerReadTimeout       = "PORTAL_SERVER_READ_TIMEOUT"
	EnvServerReadHeaderTimeout = "PORTAL_SERVER_READ_HEADER_TIMEOUT"
	EnvServerWriteTimeout      = "PORTAL_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout       = "PORTAL_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout   = "PORTAL_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP server parameters. Timeouts are Go duration strings.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadTimeout       string `toml:"read_timeout"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
}

// timeout pairs a duration field with its TOML key and environment variable.
type timeout struct {
	key   string
	env   string
	field *string
	def   string
}

func (c *ServerConfig) timeouts() []timeout {
	return []timeout{
		{"read_timeout", EnvServerReadTimeout, &c.ReadTimeout, "2m"},
		{"read_header_timeout", EnvServerReadHeaderTimeout, &c.ReadHeaderTimeout, "10s"},
		{"write_timeout", EnvServerWriteTimeout, &c.WriteTimeout, "5m"},
		{"idle_timeout", EnvServerIdleTimeout, &c.IdleTimeout, "2m"},
		{"shutdown_timeout", EnvServerShutdownTimeout, &c.ShutdownTimeout, "30s"},
	}
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration { return duration(c.ReadTimeout) }

func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration {
	return duration(c.ReadHeaderTimeout)
}

func (c *ServerConfig) WriteTimeoutDuration() time.Duration { return duration(c.WriteTimeout) }

func (c *ServerConfig) IdleTimeoutDuration() time.Duration { return duration(c.IdleTimeout) }

func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return duration(c.ShutdownTimeout)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	theirs := overlay.timeouts()
	for i, t := range c.timeouts() {
		if v := *theirs[i].field; v != "" {
			*t.field = v
		}
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	for _, t := range c.timeouts() {
		if *t.field == "" {
			*t.field = t.def
		}
	}
}

func (c *ServerConfig) loadEnv() {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	for _, t := range c.timeouts() {
		if v := os.Getenv(t.env); v != "" {
			*t.field = v
		}
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for _, t := range c.timeouts() {
		d, err := time.ParseDuration(*t.field)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", t.key, err)
		}
		if d < 0 {
			return fmt.Errorf("invalid %s: must not be negative", t.key)
		}
	}
	return nil
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
