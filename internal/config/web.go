package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pjecz/portal-notarias/pkg/formatting"
	"github.com/pjecz/portal-notarias/pkg/middleware"
	"github.com/pjecz/portal-notarias/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "PORTAL_CORS_ENABLED",
	Origins:          "PORTAL_CORS_ORIGINS",
	AllowedMethods:   "PORTAL_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "PORTAL_CORS_ALLOWED_HEADERS",
	AllowCredentials: "PORTAL_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "PORTAL_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "PORTAL_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "PORTAL_PAGINATION_MAX_PAGE_SIZE",
}

// WebConfig holds the site's mount path, upload limit, CORS, and DataTables
// paging settings.
type WebConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes. Valid after Finalize.
func (c *WebConfig) MaxUploadSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxUploadSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the web config and its nested CORS and pagination configs.
func (c *WebConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *WebConfig) Merge(overlay *WebConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *WebConfig) loadDefaults() {
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MB"
	}
}

func (c *WebConfig) loadEnv() {
	if v := os.Getenv("PORTAL_WEB_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("PORTAL_WEB_MAX_UPLOAD_SIZE"); v != "" {
		c.MaxUploadSize = v
	}
}

func (c *WebConfig) validate() error {
	// "/" mounts at the root like the empty path
	c.BasePath = strings.TrimRight(c.BasePath, "/")
	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("base_path must start with /: %q", c.BasePath)
	}
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	return nil
}
