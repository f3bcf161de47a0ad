package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/pjecz/portal-notarias/internal/edictos"
	"github.com/pjecz/portal-notarias/pkg/auth"
	"github.com/pjecz/portal-notarias/pkg/database"
	"github.com/pjecz/portal-notarias/pkg/flash"
	"github.com/pjecz/portal-notarias/pkg/logging"
	"github.com/pjecz/portal-notarias/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvPortalEnv             = "PORTAL_ENV"
	EnvPortalShutdownTimeout = "PORTAL_SHUTDOWN_TIMEOUT"
	EnvPortalVersion         = "PORTAL_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "PORTAL_DB_HOST",
	Port:            "PORTAL_DB_PORT",
	Name:            "PORTAL_DB_NAME",
	User:            "PORTAL_DB_USER",
	Password:        "PORTAL_DB_PASSWORD",
	SSLMode:         "PORTAL_DB_SSL_MODE",
	Schema:          "PORTAL_DB_SCHEMA",
	MaxOpenConns:    "PORTAL_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "PORTAL_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "PORTAL_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "PORTAL_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "PORTAL_STORAGE_CONTAINER_NAME",
	ConnectionString: "PORTAL_STORAGE_CONNECTION_STRING",
	ServiceURL:       "PORTAL_STORAGE_SERVICE_URL",
	PublicBaseURL:    "PORTAL_STORAGE_PUBLIC_BASE_URL",
}

var logEnv = &logging.Env{
	Level:      "PORTAL_LOG_LEVEL",
	Format:     "PORTAL_LOG_FORMAT",
	FilePath:   "PORTAL_LOG_FILE",
	MaxSizeMB:  "PORTAL_LOG_MAX_SIZE_MB",
	MaxBackups: "PORTAL_LOG_MAX_BACKUPS",
	MaxAgeDays: "PORTAL_LOG_MAX_AGE_DAYS",
	Compress:   "PORTAL_LOG_COMPRESS",
}

var authEnv = &auth.Env{
	Issuer:     "PORTAL_AUTH_ISSUER",
	ClientID:   "PORTAL_AUTH_CLIENT_ID",
	CookieName: "PORTAL_AUTH_COOKIE_NAME",
}

var flashEnv = &flash.Env{
	CookieName: "PORTAL_FLASH_COOKIE_NAME",
	HashKey:    "PORTAL_FLASH_HASH_KEY",
	BlockKey:   "PORTAL_FLASH_BLOCK_KEY",
	Secure:     "PORTAL_FLASH_SECURE",
}

var edictosEnv = &edictos.Env{
	Timezone:          "PORTAL_EDICTOS_TIMEZONE",
	HashidSalt:        "PORTAL_EDICTOS_HASHID_SALT",
	HashidMinLength:   "PORTAL_EDICTOS_HASHID_MIN_LENGTH",
	PublicDownloadURL: "PORTAL_EDICTOS_PUBLIC_DOWNLOAD_URL",
	ForwardDays:       "PORTAL_EDICTOS_FORWARD_DAYS",
	AdminBackdateDays: "PORTAL_EDICTOS_ADMIN_BACKDATE_DAYS",
	EditDays:          "PORTAL_EDICTOS_EDIT_DAYS",
	DeleteDays:        "PORTAL_EDICTOS_DELETE_DAYS",
	AllowedExtensions: "PORTAL_EDICTOS_ALLOWED_EXTENSIONS",
	ExportLimit:       "PORTAL_EDICTOS_EXPORT_LIMIT",
}

// Config is the root configuration for the notary portal.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Web             WebConfig       `toml:"web"`
	Log             logging.Config  `toml:"log"`
	Auth            auth.Config     `toml:"auth"`
	Flash           flash.Config    `toml:"flash"`
	Edictos         edictos.Config  `toml:"edictos"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the PORTAL_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvPortalEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads variables from a .env file into the environment, then the base
// config (if present), applies any environment overlay, and finalizes all
// values. Variables already set in the process environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Web.Merge(&overlay.Web)
	c.Log.Merge(&overlay.Log)
	c.Auth.Merge(&overlay.Auth)
	c.Flash.Merge(&overlay.Flash)
	c.Edictos.Merge(&overlay.Edictos)
}

// Finalize applies defaults, PORTAL_ environment overrides, and validation
// to the root config and every section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Web.Finalize(); err != nil {
		return fmt.Errorf("web: %w", err)
	}
	if err := c.Log.Finalize(logEnv); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Flash.Finalize(flashEnv); err != nil {
		return fmt.Errorf("flash: %w", err)
	}
	if err := c.Edictos.Finalize(edictosEnv); err != nil {
		return fmt.Errorf("edictos: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvPortalShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvPortalVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvPortalEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
