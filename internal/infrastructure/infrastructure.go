// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, authentication,
// flash messages) that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pjecz/portal-notarias/internal/config"
	"github.com/pjecz/portal-notarias/pkg/auth"
	"github.com/pjecz/portal-notarias/pkg/database"
	"github.com/pjecz/portal-notarias/pkg/flash"
	"github.com/pjecz/portal-notarias/pkg/lifecycle"
	"github.com/pjecz/portal-notarias/pkg/logging"
	"github.com/pjecz/portal-notarias/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logging   logging.System
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Auth      auth.Authenticator
	Flash     *flash.Store
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
// ctx bounds OpenID discovery against the configured issuer.
func New(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()

	logs, err := logging.New(&cfg.Log, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("logging init failed: %w", err)
	}
	logger := logs.Logger()

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	authn, err := auth.New(ctx, &cfg.Auth, logger)
	if err != nil {
		return nil, fmt.Errorf("auth init failed: %w", err)
	}

	flashes, err := flash.New(&cfg.Flash)
	if err != nil {
		return nil, fmt.Errorf("flash init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logging:   logs,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Auth:      authn,
		Flash:     flashes,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Logging.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("logging start failed: %w", err)
	}
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
