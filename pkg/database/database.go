// Package database opens the portal's PostgreSQL pool through the pgx driver
// and ties its ping and close to the process lifecycle.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/pjecz/portal-notarias/pkg/lifecycle"
)

// System owns the connection pool.
type System interface {
	// Connection returns the pool shared by every store.
	Connection() *sql.DB
	// Ping checks the server within the configured connection timeout and
	// wraps any failure in ErrNotReady.
	Ping(ctx context.Context) error
	// Start pings on startup and closes the pool on shutdown.
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	conn    *sql.DB
	logger  *slog.Logger
	timeout time.Duration
	target  string
}

// New opens the pool without connecting; the first ping happens in Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:    db,
		logger:  logger.With("system", "database"),
		timeout: cfg.ConnTimeoutDuration(),
		target:  fmt.Sprintf("%s:%d/%s (schema %s)", cfg.Host, cfg.Port, cfg.Name, cfg.Schema),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	return nil
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() error {
		if err := d.Ping(lc.Context()); err != nil {
			d.logger.Error("database unreachable", "target", d.target, "error", err)
			return err
		}
		d.logger.Info("database connected", "target", d.target)
		return nil
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.logger.Info("database closed")
	})

	return nil
}
