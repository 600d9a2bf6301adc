// Package database opens the PostgreSQL pool backing run history and ties
// its startup and shutdown to the lifecycle coordinator.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/storybook/pkg/lifecycle"
)

// System exposes the connection pool and registers its lifecycle hooks.
type System interface {
	// Connection returns the pool. It is usable before Start; queries block
	// until a connection can be made.
	Connection() *sql.DB
	// Start registers the startup ping and schema check and the shutdown close.
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	conn        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration
	tables      []string
}

// New opens a pool for cfg without connecting. Startup fails unless every
// table in tables exists in the public schema.
func New(cfg *Config, logger *slog.Logger, tables ...string) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:        db,
		logger:      logger.With("system", "database", "host", cfg.Host, "name", cfg.Name),
		connTimeout: cfg.ConnTimeoutDuration(),
		tables:      tables,
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup("database", func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, d.connTimeout)
		defer cancel()

		if err := d.conn.PingContext(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrNotReady, err)
		}

		if err := d.checkSchema(ctx); err != nil {
			return err
		}

		d.logger.Info("database ready", "tables", d.tables)
		return nil
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		stats := d.conn.Stats()
		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.logger.Info("database closed", "open_connections", stats.OpenConnections, "wait_count", stats.WaitCount)
	})

	return nil
}

func (d *database) checkSchema(ctx context.Context) error {
	for _, table := range d.tables {
		var exists bool
		err := d.conn.QueryRowContext(
			ctx,
			"SELECT to_regclass($1) IS NOT NULL",
			"public."+table,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check table %s: %w", table, err)
		}
		if !exists {
			return fmt.Errorf("%w: table %s missing, run cmd/migrate", ErrSchemaMissing, table)
		}
	}
	return nil
}
