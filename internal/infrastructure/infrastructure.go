// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, metrics, database, storage, image
// generation) that domain systems require.
package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JaimeStill/storybook/internal/config"
	"github.com/JaimeStill/storybook/internal/storybooks"
	"github.com/JaimeStill/storybook/pkg/database"
	"github.com/JaimeStill/storybook/pkg/imagegen"
	"github.com/JaimeStill/storybook/pkg/lifecycle"
	"github.com/JaimeStill/storybook/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Database is nil when history persistence is disabled.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Metrics   *prometheus.Registry
	Database  database.System
	Storage   storage.System
	Images    imagegen.Generator
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := NewLogger(&cfg.Logging, os.Stderr)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var db database.System
	if cfg.Database.Enabled {
		var err error
		db, err = database.New(&cfg.Database, logger, storybooks.Tables...)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		reg.MustRegister(collectors.NewDBStatsCollector(db.Connection(), cfg.Database.Name))
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	images, err := imagegen.New(&cfg.ImageGen, logger)
	if err != nil {
		return nil, fmt.Errorf("imagegen init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Metrics:   reg,
		Database:  db,
		Storage:   store,
		Images:    images,
	}, nil
}

// NewLogger builds the root slog logger from the logging config.
func NewLogger(cfg *config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == config.FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
