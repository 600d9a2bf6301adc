package api

import (
	"log/slog"

	"github.com/JaimeStill/storybook/internal/config"
	"github.com/JaimeStill/storybook/internal/infrastructure"
	"github.com/JaimeStill/storybook/internal/storybooks"
	"github.com/JaimeStill/storybook/pkg/pagination"
)

// Runtime is what the API module's domain systems are built from: shared
// infrastructure plus the API-scoped logger, history store, progress
// reporter and request limits.
type Runtime struct {
	*infrastructure.Infrastructure

	Logger      *slog.Logger
	History     storybooks.Store
	Reporter    storybooks.Reporter
	Pagination  pagination.Config
	ImagePrefix string
	MaxBodySize int64
}

// NewRuntime scopes the logger to the api module and selects the history
// backend: PostgreSQL when the database is enabled, otherwise an in-memory
// TTL cache.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	logger := infra.Logger.With("module", "api")

	var history storybooks.Store
	if infra.Database != nil {
		history = storybooks.NewPostgresStore(infra.Database.Connection())
	} else {
		history = storybooks.NewMemoryStore(cfg.Storybook.HistoryTTLDuration())
	}

	return &Runtime{
		Infrastructure: infra,
		Logger:         logger,
		History:        history,
		Reporter: storybooks.Reporters{
			storybooks.NewLogReporter(logger),
			storybooks.NewMetricsReporter(infra.Metrics),
		},
		Pagination:  cfg.API.Pagination,
		ImagePrefix: cfg.API.BasePath + "/images",
		MaxBodySize: cfg.API.MaxBodySizeBytes(),
	}
}
