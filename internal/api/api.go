// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/storybook/internal/config"
	"github.com/JaimeStill/storybook/internal/infrastructure"
	"github.com/JaimeStill/storybook/pkg/middleware"
	"github.com/JaimeStill/storybook/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// The module mounts at cfg.API.BasePath, or at the server root when it is empty.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime, cfg)

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.Recover(runtime.Logger))
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
