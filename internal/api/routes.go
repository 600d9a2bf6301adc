package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/storybook/internal/config"
	"github.com/JaimeStill/storybook/pkg/openapi"
	"github.com/JaimeStill/storybook/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	groups := []routes.Group{
		newServiceHandler(&cfg.ImageGen).routes(),
		domain.Storybooks.Handler(runtime.ImagePrefix, runtime.MaxBodySize).Routes(),
	}

	routes.Register(mux, groups...)

	if !cfg.API.OpenAPI.IsEnabled() {
		return nil
	}

	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	routes.Document(spec, cfg.API.BasePath, groups...)

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return fmt.Errorf("marshal openapi spec: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(data))

	return nil
}
