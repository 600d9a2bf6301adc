package api

import (
	"net/http"

	"github.com/JaimeStill/storybook/pkg/handlers"
	"github.com/JaimeStill/storybook/pkg/imagegen"
	"github.com/JaimeStill/storybook/pkg/openapi"
	"github.com/JaimeStill/storybook/pkg/routes"
)

const welcomeMessage = "Welcome to Storybook Illustrator!"

type welcomeResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type healthResponse struct {
	Status      string `json:"status"`
	Provider    string `json:"provider"`
	TokenLoaded string `json:"token_loaded"`
}

type serviceHandler struct {
	images *imagegen.Config
}

func newServiceHandler(images *imagegen.Config) *serviceHandler {
	return &serviceHandler{images: images}
}

func (h *serviceHandler) routes() routes.Group {
	return routes.Group{
		Tags: []string{"Service"},
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "/{$}",
				Handler: h.welcome,
				OpenAPI: &openapi.Operation{
					Summary: "Welcome message",
					Responses: map[int]*openapi.Response{
						200: {Description: "Service is running"},
					},
				},
			},
			{
				Method:  "GET",
				Pattern: "/health",
				Handler: h.health,
				OpenAPI: &openapi.Operation{
					Summary:     "Health check",
					Description: "Reports whether the image provider token is loaded.",
					Responses: map[int]*openapi.Response{
						200: {Description: "Service is healthy"},
					},
				},
			},
		},
	}
}

func (h *serviceHandler) welcome(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, welcomeResponse{
		Message: welcomeMessage,
		Status:  "running",
	})
}

func (h *serviceHandler) health(w http.ResponseWriter, r *http.Request) {
	loaded := "No"
	if h.images.TokenLoaded() {
		loaded = "Yes"
	}

	handlers.RespondJSON(w, http.StatusOK, healthResponse{
		Status:      "healthy",
		Provider:    h.images.Provider,
		TokenLoaded: loaded,
	})
}
