package routes

import (
	"net/http"

	"github.com/JaimeStill/storybook/pkg/openapi"
)

// Route binds an HTTP method and pattern to a handler. OpenAPI is optional;
// routes without it are registered but left out of the generated document.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}
