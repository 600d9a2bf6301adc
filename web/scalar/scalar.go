// Package scalar serves the Scalar API reference UI for the OpenAPI document.
package scalar

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/JaimeStill/storybook/pkg/module"
)

//go:embed index.html
var staticFS embed.FS

var page = template.Must(template.ParseFS(staticFS, "index.html"))

type pageData struct {
	Title   string
	SpecURL string
}

// NewModule creates a module that serves the reference UI at prefix,
// rendering the document published at specURL.
func NewModule(prefix, title, specURL string) *module.Module {
	return module.New(prefix, buildRouter(title, specURL))
}

func buildRouter(title, specURL string) http.Handler {
	mux := http.NewServeMux()
	data := pageData{Title: title, SpecURL: specURL}

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		page.Execute(w, data)
	})

	return mux
}
