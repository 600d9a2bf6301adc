package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/storybook/pkg/openapi"
	"github.com/JaimeStill/storybook/pkg/routes"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func storybookGroup() routes.Group {
	return routes.Group{
		Tags: []string{"Storybooks"},
		Routes: []routes.Route{
			{
				Method:  "POST",
				Pattern: "/split-story",
				Handler: ok,
				OpenAPI: &openapi.Operation{Summary: "Split story"},
			},
			{Method: "GET", Pattern: "/images/{key...}", Handler: ok},
		},
		Children: []routes.Group{
			{
				Prefix: "/storybooks",
				Routes: []routes.Route{
					{
						Method:  "GET",
						Pattern: "",
						Handler: ok,
						OpenAPI: &openapi.Operation{Summary: "List storybooks"},
					},
					{
						Method:  "GET",
						Pattern: "/{id}",
						Handler: ok,
						OpenAPI: &openapi.Operation{Summary: "Find storybook", Tags: []string{"History"}},
					},
				},
			},
		},
		Schemas: map[string]*openapi.Schema{
			"SplitRequest": {Type: "object"},
		},
	}
}

func TestRegisterHandlers(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, storybookGroup())

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"split", "POST", "/split-story", http.StatusOK},
		{"image wildcard", "GET", "/images/run/page_1.png", http.StatusOK},
		{"nested list", "GET", "/storybooks", http.StatusOK},
		{"nested find", "GET", "/storybooks/123", http.StatusOK},
		{"wrong method", "GET", "/split-story", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestNestedGroups(t *testing.T) {
	mux := http.NewServeMux()

	routes.Register(mux, routes.Group{
		Prefix: "/api",
		Children: []routes.Group{
			{
				Prefix: "/v1",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "/items", Handler: ok},
				},
			},
		},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/items", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("nested route: got %d, want 200", rec.Code)
	}
}

func TestDocument(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	routes.Document(spec, "/api", storybookGroup())

	split, ok := spec.Paths["/api/split-story"]
	if !ok || split.Post == nil {
		t.Fatal("missing POST /api/split-story")
	}
	if len(split.Post.Tags) != 1 || split.Post.Tags[0] != "Storybooks" {
		t.Errorf("split tags: got %v, want [Storybooks]", split.Post.Tags)
	}

	if _, ok := spec.Paths["/api/images/{key}"]; ok {
		t.Error("undocumented route should be omitted")
	}

	list, ok := spec.Paths["/api/storybooks"]
	if !ok || list.Get == nil {
		t.Fatal("missing GET /api/storybooks")
	}
	if list.Get.Tags[0] != "Storybooks" {
		t.Errorf("child group should inherit tags: got %v", list.Get.Tags)
	}

	find, ok := spec.Paths["/api/storybooks/{id}"]
	if !ok || find.Get == nil {
		t.Fatal("missing GET /api/storybooks/{id}")
	}
	if find.Get.Tags[0] != "History" {
		t.Errorf("explicit tags should win: got %v", find.Get.Tags)
	}

	if _, ok := spec.Components.Schemas["SplitRequest"]; !ok {
		t.Error("group schemas should be added to components")
	}
}
