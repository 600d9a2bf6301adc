package storybooks

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/storybook/pkg/handlers"
	"github.com/JaimeStill/storybook/pkg/pagination"
	"github.com/JaimeStill/storybook/pkg/routes"
	"github.com/JaimeStill/storybook/pkg/storage"
)

// Handler provides HTTP endpoints for storybook operations.
type Handler struct {
	sys         System
	logger      *slog.Logger
	pagination  pagination.Config
	imagePrefix string
	maxBodySize int64
}

// NewHandler creates a Handler. imagePrefix is the public path images are
// served under and maxBodySize bounds JSON request bodies.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	imagePrefix string,
	maxBodySize int64,
) *Handler {
	return &Handler{
		sys:         sys,
		logger:      logger.With("handler", "storybooks"),
		pagination:  pagination,
		imagePrefix: imagePrefix,
		maxBodySize: maxBodySize,
	}
}

// Routes returns the route group definition for storybook endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Tags: []string{"Storybooks"},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/split-story", Handler: h.Split, OpenAPI: Spec.Split},
			{Method: "POST", Pattern: "/generate-storybook", Handler: h.Generate, OpenAPI: Spec.Generate},
			{Method: "POST", Pattern: "/test-image", Handler: h.TestImage, OpenAPI: Spec.TestImage},
			{Method: "GET", Pattern: "/images/{key...}", Handler: h.Image, OpenAPI: Spec.Image},
		},
		Children: []routes.Group{
			{
				Prefix: "/storybooks",
				Tags:   []string{"History"},
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: Spec.List},
					{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: Spec.Find},
					{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: Spec.Delete},
				},
			},
		},
		Schemas: Spec.Schemas,
	}
}

// Split returns the pages a story would be divided into. It never rejects
// empty text; validation happens at generation time.
func (h *Handler) Split(w http.ResponseWriter, r *http.Request) {
	var req SplitRequest
	if err := h.decode(w, r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	pages := h.sys.Split(req.StoryText)
	handlers.RespondJSON(w, http.StatusOK, SplitResponse{
		Pages:      pages,
		TotalPages: len(pages),
	})
}

// Generate illustrates every page of the story. The title comes from the
// body, then the title query parameter, then the configured default.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := h.decode(w, r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	title := req.Title
	if title == "" {
		title = r.URL.Query().Get("title")
	}

	sb, err := h.sys.Generate(r.Context(), GenerateCommand{
		StoryText: req.StoryText,
		Title:     title,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, NewStorybookResponse(sb, h.imagePrefix))
}

// TestImage generates a single image from the prompt query parameter.
func (h *Handler) TestImage(w http.ResponseWriter, r *http.Request) {
	key, err := h.sys.TestImage(r.Context(), r.URL.Query().Get("prompt"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, TestImageResponse{
		Success:  true,
		Message:  "Image generated successfully!",
		Filename: path.Base(key),
		Path:     ImageURL(h.imagePrefix, key),
	})
}

// List returns a page of generated storybooks, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.List(r.Context(), page)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, newPageResponse(result, h.imagePrefix))
}

// Find returns a single storybook by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	sb, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, NewStorybookResponse(sb, h.imagePrefix))
}

// Delete removes a storybook and its images.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Image streams a stored image by key.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	obj, err := h.sys.Image(r.Context(), r.PathValue("key"))
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	if obj.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)
	io.Copy(w, obj.Body)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errors.Join(ErrInvalidRequest, err)
		}
		return ErrInvalidRequest
	}
	return nil
}
