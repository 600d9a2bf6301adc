package storybooks

import "github.com/JaimeStill/storybook/pkg/openapi"

type spec struct {
	Split     *openapi.Operation
	Generate  *openapi.Operation
	TestImage *openapi.Operation
	Image     *openapi.Operation
	List      *openapi.Operation
	Find      *openapi.Operation
	Delete    *openapi.Operation
	Schemas   map[string]*openapi.Schema
}

// Spec documents the storybook routes.
var Spec = spec{
	Split: &openapi.Operation{
		Summary:     "Split a story into pages",
		Description: "Splits story text on blank lines. Each non-empty paragraph becomes one page. Never rejects empty text.",
		RequestBody: openapi.RequestBodyJSON("SplitRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Story pages", "SplitResponse"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Generate: &openapi.Operation{
		Summary:     "Generate a storybook",
		Description: "Splits the story and generates one illustration per page. Pages that fail are reported individually; the request fails only when no page succeeds.",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("title", "string", "Storybook title when the body carries none", false),
		},
		RequestBody: openapi.RequestBodyJSON("GenerateRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Generated storybook", "Storybook"),
			400: openapi.ResponseRef("BadRequest"),
			500: openapi.ResponseRef("InternalServerError"),
		},
	},
	TestImage: &openapi.Operation{
		Summary:     "Generate a single test image",
		Description: "Generates one image from the prompt and stores it under test/test_image.png.",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("prompt", "string", "Image prompt", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Generated image", "TestImageResponse"),
			502: openapi.ResponseRef("BadGateway"),
			503: openapi.ResponseRef("BadGateway"),
			504: openapi.ResponseRef("BadGateway"),
		},
	},
	Image: &openapi.Operation{
		Summary: "Download a generated image",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("key", "", "Image storage key, e.g. <storybook id>/page_1.png"),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseBinary("Image bytes", "image/png"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	List: &openapi.Operation{
		Summary: "List generated storybooks",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number", false).
				WithDefault(1).
				WithRange(openapi.Bound(1), nil),
			openapi.QueryParam("page_size", "integer", "Results per page, clamped to the configured maximum", false).
				WithRange(openapi.Bound(1), nil),
			openapi.QueryParam("search", "string", "Case-insensitive title filter", false),
			openapi.QueryParam("sort", "string", "Comma-separated sort fields, - prefix for descending. Example: title,-created_at", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Storybook page", "StorybookPage"),
		},
	},
	Find: &openapi.Operation{
		Summary: "Find a storybook by ID",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "uuid", "Storybook ID"),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Storybook", "Storybook"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Delete: &openapi.Operation{
		Summary: "Delete a storybook and its images",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "uuid", "Storybook ID"),
		},
		Responses: map[int]*openapi.Response{
			204: {Description: "Deleted"},
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Schemas: map[string]*openapi.Schema{
		"SplitRequest": {
			Type:     "object",
			Required: []string{"story_text"},
			Properties: map[string]*openapi.Schema{
				"story_text": {Type: "string", Example: "Once upon a time, there was a brave knight.\n\nHe went on an adventure.\n\nThe end."},
			},
		},
		"GenerateRequest": {
			Type:     "object",
			Required: []string{"story_text"},
			Properties: map[string]*openapi.Schema{
				"story_text": {Type: "string"},
				"title":      {Type: "string", Default: "My Storybook"},
			},
		},
		"SplitResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"pages":       openapi.ArrayOf(&openapi.Schema{Type: "string"}),
				"total_pages": {Type: "integer"},
			},
		},
		"PageImage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"page_number":    {Type: "integer"},
				"page_text":      {Type: "string"},
				"image_filename": {Type: "string", Description: `"page_<n>.png", or "error" for failed pages`},
				"image_path":     {Type: "string", Description: "Image URL, or the error summary for failed pages"},
				"status":         openapi.StringEnum(StatusSuccess, StatusFailed),
				"error":          {Type: "string"},
			},
		},
		"Storybook": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":               {Type: "string", Format: "uuid"},
				"story_title":      {Type: "string"},
				"total_pages":      {Type: "integer"},
				"images":           openapi.ArrayOf(openapi.SchemaRef("PageImage")),
				"generation_time":  {Type: "string", Example: "0:42 (3/3 successful)"},
				"successful_pages": {Type: "integer"},
				"failed_pages":     {Type: "integer"},
				"created_at":       {Type: "string", Format: "date-time"},
			},
		},
		"StorybookPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        openapi.ArrayOf(openapi.SchemaRef("Storybook")),
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
		"TestImageResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"success":  {Type: "boolean"},
				"message":  {Type: "string"},
				"filename": {Type: "string"},
				"path":     {Type: "string"},
			},
		},
	},
}
