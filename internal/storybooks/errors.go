package storybooks

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/storybook/pkg/imagegen"
	"github.com/JaimeStill/storybook/pkg/story"
)

// Domain errors for storybook operations.
var (
	ErrNoImagesGenerated = errors.New("failed to generate any images: check your image provider configuration")
	ErrNotFound          = errors.New("storybook not found")
	ErrDuplicate         = errors.New("storybook already exists")
	ErrInconsistent      = errors.New("storybook record is inconsistent")
	ErrInvalidRequest    = errors.New("invalid request body")
	ErrInvalidID         = errors.New("invalid storybook id")
)

// MapHTTPStatus maps storybook domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, story.ErrEmptyStory),
		errors.Is(err, story.ErrTooManyPages),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrNoImagesGenerated), errors.Is(err, ErrInconsistent):
		return http.StatusInternalServerError
	default:
		return imagegen.MapHTTPStatus(err)
	}
}
