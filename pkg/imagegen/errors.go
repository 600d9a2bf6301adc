package imagegen

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrModelLoading indicates the provider answered 503 while its model warms up.
	ErrModelLoading = errors.New("model is loading, please wait 20 seconds and try again")
	// ErrTimeout indicates the provider did not answer within the configured timeout.
	ErrTimeout = errors.New("image generation timed out")
	// ErrInvalidImage indicates the provider returned a payload that is not a decodable image.
	ErrInvalidImage = errors.New("provider returned an invalid image")
	// ErrImageTooLarge indicates the provider response exceeds the byte or dimension limits.
	ErrImageTooLarge = errors.New("provider returned an oversized image")
	// ErrEmptyPrompt indicates Generate was called without a prompt.
	ErrEmptyPrompt = errors.New("prompt must not be empty")
)

// StatusError is returned when the provider answers with a non-success status.
// Body is truncated to the configured maximum.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("image generation failed: status %d", e.Code)
	}
	return fmt.Sprintf("image generation failed: status %d: %s", e.Code, e.Body)
}

// MapHTTPStatus maps image generation errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	var se *StatusError
	switch {
	case errors.Is(err, ErrEmptyPrompt):
		return http.StatusBadRequest
	case errors.Is(err, ErrModelLoading):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrInvalidImage), errors.Is(err, ErrImageTooLarge), errors.As(err, &se):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
