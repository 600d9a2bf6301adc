package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/JaimeStill/storybook/pkg/formatting"
	"github.com/JaimeStill/storybook/pkg/middleware"
	"github.com/JaimeStill/storybook/pkg/openapi"
	"github.com/JaimeStill/storybook/pkg/pagination"
)

const (
	EnvAPIBasePath    = "STORYBOOK_API_BASE_PATH"
	EnvAPIMaxBodySize = "STORYBOOK_API_MAX_BODY_SIZE"

	defaultMaxBodySize = 1 << 20
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "STORYBOOK_CORS_ENABLED",
	Origins:          "STORYBOOK_CORS_ORIGINS",
	AllowedMethods:   "STORYBOOK_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "STORYBOOK_CORS_ALLOWED_HEADERS",
	AllowCredentials: "STORYBOOK_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "STORYBOOK_CORS_MAX_AGE",
}

var openapiEnv = &openapi.ConfigEnv{
	Enabled:     "STORYBOOK_OPENAPI_ENABLED",
	Title:       "STORYBOOK_OPENAPI_TITLE",
	Description: "STORYBOOK_OPENAPI_DESCRIPTION",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "STORYBOOK_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "STORYBOOK_PAGINATION_MAX_PAGE_SIZE",
	MaxSearchLength: "STORYBOOK_PAGINATION_MAX_SEARCH_LENGTH",
}

// APIConfig holds API routing, request limits, CORS, OpenAPI, and pagination settings.
// An empty BasePath mounts the API at the server root.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	CORS        middleware.CORSConfig `toml:"cors"`
	OpenAPI     openapi.Config        `toml:"openapi"`
	Pagination  pagination.Config     `toml:"pagination"`
}

// MaxBodySizeBytes returns MaxBodySize in bytes, falling back to 1MB.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil || size <= 0 {
		return defaultMaxBodySize
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}

	c.CORS.Merge(&overlay.CORS)
	c.OpenAPI.Merge(&overlay.OpenAPI)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxBodySize); v != "" {
		c.MaxBodySize = v
	}
}

func (c *APIConfig) validate() error {
	c.BasePath = strings.TrimSuffix(c.BasePath, "/")
	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("base_path must start with /: %q", c.BasePath)
	}
	if _, err := formatting.ParseBytes(c.MaxBodySize); err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	return nil
}
