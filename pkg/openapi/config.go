// Package openapi builds and serves an OpenAPI 3.1 document describing the
// service's HTTP routes.
package openapi

import "os"

// Config holds OpenAPI metadata for spec generation.
type Config struct {
	Enabled     *bool  `toml:"enabled"`
	Title       string `toml:"title"`
	Description string `toml:"description"`
}

// ConfigEnv maps config fields to environment variable names for override injection.
type ConfigEnv struct {
	Enabled     string
	Title       string
	Description string
}

// IsEnabled reports whether the spec endpoint should be served. Unset means enabled.
func (c *Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Finalize applies defaults and environment variable overrides.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Enabled != nil {
		c.Enabled = overlay.Enabled
	}
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
}

func (c *Config) loadDefaults() {
	if c.Title == "" {
		c.Title = "Storybook Illustrator"
	}
	if c.Description == "" {
		c.Description = "Generate illustrations for your stories!"
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	if env.Enabled != "" {
		switch os.Getenv(env.Enabled) {
		case "true", "1":
			enabled := true
			c.Enabled = &enabled
		case "false", "0":
			enabled := false
			c.Enabled = &enabled
		}
	}
	if env.Title != "" {
		if v := os.Getenv(env.Title); v != "" {
			c.Title = v
		}
	}
	if env.Description != "" {
		if v := os.Getenv(env.Description); v != "" {
			c.Description = v
		}
	}
}
