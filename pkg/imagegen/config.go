package imagegen

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Providers.
const (
	ProviderHuggingFace  = "huggingface"
	ProviderPollinations = "pollinations"
	ProviderStub         = "stub"
)

const (
	defaultHuggingFaceEndpoint  = "https://api-inference.huggingface.co/models/runwayml/stable-diffusion-v1-5"
	defaultPollinationsEndpoint = "https://image.pollinations.ai"
)

// Config holds image generation provider parameters. MaxImageBytes bounds
// the provider response body read into memory.
type Config struct {
	Provider      string `toml:"provider"`
	Endpoint      string `toml:"endpoint"`
	Token         string `toml:"token"`
	Timeout       string `toml:"timeout"`
	Width         int    `toml:"width"`
	Height        int    `toml:"height"`
	MaxErrorBody  int    `toml:"max_error_body"`
	MaxImageBytes int    `toml:"max_image_bytes"`
}

// Env maps config fields to environment variable names for override injection.
// TokenFallback is consulted when Token resolves to an empty value.
type Env struct {
	Provider      string
	Endpoint      string
	Token         string
	TokenFallback string
	Timeout       string
	Width         string
	Height        string
	MaxImageBytes string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// TokenLoaded reports whether a provider token is configured.
func (c *Config) TokenLoaded() bool {
	return c.Token != ""
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	c.loadDefaults()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.Width != 0 {
		c.Width = overlay.Width
	}
	if overlay.Height != 0 {
		c.Height = overlay.Height
	}
	if overlay.MaxErrorBody != 0 {
		c.MaxErrorBody = overlay.MaxErrorBody
	}
	if overlay.MaxImageBytes != 0 {
		c.MaxImageBytes = overlay.MaxImageBytes
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderHuggingFace
	}
	if c.Endpoint == "" {
		switch c.Provider {
		case ProviderHuggingFace:
			c.Endpoint = defaultHuggingFaceEndpoint
		case ProviderPollinations:
			c.Endpoint = defaultPollinationsEndpoint
		}
	}
	if c.Timeout == "" {
		c.Timeout = "75s"
	}
	if c.Width == 0 {
		c.Width = 512
	}
	if c.Height == 0 {
		c.Height = 512
	}
	if c.MaxErrorBody == 0 {
		c.MaxErrorBody = 200
	}
	if c.MaxImageBytes == 0 {
		c.MaxImageBytes = 20 << 20
	}
}

func (c *Config) loadEnv(env *Env) {
	str := func(name string, field *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}
	num := func(name string, field *int) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*field = n
			}
		}
	}

	str(env.Provider, &c.Provider)
	str(env.Endpoint, &c.Endpoint)
	str(env.Token, &c.Token)
	if c.Token == "" {
		str(env.TokenFallback, &c.Token)
	}
	str(env.Timeout, &c.Timeout)
	num(env.Width, &c.Width)
	num(env.Height, &c.Height)
	num(env.MaxImageBytes, &c.MaxImageBytes)
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderHuggingFace, ProviderPollinations:
		if c.Endpoint == "" {
			return fmt.Errorf("endpoint required")
		}
	case ProviderStub:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("invalid dimensions: %dx%d", c.Width, c.Height)
	}
	if c.MaxErrorBody < 1 {
		return fmt.Errorf("max_error_body must be positive")
	}
	if c.MaxImageBytes < 1 {
		return fmt.Errorf("max_image_bytes must be positive")
	}
	return nil
}
