package storybooks

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/JaimeStill/storybook/pkg/story"
)

// Config holds storybook generation parameters.
type Config struct {
	MaxPages           int    `toml:"max_pages"`
	PromptChars        int    `toml:"prompt_chars"`
	PagePause          string `toml:"page_pause"`
	Concurrency        int    `toml:"concurrency"`
	ErrorSummaryLength int    `toml:"error_summary_length"`
	DefaultTitle       string `toml:"default_title"`
	TestPrompt         string `toml:"test_prompt"`
	HistoryTTL         string `toml:"history_ttl"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	MaxPages           string
	PromptChars        string
	PagePause          string
	Concurrency        string
	ErrorSummaryLength string
	DefaultTitle       string
	TestPrompt         string
	HistoryTTL         string
}

// PagePauseDuration returns PagePause as a time.Duration.
func (c *Config) PagePauseDuration() time.Duration {
	d, _ := time.ParseDuration(c.PagePause)
	return d
}

// HistoryTTLDuration returns HistoryTTL as a time.Duration.
func (c *Config) HistoryTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.HistoryTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.MaxPages != 0 {
		c.MaxPages = overlay.MaxPages
	}
	if overlay.PromptChars != 0 {
		c.PromptChars = overlay.PromptChars
	}
	if overlay.PagePause != "" {
		c.PagePause = overlay.PagePause
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.ErrorSummaryLength != 0 {
		c.ErrorSummaryLength = overlay.ErrorSummaryLength
	}
	if overlay.DefaultTitle != "" {
		c.DefaultTitle = overlay.DefaultTitle
	}
	if overlay.TestPrompt != "" {
		c.TestPrompt = overlay.TestPrompt
	}
	if overlay.HistoryTTL != "" {
		c.HistoryTTL = overlay.HistoryTTL
	}
}

func (c *Config) loadDefaults() {
	if c.MaxPages == 0 {
		c.MaxPages = story.MaxPages
	}
	if c.PromptChars == 0 {
		c.PromptChars = DefaultPromptChars
	}
	if c.PagePause == "" {
		c.PagePause = "2s"
	}
	if c.Concurrency == 0 {
		c.Concurrency = 1
	}
	if c.ErrorSummaryLength == 0 {
		c.ErrorSummaryLength = 200
	}
	if c.DefaultTitle == "" {
		c.DefaultTitle = "My Storybook"
	}
	if c.TestPrompt == "" {
		c.TestPrompt = "a cute cat in a garden, digital art"
	}
	if c.HistoryTTL == "" {
		c.HistoryTTL = "24h"
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

	num(env.MaxPages, &c.MaxPages)
	num(env.PromptChars, &c.PromptChars)
	str(env.PagePause, &c.PagePause)
	num(env.Concurrency, &c.Concurrency)
	num(env.ErrorSummaryLength, &c.ErrorSummaryLength)
	str(env.DefaultTitle, &c.DefaultTitle)
	str(env.TestPrompt, &c.TestPrompt)
	str(env.HistoryTTL, &c.HistoryTTL)
}

func (c *Config) validate() error {
	if c.MaxPages < 1 {
		return fmt.Errorf("max_pages must be positive")
	}
	if c.PromptChars < 1 {
		return fmt.Errorf("prompt_chars must be positive")
	}
	if d, err := time.ParseDuration(c.PagePause); err != nil {
		return fmt.Errorf("invalid page_pause: %w", err)
	} else if d < 0 {
		return fmt.Errorf("page_pause must not be negative")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive")
	}
	if c.ErrorSummaryLength < 1 {
		return fmt.Errorf("error_summary_length must be positive")
	}
	if d, err := time.ParseDuration(c.HistoryTTL); err != nil {
		return fmt.Errorf("invalid history_ttl: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("history_ttl must be positive")
	}
	return nil
}
