// Package config loads service configuration from TOML files, a .env file,
// and STORYBOOK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/storybook/internal/storybooks"
	"github.com/JaimeStill/storybook/pkg/database"
	"github.com/JaimeStill/storybook/pkg/imagegen"
	"github.com/JaimeStill/storybook/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvStorybookEnv             = "STORYBOOK_ENV"
	EnvStorybookShutdownTimeout = "STORYBOOK_SHUTDOWN_TIMEOUT"
	EnvStorybookVersion         = "STORYBOOK_VERSION"
)

var databaseEnv = &database.Env{
	Enabled:         "STORYBOOK_DB_ENABLED",
	Host:            "STORYBOOK_DB_HOST",
	Port:            "STORYBOOK_DB_PORT",
	Name:            "STORYBOOK_DB_NAME",
	User:            "STORYBOOK_DB_USER",
	Password:        "STORYBOOK_DB_PASSWORD",
	SSLMode:         "STORYBOOK_DB_SSL_MODE",
	MaxOpenConns:    "STORYBOOK_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "STORYBOOK_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "STORYBOOK_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "STORYBOOK_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Backend:          "STORYBOOK_STORAGE_BACKEND",
	Directory:        "STORYBOOK_STORAGE_DIRECTORY",
	ContainerName:    "STORYBOOK_STORAGE_CONTAINER_NAME",
	ConnectionString: "STORYBOOK_STORAGE_CONNECTION_STRING",
}

var imagegenEnv = &imagegen.Env{
	Provider:      "STORYBOOK_IMAGEGEN_PROVIDER",
	Endpoint:      "STORYBOOK_IMAGEGEN_ENDPOINT",
	Token:         "STORYBOOK_IMAGEGEN_TOKEN",
	TokenFallback: "HUGGINGFACE_TOKEN",
	Timeout:       "STORYBOOK_IMAGEGEN_TIMEOUT",
	Width:         "STORYBOOK_IMAGEGEN_WIDTH",
	Height:        "STORYBOOK_IMAGEGEN_HEIGHT",
	MaxImageBytes: "STORYBOOK_IMAGEGEN_MAX_IMAGE_BYTES",
}

var storybookEnv = &storybooks.Env{
	MaxPages:           "STORYBOOK_MAX_PAGES",
	PromptChars:        "STORYBOOK_PROMPT_CHARS",
	PagePause:          "STORYBOOK_PAGE_PAUSE",
	Concurrency:        "STORYBOOK_CONCURRENCY",
	ErrorSummaryLength: "STORYBOOK_ERROR_SUMMARY_LENGTH",
	DefaultTitle:       "STORYBOOK_DEFAULT_TITLE",
	TestPrompt:         "STORYBOOK_TEST_PROMPT",
	HistoryTTL:         "STORYBOOK_HISTORY_TTL",
}

// Config is the root configuration for the storybook service.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Logging         LoggingConfig     `toml:"logging"`
	Database        database.Config   `toml:"database"`
	Storage         storage.Config    `toml:"storage"`
	ImageGen        imagegen.Config   `toml:"imagegen"`
	Storybook       storybooks.Config `toml:"storybook"`
	API             APIConfig         `toml:"api"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the STORYBOOK_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvStorybookEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads .env (if present) into the process environment, then the base
// config (if present), applies any environment overlay, and finalizes all
// values. Variables already set in the environment win over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Logging.Merge(&overlay.Logging)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.ImageGen.Merge(&overlay.ImageGen)
	c.Storybook.Merge(&overlay.Storybook)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.ImageGen.Finalize(imagegenEnv); err != nil {
		return fmt.Errorf("imagegen: %w", err)
	}
	if err := c.Storybook.Finalize(storybookEnv); err != nil {
		return fmt.Errorf("storybook: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "1.0.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvStorybookShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvStorybookVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvStorybookEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
