package infrastructure_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/JaimeStill/storybook/internal/config"
	"github.com/JaimeStill/storybook/internal/infrastructure"
	"github.com/JaimeStill/storybook/pkg/storage"
)

func TestNewLoggerFormats(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := infrastructure.NewLogger(&config.LoggingConfig{Level: "info", Format: config.FormatJSON}, &buf)
		logger.Info("hello", "page", 1)

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("output is not json: %v: %s", err, buf.String())
		}
		if entry["msg"] != "hello" {
			t.Errorf("msg: got %v, want hello", entry["msg"])
		}
	})

	t.Run("text respects level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := infrastructure.NewLogger(&config.LoggingConfig{Level: "warn", Format: config.FormatText}, &buf)
		logger.Info("dropped")
		logger.Warn("kept")

		out := buf.String()
		if strings.Contains(out, "dropped") {
			t.Error("info entry should be filtered at warn level")
		}
		if !strings.Contains(out, "msg=kept") {
			t.Errorf("missing warn entry: %s", out)
		}
	})
}

func TestNewWithoutDatabase(t *testing.T) {
	cfg := &config.Config{
		Logging: config.LoggingConfig{Level: "info", Format: config.FormatText},
		Storage: storage.Config{Backend: storage.BackendLocal, Directory: t.TempDir()},
	}
	cfg.ImageGen.Provider = "stub"
	cfg.ImageGen.Timeout = "1s"
	cfg.ImageGen.Width = 8
	cfg.ImageGen.Height = 8

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if infra.Database != nil {
		t.Error("database should be nil when disabled")
	}
	if infra.Images == nil || infra.Storage == nil || infra.Metrics == nil {
		t.Fatal("expected images, storage, and metrics to be initialized")
	}

	if err := infra.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := infra.Lifecycle.WaitForStartup(); err != nil {
		t.Fatalf("WaitForStartup: %v", err)
	}
	if !infra.Lifecycle.Ready() {
		t.Error("lifecycle should be ready")
	}
}
