package database_test

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/JaimeStill/storybook/pkg/database"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := database.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"enabled", cfg.Enabled, false},
		{"host", cfg.Host, "localhost"},
		{"port", cfg.Port, 5432},
		{"ssl_mode", cfg.SSLMode, "disable"},
		{"max_open_conns", cfg.MaxOpenConns, 10},
		{"max_idle_conns", cfg.MaxIdleConns, 2},
		{"conn_max_lifetime", cfg.ConnMaxLifetime, "15m"},
		{"conn_timeout", cfg.ConnTimeout, "5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_DB_ENABLED", "true")
	t.Setenv("TEST_DB_HOST", "remotehost")
	t.Setenv("TEST_DB_PORT", "5433")
	t.Setenv("TEST_DB_NAME", "envdb")
	t.Setenv("TEST_DB_USER", "envuser")
	t.Setenv("TEST_DB_TIMEOUT", "10s")

	env := &database.Env{
		Enabled:     "TEST_DB_ENABLED",
		Host:        "TEST_DB_HOST",
		Port:        "TEST_DB_PORT",
		Name:        "TEST_DB_NAME",
		User:        "TEST_DB_USER",
		ConnTimeout: "TEST_DB_TIMEOUT",
	}

	cfg := database.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"enabled", cfg.Enabled, true},
		{"host", cfg.Host, "remotehost"},
		{"port", cfg.Port, 5433},
		{"name", cfg.Name, "envdb"},
		{"user", cfg.User, "envuser"},
		{"conn_timeout", cfg.ConnTimeout, "10s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     database.Config
		wantErr string
	}{
		{"missing name", database.Config{Enabled: true, User: "u"}, "name required"},
		{"missing user", database.Config{Enabled: true, Name: "db"}, "user required"},
		{"invalid conn_timeout", database.Config{Enabled: true, Name: "db", User: "u", ConnTimeout: "bad"}, "invalid conn_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestFinalizeDisabledSkipsValidation(t *testing.T) {
	cfg := database.Config{ConnTimeout: "bad"}
	if err := cfg.Finalize(nil); err != nil {
		t.Errorf("disabled config should not validate: %v", err)
	}
}

func TestMerge(t *testing.T) {
	base := database.Config{Host: "localhost", Port: 5432, Name: "storybook"}
	base.Merge(&database.Config{Enabled: true, Host: "db.internal"})

	if !base.Enabled {
		t.Error("enabled should merge")
	}
	if base.Host != "db.internal" {
		t.Errorf("host: got %q", base.Host)
	}
	if base.Name != "storybook" {
		t.Errorf("name should be unchanged: got %q", base.Name)
	}
}

func TestDsn(t *testing.T) {
	tests := []struct {
		name string
		cfg  database.Config
		want string
	}{
		{
			name: "with password",
			cfg:  database.Config{Host: "h", Port: 1, Name: "n", User: "u", Password: "p", SSLMode: "disable"},
			want: "postgres://u:p@h:1/n?sslmode=disable",
		},
		{
			name: "without password",
			cfg:  database.Config{Host: "h", Port: 5432, Name: "n", User: "u", SSLMode: "require"},
			want: "postgres://u@h:5432/n?sslmode=require",
		},
		{
			name: "escaped password",
			cfg:  database.Config{Host: "h", Port: 1, Name: "n", User: "u", Password: "p@ss/word", SSLMode: "disable"},
			want: "postgres://u:p%40ss%2Fword@h:1/n?sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Dsn(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewDoesNotConnect(t *testing.T) {
	cfg := database.Config{Enabled: true, Name: "db", User: "u"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	sys, err := database.New(&cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if sys.Connection() == nil {
		t.Error("connection pool should be created")
	}
}
