package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"

	"github.com/JaimeStill/storybook/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "STORYBOOK_DB_DSN"

// migrateLogger adapts slog to migrate.Logger.
type migrateLogger struct {
	logger  *slog.Logger
	verbose bool
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l migrateLogger) Verbose() bool {
	return l.verbose
}

func main() {
	var (
		dsn     = flag.String("dsn", "", "Database connection URL (default: STORYBOOK_DB_DSN, then the service database config)")
		up      = flag.Bool("up", false, "Apply all pending migrations")
		down    = flag.Bool("down", false, "Revert all migrations")
		steps   = flag.Int("steps", 0, "Number of migrations (positive=up, negative=down)")
		version = flag.Bool("version", false, "Print current migration version")
		force   = flag.Int("force", -1, "Force set version after a failed migration")
		verbose = flag.Bool("verbose", false, "Log every migration step")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("system", "migrate")

	if err := run(logger, *dsn, *up, *down, *steps, *version, *force, *verbose); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, dsn string, up, down bool, steps int, version bool, force int, verbose bool) error {
	forceSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			forceSet = true
		}
	})

	if !version && !forceSet && !up && !down && steps == 0 {
		fmt.Fprintln(os.Stderr, "usage: migrate [-dsn URL] [-up|-down|-steps N|-version|-force N] [-verbose]")
		flag.PrintDefaults()
		return nil
	}

	dsn, err := resolveDSN(dsn)
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()
	m.Log = migrateLogger{logger: logger, verbose: verbose}

	switch {
	case version:
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("no migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		logger.Info("current version", "version", v, "dirty", dirty)
	case forceSet:
		if err := m.Force(force); err != nil {
			return fmt.Errorf("force version %d: %w", force, err)
		}
		logger.Info("version forced", "version", force)
	case up:
		if err := noChange(m.Up()); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("migrations applied")
	case down:
		if err := noChange(m.Down()); err != nil {
			return fmt.Errorf("revert migrations: %w", err)
		}
		logger.Info("migrations reverted")
	default:
		if err := noChange(m.Steps(steps)); err != nil {
			return fmt.Errorf("step %d: %w", steps, err)
		}
		logger.Info("migration steps applied", "steps", steps)
	}
	return nil
}

// resolveDSN prefers the flag, then STORYBOOK_DB_DSN, then the database
// section of the service configuration so migrations target the same
// database the server connects to.
func resolveDSN(flagDSN string) (string, error) {
	if flagDSN != "" {
		return flagDSN, nil
	}

	if err := godotenv.Load(config.DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("load %s: %w", config.DotEnvFile, err)
	}
	if v := os.Getenv(envDSN); v != "" {
		return v, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.Name == "" || cfg.Database.User == "" {
		return "", errors.New("no database configured: pass -dsn, set " + envDSN + ", or fill the [database] section")
	}
	return cfg.Database.Dsn(), nil
}

func noChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
