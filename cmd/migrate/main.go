package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/tahcohcat/ramadan-tracker/config"
	"github.com/tahcohcat/ramadan-tracker/internal/logger"
	"go.uber.org/zap"
)

// Applies migrations/ to the PostgreSQL datastore. Usage: migrate [up|down]
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log.Level)
	defer logger.Sync()
	log := logger.New()

	if cfg.Database.URL == "" {
		log.Error("database.url (or DATABASE_URL) is required")
		os.Exit(1)
	}

	dir, err := findMigrations()
	if err != nil {
		log.WithError(err).Error("failed to locate migrations")
		os.Exit(1)
	}

	m, err := migrate.New("file://"+dir, cfg.Database.URL)
	if err != nil {
		log.WithError(err).Error("failed to initialize migrations")
		os.Exit(1)
	}
	defer m.Close()

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	default:
		log.Error("unknown command " + cmd + ", expected up or down")
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.WithError(err).Error("migration failed")
		os.Exit(1)
	}

	version, dirty, _ := m.Version()
	log.With(zap.String("direction", cmd), zap.Uint("version", version), zap.Bool("dirty", dirty)).Info("migration complete")
}

// findMigrations walks up from the working directory, then the executable.
func findMigrations() (string, error) {
	var candidates []string

	if cwd, err := os.Getwd(); err == nil {
		current := cwd
		for i := 0; i < 6; i++ {
			candidates = append(candidates, filepath.Join(current, "migrations"))
			parent := filepath.Dir(current)
			if parent == current {
				break
			}
			current = parent
		}
	}
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(exeDir, "migrations"),
			filepath.Join(exeDir, "..", "migrations"),
		)
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return filepath.Abs(candidate)
		}
	}
	return "", errors.New("migrations directory not found")
}
