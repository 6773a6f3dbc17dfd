package migrations

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
)

//go:embed postgres/*.sql sqlite/*.sql
var fs embed.FS

// URL turns a store DSN into the database URL golang-migrate expects.
func URL(engine, dsn string) (string, error) {
	switch engine {
	case "postgres":
		if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
			return "", fmt.Errorf("postgres migrations need a URL DSN, got %q", dsn)
		}
		return dsn, nil
	case "sqlite":
		return "sqlite://" + strings.TrimPrefix(dsn, "file:"), nil
	}
	return "", fmt.Errorf("no migrations for engine %q", engine)
}

// Run applies all up migrations embedded for the engine.
func Run(engine, dsn string) error {
	url, err := URL(engine, dsn)
	if err != nil {
		return err
	}

	// iofs driver from embedded files
	d, err := iofs.New(fs, engine)
	if err != nil {
		return fmt.Errorf("iofs: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, url)
	if err != nil {
		return fmt.Errorf("migrate new: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}
